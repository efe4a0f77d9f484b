package repository

import (
	"context"

	"clothingstore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VariantFilter narrows stock listings
type VariantFilter struct {
	CategoryID *uuid.UUID
	ProductID  *uuid.UUID
	Search     string
	LowStock   bool
	OutOfStock bool
}

type VariantRepository interface {
	Create(ctx context.Context, variant *model.ProductVariant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	FindByKeyForUpdate(ctx context.Context, productID uuid.UUID, size, color string) (*model.ProductVariant, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	UpdateStockAndMinStock(ctx context.Context, id uuid.UUID, stock int, minStock *int) error
	UpdateAttributes(ctx context.Context, variant *model.ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasOrderItems(ctx context.Context, id uuid.UUID) (bool, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error)
	List(ctx context.Context, filter VariantFilter, offset, limit int) ([]model.ProductVariant, int64, error)
	ListAll(ctx context.Context, filter VariantFilter) ([]model.ProductVariant, error)
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(ctx context.Context, variant *model.ProductVariant) error {
	return GetDB(ctx, r.db).Create(variant).Error
}

func (r *variantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := GetDB(ctx, r.db).Preload("Product.Category").First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindByIDForUpdate locks the variant row until the surrounding transaction ends.
func (r *variantRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindByKeyForUpdate(ctx context.Context, productID uuid.UUID, size, color string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return GetDB(ctx, r.db).Model(&model.ProductVariant{}).Where("id = ?", id).Update("stock", stock).Error
}

// UpdateStockAndMinStock leaves min_stock untouched when minStock is nil.
func (r *variantRepository) UpdateStockAndMinStock(ctx context.Context, id uuid.UUID, stock int, minStock *int) error {
	updates := map[string]interface{}{"stock": stock}
	if minStock != nil {
		updates["min_stock"] = *minStock
	}
	return GetDB(ctx, r.db).Model(&model.ProductVariant{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateAttributes writes size, color and min_stock. Stock is never written here.
func (r *variantRepository) UpdateAttributes(ctx context.Context, variant *model.ProductVariant) error {
	return GetDB(ctx, r.db).Model(variant).Select("size", "color", "min_stock").Updates(variant).Error
}

func (r *variantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ProductVariant{}).Error
}

func (r *variantRepository) HasOrderItems(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.OrderItem{}).Where("variant_id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *variantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	if err := GetDB(ctx, r.db).Where("product_id = ?", productID).
		Order("size, color").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) List(ctx context.Context, filter VariantFilter, offset, limit int) ([]model.ProductVariant, int64, error) {
	var variants []model.ProductVariant
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ProductVariant{}).Scopes(filter.scopes()...)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Product.Category").
		Order("products.name, product_variants.size, product_variants.color").
		Offset(offset).Limit(limit).Find(&variants).Error; err != nil {
		return nil, 0, err
	}
	return variants, total, nil
}

// ListAll returns every matching variant of an active product with its product and category.
func (r *variantRepository) ListAll(ctx context.Context, filter VariantFilter) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	if err := GetDB(ctx, r.db).Model(&model.ProductVariant{}).Scopes(filter.scopes()...).
		Preload("Product.Category").
		Order("products.name, product_variants.size, product_variants.color").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (f VariantFilter) scopes() []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN products ON products.id = product_variants.product_id").
				Where("products.is_active = ?", true)
		},
	}
	if f.CategoryID != nil {
		id := *f.CategoryID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("products.category_id = ?", id)
		})
	}
	if f.ProductID != nil {
		id := *f.ProductID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("product_variants.product_id = ?", id)
		})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("(products.name ILIKE ? OR products.sku ILIKE ?)", pattern, pattern)
		})
	}
	if f.OutOfStock {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("product_variants.stock = 0")
		})
	} else if f.LowStock {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("product_variants.stock > 0 AND product_variants.stock <= product_variants.min_stock")
		})
	}
	return scopes
}
