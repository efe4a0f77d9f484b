package service

import (
	"context"
	"fmt"
	"strings"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"
	"clothingstore/pkg/pagination"

	"github.com/shopspring/decimal"
)

// DTOs
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateProductRequest struct {
	CategoryID    string          `json:"category_id"`
	SKU           string          `json:"sku" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

type UpdateProductRequest struct {
	CategoryID    string           `json:"category_id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

type CreateVariantRequest struct {
	Size     string `json:"size" binding:"required"`
	Color    string `json:"color" binding:"required"`
	MinStock *int   `json:"min_stock"`
}

type UpdateVariantRequest struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	MinStock *int   `json:"min_stock"`
}

type ProductListQuery struct {
	Search     string
	CategoryID string
	Page       pagination.Params
}

type ProductPage struct {
	Products   []model.Product `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}

// CatalogService manages categories, products and variants. Variants are
// created with zero stock; stock is only changed by the stock ledger.
type CatalogService interface {
	CreateCategory(ctx context.Context, userID string, req CreateCategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, q ProductListQuery) (*ProductPage, error)
	UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, userID, id string) error
	CreateVariant(ctx context.Context, userID, productID string, req CreateVariantRequest) (*model.ProductVariant, error)
	ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error)
	UpdateVariant(ctx context.Context, userID, id string, req UpdateVariantRequest) (*model.ProductVariant, error)
	DeleteVariant(ctx context.Context, userID, id string) error
}

type catalogService struct {
	txManager       repository.TransactionManager
	categories      repository.CategoryRepository
	products        repository.ProductRepository
	variants        repository.VariantRepository
	audit           repository.AuditRepository
	defaultMinStock int
}

func NewCatalogService(
	txManager repository.TransactionManager,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	variants repository.VariantRepository,
	audit repository.AuditRepository,
	defaultMinStock int,
) CatalogService {
	return &catalogService{
		txManager:       txManager,
		categories:      categories,
		products:        products,
		variants:        variants,
		audit:           audit,
		defaultMinStock: defaultMinStock,
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, userID string, req CreateCategoryRequest) (*model.Category, error) {
	actor, err := parseActor(userID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidInput("name is required")
	}

	category := &model.Category{Name: name, Description: req.Description}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.categories.Create(txCtx, category); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionCreateCategory, category.ID.String(), category.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}
	return categories, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (*model.Product, error) {
	actor, err := parseActor(userID)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseOptionalID(req.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.SKU) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, apperror.InvalidInput("sku and name are required")
	}
	if req.PurchasePrice.IsNegative() || req.SalePrice.IsNegative() {
		return nil, apperror.InvalidInput("prices must not be negative")
	}

	product := &model.Product{
		CategoryID:    categoryID,
		SKU:           strings.TrimSpace(req.SKU),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		IsActive:      true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if categoryID != nil {
			if _, err := s.categories.FindByID(txCtx, *categoryID); err != nil {
				return repository.TranslateError(err, "category not found")
			}
		}
		if err := s.products.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionCreateProduct, product.ID.String(), product.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	productID, err := parseID(id, "product id")
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByIDWithVariants(ctx, productID)
	if err != nil {
		return nil, repository.TranslateError(err, "product not found")
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, q ProductListQuery) (*ProductPage, error) {
	categoryID, err := parseOptionalID(q.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}
	products, total, err := s.products.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		CategoryID: categoryID,
	}, q.Page.Offset, q.Page.Limit)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}
	return &ProductPage{Products: products, Pagination: q.Page.Meta(total)}, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (*model.Product, error) {
	actor, err := parseActor(userID)
	if err != nil {
		return nil, err
	}
	productID, err := parseID(id, "product id")
	if err != nil {
		return nil, err
	}
	categoryID, err := parseOptionalID(req.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}
	if (req.PurchasePrice != nil && req.PurchasePrice.IsNegative()) || (req.SalePrice != nil && req.SalePrice.IsNegative()) {
		return nil, apperror.InvalidInput("prices must not be negative")
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err = s.products.FindByID(txCtx, productID)
		if err != nil {
			return repository.TranslateError(err, "product not found")
		}
		if categoryID != nil {
			if _, err := s.categories.FindByID(txCtx, *categoryID); err != nil {
				return repository.TranslateError(err, "category not found")
			}
			product.CategoryID = categoryID
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			product.Name = name
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.PurchasePrice != nil {
			product.PurchasePrice = *req.PurchasePrice
		}
		if req.SalePrice != nil {
			product.SalePrice = *req.SalePrice
		}

		if err := s.products.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionUpdateProduct, product.ID.String(), product.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deactivates the product; its history stays intact.
func (s *catalogService) DeleteProduct(ctx context.Context, userID, id string) error {
	actor, err := parseActor(userID)
	if err != nil {
		return err
	}
	productID, err := parseID(id, "product id")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.products.FindByID(txCtx, productID)
		if err != nil {
			return repository.TranslateError(err, "product not found")
		}
		if err := s.products.Deactivate(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionDeleteProduct, product.ID.String(), product.Name,
			map[string]bool{"deactivated": true})
	})
}

func (s *catalogService) CreateVariant(ctx context.Context, userID, productID string, req CreateVariantRequest) (*model.ProductVariant, error) {
	actor, err := parseActor(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "product id")
	if err != nil {
		return nil, err
	}
	size, color := strings.TrimSpace(req.Size), strings.TrimSpace(req.Color)
	if size == "" || color == "" {
		return nil, apperror.InvalidInput("size and color are required")
	}
	minStock := s.defaultMinStock
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, apperror.InvalidInput("min_stock must not be negative")
		}
		minStock = *req.MinStock
	}

	variant := &model.ProductVariant{ProductID: pid, Size: size, Color: color, Stock: 0, MinStock: minStock}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.products.FindByID(txCtx, pid)
		if err != nil {
			return repository.TranslateError(err, "product not found")
		}
		if err := s.variants.Create(txCtx, variant); err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionCreateVariant, variant.ID.String(),
			fmt.Sprintf("%s %s/%s", product.Name, size, color), req)
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *catalogService) ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	pid, err := parseID(productID, "product id")
	if err != nil {
		return nil, err
	}
	variants, err := s.variants.ListByProduct(ctx, pid)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}
	return variants, nil
}

// UpdateVariant changes size, color and min_stock. Stock is not editable here.
func (s *catalogService) UpdateVariant(ctx context.Context, userID, id string, req UpdateVariantRequest) (*model.ProductVariant, error) {
	actor, err := parseActor(userID)
	if err != nil {
		return nil, err
	}
	variantID, err := parseID(id, "variant id")
	if err != nil {
		return nil, err
	}
	if req.MinStock != nil && *req.MinStock < 0 {
		return nil, apperror.InvalidInput("min_stock must not be negative")
	}

	var variant *model.ProductVariant
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err = s.variants.FindByIDForUpdate(txCtx, variantID)
		if err != nil {
			return repository.TranslateError(err, "variant not found")
		}
		if size := strings.TrimSpace(req.Size); size != "" {
			variant.Size = size
		}
		if color := strings.TrimSpace(req.Color); color != "" {
			variant.Color = color
		}
		if req.MinStock != nil {
			variant.MinStock = *req.MinStock
		}
		if err := s.variants.UpdateAttributes(txCtx, variant); err != nil {
			return fmt.Errorf("failed to update variant: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionUpdateVariant, variant.ID.String(),
			variant.Size+"/"+variant.Color, req)
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant removes the variant and its ledger history. Variants that
// appear on orders cannot be deleted.
func (s *catalogService) DeleteVariant(ctx context.Context, userID, id string) error {
	actor, err := parseActor(userID)
	if err != nil {
		return err
	}
	variantID, err := parseID(id, "variant id")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err := s.variants.FindByIDForUpdate(txCtx, variantID)
		if err != nil {
			return repository.TranslateError(err, "variant not found")
		}
		used, err := s.variants.HasOrderItems(txCtx, variantID)
		if err != nil {
			return fmt.Errorf("failed to check order items: %w", err)
		}
		if used {
			return apperror.IntegrityViolation("variant is referenced by orders and cannot be deleted", nil)
		}
		if err := s.variants.Delete(txCtx, variantID); err != nil {
			return fmt.Errorf("failed to delete variant: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionDeleteVariant, variant.ID.String(),
			variant.Size+"/"+variant.Color, map[string]interface{}{"stock_at_deletion": variant.Stock})
	})
}
