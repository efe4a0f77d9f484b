package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products (e.g. "Áo", "Quần").
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a sellable article. Stock lives on its variants.
type Product struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category      *Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;" json:"category,omitempty"`
	SKU           string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name          string           `gorm:"type:varchar(255);not null;index" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	PurchasePrice decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price"`
	SalePrice     decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"sale_price"`
	IsActive      bool             `gorm:"not null;default:true;index" json:"is_active"`
	Variants      []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Stock status labels
const (
	StockStatusOut = "Out of Stock"
	StockStatusLow = "Low Stock"
	StockStatusIn  = "In Stock"
)

// ProductVariant is one size/color of a product and owns the stock counter.
// Stock only changes through the stock ledger.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_variant_product_size_color" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"product,omitempty"`
	Size      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_variant_product_size_color" json:"size"`
	Color     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_product_size_color" json:"color"`
	Stock     int       `gorm:"type:int;not null;default:0;check:chk_variant_stock_non_negative,stock >= 0" json:"stock"`
	MinStock  int       `gorm:"type:int;not null;default:0;check:chk_variant_min_stock_non_negative,min_stock >= 0" json:"min_stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v ProductVariant) IsOutOfStock() bool {
	return v.Stock == 0
}

func (v ProductVariant) IsLowStock() bool {
	return v.Stock > 0 && v.Stock <= v.MinStock
}

func (v ProductVariant) InStock() bool {
	return v.Stock > v.MinStock
}

// Deficit is how many units are missing to reach MinStock.
func (v ProductVariant) Deficit() int {
	if d := v.MinStock - v.Stock; d > 0 {
		return d
	}
	return 0
}

func (v ProductVariant) StockStatus() string {
	switch {
	case v.IsOutOfStock():
		return StockStatusOut
	case v.IsLowStock():
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// NeedsAttention reports whether the variant belongs on the alert list.
func (v ProductVariant) NeedsAttention() bool {
	return v.IsOutOfStock() || v.IsLowStock()
}
