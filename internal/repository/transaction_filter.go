package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter selects ledger entries. Zero values mean "no constraint".
// CreatedBefore is exclusive so a calendar-day end date can be passed as the next midnight.
type TransactionFilter struct {
	Type          string
	ProductID     *uuid.UUID
	VariantID     *uuid.UUID
	UserID        *uuid.UUID
	Search        string
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// Scopes turns the filter into parameterized query fragments. Every fragment
// expects inventory_transactions joined with product_variants and products.
func (f TransactionFilter) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{joinLedgerProducts}

	if f.Type != "" {
		kind := f.Type
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("inventory_transactions.type = ?", kind)
		})
	}
	if f.ProductID != nil {
		id := *f.ProductID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("product_variants.product_id = ?", id)
		})
	}
	if f.VariantID != nil {
		id := *f.VariantID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("inventory_transactions.variant_id = ?", id)
		})
	}
	if f.UserID != nil {
		id := *f.UserID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("inventory_transactions.user_id = ?", id)
		})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("(products.name ILIKE ? OR products.sku ILIKE ? OR inventory_transactions.reason ILIKE ?)",
				pattern, pattern, pattern)
		})
	}
	if f.CreatedFrom != nil {
		from := *f.CreatedFrom
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("inventory_transactions.created_at >= ?", from)
		})
	}
	if f.CreatedBefore != nil {
		before := *f.CreatedBefore
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("inventory_transactions.created_at < ?", before)
		})
	}
	return scopes
}

func joinLedgerProducts(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN product_variants ON product_variants.id = inventory_transactions.variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id")
}
