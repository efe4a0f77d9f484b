package model

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry types
const (
	TxTypeIn         = "in"
	TxTypeOut        = "out"
	TxTypeAdjustment = "adjustment"
)

// Default ledger reasons
const (
	ReasonStockIn     = "Stock replenishment"
	ReasonStockOut    = "Manual adjustment"
	ReasonStockAdjust = "Stock adjustment"
)

// InventoryTransaction (thẻ kho) is one append-only ledger entry. Quantity is
// always the magnitude of the change; Type carries the direction.
type InventoryTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VariantID uuid.UUID       `gorm:"type:uuid;not null;index" json:"variant_id"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE;" json:"variant,omitempty"`
	Type      string          `gorm:"type:varchar(20);not null;index" json:"type"` // in, out, adjustment
	Quantity  int             `gorm:"type:int;not null;check:chk_inventory_tx_quantity_positive,quantity > 0" json:"quantity"`
	Reason    string          `gorm:"type:text" json:"reason"`
	Supplier  *string         `gorm:"type:varchar(255)" json:"supplier"`
	OrderID   *uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	Order     *Order          `gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL;" json:"-"`
	UserID    *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL;" json:"user,omitempty"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}
