package repository

import (
	"context"

	"clothingstore/internal/model"

	"gorm.io/gorm"
)

// InventoryTxRepository is the append-only ledger store: entries are created and read, never changed.
type InventoryTxRepository interface {
	Create(ctx context.Context, tx *model.InventoryTransaction) error
	List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]model.InventoryTransaction, int64, error)
	ListAll(ctx context.Context, filter TransactionFilter) ([]model.InventoryTransaction, error)
	Recent(ctx context.Context, limit int) ([]model.InventoryTransaction, error)
}

type inventoryTxRepository struct {
	db *gorm.DB
}

func NewInventoryTxRepository(db *gorm.DB) InventoryTxRepository {
	return &inventoryTxRepository{db: db}
}

func (r *inventoryTxRepository) Create(ctx context.Context, tx *model.InventoryTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *inventoryTxRepository) List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]model.InventoryTransaction, int64, error) {
	var entries []model.InventoryTransaction
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryTransaction{}).Scopes(filter.Scopes()...)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := withLedgerDetails(db).
		Order("inventory_transactions.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListAll is List without pagination, used for exports.
func (r *inventoryTxRepository) ListAll(ctx context.Context, filter TransactionFilter) ([]model.InventoryTransaction, error) {
	var entries []model.InventoryTransaction
	db := GetDB(ctx, r.db).Model(&model.InventoryTransaction{}).Scopes(filter.Scopes()...)
	if err := withLedgerDetails(db).
		Order("inventory_transactions.created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *inventoryTxRepository) Recent(ctx context.Context, limit int) ([]model.InventoryTransaction, error) {
	var entries []model.InventoryTransaction
	if err := withLedgerDetails(GetDB(ctx, r.db)).
		Order("created_at DESC").Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func withLedgerDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Variant.Product.Category").Preload("User")
}
