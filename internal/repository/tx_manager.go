package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// TransactionManager manages database transactions via context injection.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db            *gorm.DB
	lockTimeoutMS int
}

// NewTransactionManager runs units of work at READ COMMITTED. A positive
// lockTimeoutMS bounds how long a statement waits for a row lock.
func NewTransactionManager(db *gorm.DB, lockTimeoutMS int) TransactionManager {
	return &transactionManager{db: db, lockTimeoutMS: lockTimeoutMS}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.lockTimeoutMS > 0 {
			if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeoutMS)).Error; err != nil {
				return err
			}
		}
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return TranslateError(err, "")
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
