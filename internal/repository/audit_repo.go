package repository

import (
	"context"

	"clothingstore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditFilter narrows the audit trail to one action, one catalog or user
// entity, or one actor. Zero values mean "no constraint".
type AuditFilter struct {
	Action   string
	EntityID string
	UserID   *uuid.UUID
}

func (f AuditFilter) scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if f.Action != "" {
		action := f.Action
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("audit_logs.action = ?", action)
		})
	}
	if f.EntityID != "" {
		entityID := f.EntityID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("audit_logs.entity_id = ?", entityID)
		})
	}
	if f.UserID != nil {
		id := *f.UserID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("audit_logs.user_id = ?", id)
		})
	}
	return scopes
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter AuditFilter, offset, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

// List returns matching entries newest first with the acting user preloaded.
func (r *auditRepository) List(ctx context.Context, filter AuditFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	db := GetDB(ctx, r.db).Model(&model.AuditLog{}).Scopes(filter.scopes()...)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Order("audit_logs.created_at desc").
		Offset(offset).Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
