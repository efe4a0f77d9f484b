package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"
	"clothingstore/pkg/pagination"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditLogQuery filters the audit trail. Action is matched case-insensitively
// against the recorded actions; EntityID is the id of a category, product,
// variant or user.
type AuditLogQuery struct {
	Action   string
	EntityID string
	UserID   string
	Page     pagination.Params
}

var auditActions = []string{
	model.ActionCreateCategory,
	model.ActionCreateProduct, model.ActionUpdateProduct, model.ActionDeleteProduct,
	model.ActionCreateVariant, model.ActionUpdateVariant, model.ActionDeleteVariant,
	model.ActionCreateUser, model.ActionDeleteUser,
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, q AuditLogQuery) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) GetAuditLogs(ctx context.Context, q AuditLogQuery) ([]AuditLogResponse, int64, error) {
	filter, err := auditFilterFrom(q)
	if err != nil {
		return nil, 0, err
	}

	logs, total, err := s.repo.List(ctx, filter, q.Page.Offset, q.Page.Limit)
	if err != nil {
		return nil, 0, repository.TranslateError(err, "")
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		userName := "System"
		userID := ""
		if l.User != nil {
			userName = l.User.Name
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			UserName:   userName,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}

func auditFilterFrom(q AuditLogQuery) (repository.AuditFilter, error) {
	filter := repository.AuditFilter{EntityID: strings.TrimSpace(q.EntityID)}

	if action := strings.ToUpper(strings.TrimSpace(q.Action)); action != "" {
		if !slices.Contains(auditActions, action) {
			return filter, apperror.InvalidInput("unknown audit action %q", q.Action)
		}
		filter.Action = action
	}
	if raw := strings.TrimSpace(q.UserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, apperror.InvalidInput("user_id is not a valid id")
		}
		filter.UserID = &id
	}
	return filter, nil
}

// writeAudit records an action in the caller's transaction.
func writeAudit(ctx context.Context, repo repository.AuditRepository, actor *uuid.UUID, action, entityID, entityName string, details interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	entry := &model.AuditLog{
		UserID:     actor,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
