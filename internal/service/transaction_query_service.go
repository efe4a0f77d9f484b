package service

import (
	"context"
	"strings"
	"time"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"
	"clothingstore/pkg/pagination"

	"github.com/google/uuid"
)

// TransactionQuery is the raw ledger query as received from the client.
// Dates are YYYY-MM-DD calendar days; both ends are inclusive.
type TransactionQuery struct {
	Type      string
	ProductID string
	VariantID string
	UserID    string
	Search    string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

type TransactionView struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	Quantity     int        `json:"quantity"`
	Reason       string     `json:"reason"`
	Supplier     *string    `json:"supplier"`
	OrderID      *uuid.UUID `json:"order_id"`
	CreatedAt    time.Time  `json:"created_at"`
	VariantID    uuid.UUID  `json:"variant_id"`
	Size         string     `json:"size"`
	Color        string     `json:"color"`
	ProductID    uuid.UUID  `json:"product_id"`
	ProductName  string     `json:"product_name"`
	SKU          string     `json:"sku"`
	CategoryName string     `json:"category_name"`
	UserID       *uuid.UUID `json:"user_id"`
	UserName     *string    `json:"user_name"`
}

type TransactionPage struct {
	Transactions []TransactionView `json:"transactions"`
	Pagination   pagination.Meta   `json:"pagination"`
}

type TransactionQueryService interface {
	List(ctx context.Context, q TransactionQuery) (*TransactionPage, error)
	ListAll(ctx context.Context, q TransactionQuery) ([]TransactionView, error)
}

type transactionQueryService struct {
	ledger repository.InventoryTxRepository
	loc    *time.Location
}

func NewTransactionQueryService(ledger repository.InventoryTxRepository) TransactionQueryService {
	return &transactionQueryService{ledger: ledger, loc: time.Local}
}

func (s *transactionQueryService) List(ctx context.Context, q TransactionQuery) (*TransactionPage, error) {
	if err := pagination.Validate(q.Page, q.Limit); err != nil {
		return nil, apperror.InvalidInput("%s", err.Error())
	}
	filter, err := q.toFilter(s.loc)
	if err != nil {
		return nil, err
	}

	page := pagination.New(q.Page, q.Limit)
	entries, total, err := s.ledger.List(ctx, filter, page.Offset, page.Limit)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}

	return &TransactionPage{
		Transactions: toTransactionViews(entries),
		Pagination:   page.Meta(total),
	}, nil
}

// ListAll ignores pagination; used by exports.
func (s *transactionQueryService) ListAll(ctx context.Context, q TransactionQuery) ([]TransactionView, error) {
	filter, err := q.toFilter(s.loc)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListAll(ctx, filter)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}
	return toTransactionViews(entries), nil
}

func (q TransactionQuery) toFilter(loc *time.Location) (repository.TransactionFilter, error) {
	var f repository.TransactionFilter
	var err error

	if t := strings.ToLower(strings.TrimSpace(q.Type)); t != "" {
		if t != model.TxTypeIn && t != model.TxTypeOut && t != model.TxTypeAdjustment {
			return f, apperror.InvalidInput("type must be one of in, out, adjustment")
		}
		f.Type = t
	}
	if f.ProductID, err = parseOptionalID(q.ProductID, "product_id"); err != nil {
		return f, err
	}
	if f.VariantID, err = parseOptionalID(q.VariantID, "variant_id"); err != nil {
		return f, err
	}
	if f.UserID, err = parseOptionalID(q.UserID, "user_id"); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(q.Search)

	if f.CreatedFrom, err = parseDay(q.StartDate, "start_date", loc); err != nil {
		return f, err
	}
	end, err := parseDay(q.EndDate, "end_date", loc)
	if err != nil {
		return f, err
	}
	if end != nil {
		next := end.AddDate(0, 0, 1)
		f.CreatedBefore = &next
	}
	if f.CreatedFrom != nil && end != nil && f.CreatedFrom.After(*end) {
		return f, apperror.InvalidInput("start_date must not be after end_date")
	}
	return f, nil
}

func parseDay(raw, field string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, apperror.InvalidInput("%s must be a date in YYYY-MM-DD format", field)
	}
	return &t, nil
}

func toTransactionViews(entries []model.InventoryTransaction) []TransactionView {
	views := make([]TransactionView, 0, len(entries))
	for _, e := range entries {
		v := TransactionView{
			ID:        e.ID,
			Type:      e.Type,
			Quantity:  e.Quantity,
			Reason:    e.Reason,
			Supplier:  e.Supplier,
			OrderID:   e.OrderID,
			CreatedAt: e.CreatedAt,
			VariantID: e.VariantID,
			UserID:    e.UserID,
		}
		if e.Variant != nil {
			v.Size = e.Variant.Size
			v.Color = e.Variant.Color
			v.ProductID = e.Variant.ProductID
			if p := e.Variant.Product; p != nil {
				v.ProductName = p.Name
				v.SKU = p.SKU
				if p.Category != nil {
					v.CategoryName = p.Category.Name
				}
			}
		}
		if e.User != nil {
			name := e.User.Name
			v.UserName = &name
		}
		views = append(views, v)
	}
	return views
}
