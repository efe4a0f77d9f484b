package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxStock is the largest value the int stock column holds.
const maxStock = math.MaxInt32

// DTOs for Request validation
type StockInRequest struct {
	VariantID string  `json:"variant_id" binding:"required"`
	Quantity  int     `json:"quantity"`
	Reason    string  `json:"reason"`
	Supplier  *string `json:"supplier"`
}

type StockInResult struct {
	PreviousStock int       `json:"previous_stock"`
	AddedQuantity int       `json:"added_quantity"`
	NewStock      int       `json:"new_stock"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

type StockOutRequest struct {
	VariantID     string  `json:"variant_id" binding:"required"`
	Quantity      int     `json:"quantity"`
	Reason        string  `json:"reason"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail string  `json:"customer_email"`
	OrderID       *string `json:"order_id"`
	CreateOrder   bool    `json:"create_order"`
}

type StockOutResult struct {
	PreviousStock   int        `json:"previous_stock"`
	RemovedQuantity int        `json:"removed_quantity"`
	NewStock        int        `json:"new_stock"`
	OrderID         *uuid.UUID `json:"order_id"`
	OrderNumber     string     `json:"order_number,omitempty"`
	OrderCreated    bool       `json:"order_created"`
	TransactionID   uuid.UUID  `json:"transaction_id"`
}

type StockAdjustRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	NewStock  *int   `json:"new_stock"`
	Reason    string `json:"reason"`
}

type StockAdjustResult struct {
	PreviousStock int        `json:"previous_stock"`
	NewStock      int        `json:"new_stock"`
	Change        int        `json:"change"`
	TransactionID *uuid.UUID `json:"transaction_id"`
}

type BulkEntry struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
	MinStock  *int   `json:"min_stock"`
	Type      string `json:"type"` // in (default) or out
}

type BulkApplyRequest struct {
	Transactions []BulkEntry `json:"transactions"`
	Supplier     *string     `json:"supplier"`
	Reason       string      `json:"reason"`
}

type BulkEntryResult struct {
	VariantID         uuid.UUID `json:"variant_id"`
	TransactionID     *uuid.UUID `json:"transaction_id"`
	Type              string     `json:"type"`
	PreviousStock     int        `json:"previous_stock"`
	NewStock          int        `json:"new_stock"`
	RequestedQuantity int        `json:"requested_quantity"`
	Quantity          int        `json:"quantity"`
	VariantCreated    bool       `json:"variant_created"`
}

// StockLedgerService is the only writer of variant stock. Every operation is
// one transaction: the variant row is locked, the stock is written and the
// ledger entry appended, or nothing happens.
type StockLedgerService interface {
	StockIn(ctx context.Context, userID string, req StockInRequest) (*StockInResult, error)
	StockOut(ctx context.Context, userID string, req StockOutRequest) (*StockOutResult, error)
	StockAdjust(ctx context.Context, userID string, req StockAdjustRequest) (*StockAdjustResult, error)
	BulkApply(ctx context.Context, userID string, req BulkApplyRequest) ([]BulkEntryResult, error)
}

type LedgerOptions struct {
	BulkDefaultMinStock int
}

type stockLedgerService struct {
	txManager repository.TransactionManager
	variants  repository.VariantRepository
	products  repository.ProductRepository
	ledger    repository.InventoryTxRepository
	deriver   *OrderDeriver
	publisher EventPublisher
	log       *zap.Logger
	tracer    trace.Tracer
	opts      LedgerOptions
	now       func() time.Time
}

func NewStockLedgerService(
	txManager repository.TransactionManager,
	variants repository.VariantRepository,
	products repository.ProductRepository,
	ledger repository.InventoryTxRepository,
	deriver *OrderDeriver,
	publisher EventPublisher,
	log *zap.Logger,
	opts LedgerOptions,
) StockLedgerService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &stockLedgerService{
		txManager: txManager,
		variants:  variants,
		products:  products,
		ledger:    ledger,
		deriver:   deriver,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer("stock-ledger"),
		opts:      opts,
		now:       time.Now,
	}
}

func (s *stockLedgerService) StockIn(ctx context.Context, userID string, req StockInRequest) (*StockInResult, error) {
	ctx, span := s.tracer.Start(ctx, "StockIn", trace.WithAttributes(
		attribute.String("variant.id", req.VariantID),
		attribute.Int("quantity", req.Quantity),
	))
	defer span.End()

	variantID, err := parseID(req.VariantID, "variant_id")
	if err != nil {
		return nil, s.fail(span, "stock in", err)
	}
	if req.Quantity <= 0 {
		return nil, s.fail(span, "stock in", apperror.InvalidInput("quantity must be a positive integer"))
	}
	actor, err := parseActor(userID)
	if err != nil {
		return nil, s.fail(span, "stock in", err)
	}

	var result StockInResult
	var event StockEvent
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err := s.variants.FindByIDForUpdate(txCtx, variantID)
		if err != nil {
			return repository.TranslateError(err, "variant not found")
		}

		previous := variant.Stock
		if req.Quantity > maxStock-previous {
			return apperror.InvalidInput("stock would exceed %d", maxStock)
		}
		variant.Stock = previous + req.Quantity
		if err := s.variants.UpdateStock(txCtx, variant.ID, variant.Stock); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		entry := &model.InventoryTransaction{
			VariantID: variant.ID,
			Type:      model.TxTypeIn,
			Quantity:  req.Quantity,
			Reason:    defaultString(req.Reason, model.ReasonStockIn),
			Supplier:  trimmedOrNil(req.Supplier),
			UserID:    actor,
		}
		if err := s.ledger.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		result = StockInResult{
			PreviousStock: previous,
			AddedQuantity: req.Quantity,
			NewStock:      variant.Stock,
			TransactionID: entry.ID,
		}
		event = newStockEvent(*variant, model.TxTypeIn, previous, &entry.ID, s.now())
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "stock in", err)
	}

	s.log.Info("Stock in applied",
		zap.String("variant_id", variantID.String()),
		zap.Int("previous_stock", result.PreviousStock),
		zap.Int("new_stock", result.NewStock))
	publishStockEvents(s.publisher, []StockEvent{event})
	return &result, nil
}

func (s *stockLedgerService) StockOut(ctx context.Context, userID string, req StockOutRequest) (*StockOutResult, error) {
	ctx, span := s.tracer.Start(ctx, "StockOut", trace.WithAttributes(
		attribute.String("variant.id", req.VariantID),
		attribute.Int("quantity", req.Quantity),
	))
	defer span.End()

	variantID, err := parseID(req.VariantID, "variant_id")
	if err != nil {
		return nil, s.fail(span, "stock out", err)
	}
	if req.Quantity <= 0 {
		return nil, s.fail(span, "stock out", apperror.InvalidInput("quantity must be a positive integer"))
	}
	actor, err := parseActor(userID)
	if err != nil {
		return nil, s.fail(span, "stock out", err)
	}
	var orderRef *uuid.UUID
	if req.OrderID != nil && strings.TrimSpace(*req.OrderID) != "" {
		id, err := parseID(*req.OrderID, "order_id")
		if err != nil {
			return nil, s.fail(span, "stock out", err)
		}
		orderRef = &id
	}
	reason := defaultString(req.Reason, model.ReasonStockOut)

	var result StockOutResult
	var event StockEvent
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err := s.variants.FindByIDForUpdate(txCtx, variantID)
		if err != nil {
			return repository.TranslateError(err, "variant not found")
		}
		if req.Quantity > variant.Stock {
			return apperror.InsufficientStock(variant.Stock, req.Quantity)
		}

		previous := variant.Stock
		orderID, order, err := s.deriver.Resolve(txCtx, OrderContext{
			CreateOrder:   req.CreateOrder,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: req.CustomerEmail,
			OrderID:       orderRef,
			Reason:        reason,
		}, variant, req.Quantity, actor)
		if err != nil {
			return err
		}

		variant.Stock = previous - req.Quantity
		if err := s.variants.UpdateStock(txCtx, variant.ID, variant.Stock); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		entry := &model.InventoryTransaction{
			VariantID: variant.ID,
			Type:      model.TxTypeOut,
			Quantity:  req.Quantity,
			Reason:    reason,
			OrderID:   orderID,
			UserID:    actor,
		}
		if err := s.ledger.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		result = StockOutResult{
			PreviousStock:   previous,
			RemovedQuantity: req.Quantity,
			NewStock:        variant.Stock,
			OrderID:         orderID,
			OrderCreated:    order != nil,
			TransactionID:   entry.ID,
		}
		if order != nil {
			result.OrderNumber = order.OrderNumber
		}
		event = newStockEvent(*variant, model.TxTypeOut, previous, &entry.ID, s.now())
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "stock out", err)
	}

	s.log.Info("Stock out applied",
		zap.String("variant_id", variantID.String()),
		zap.Int("previous_stock", result.PreviousStock),
		zap.Int("new_stock", result.NewStock),
		zap.Bool("order_created", result.OrderCreated))
	publishStockEvents(s.publisher, []StockEvent{event})
	return &result, nil
}

func (s *stockLedgerService) StockAdjust(ctx context.Context, userID string, req StockAdjustRequest) (*StockAdjustResult, error) {
	ctx, span := s.tracer.Start(ctx, "StockAdjust", trace.WithAttributes(
		attribute.String("variant.id", req.VariantID),
	))
	defer span.End()

	variantID, err := parseID(req.VariantID, "variant_id")
	if err != nil {
		return nil, s.fail(span, "stock adjust", err)
	}
	if req.NewStock == nil {
		return nil, s.fail(span, "stock adjust", apperror.InvalidInput("new_stock is required"))
	}
	target := *req.NewStock
	if target < 0 {
		return nil, s.fail(span, "stock adjust", apperror.InvalidInput("new_stock must not be negative"))
	}
	if target > maxStock {
		return nil, s.fail(span, "stock adjust", apperror.InvalidInput("new_stock must not exceed %d", maxStock))
	}
	actor, err := parseActor(userID)
	if err != nil {
		return nil, s.fail(span, "stock adjust", err)
	}

	var result StockAdjustResult
	var events []StockEvent
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err := s.variants.FindByIDForUpdate(txCtx, variantID)
		if err != nil {
			return repository.TranslateError(err, "variant not found")
		}

		previous := variant.Stock
		diff := target - previous
		result = StockAdjustResult{PreviousStock: previous, NewStock: target, Change: diff}
		if diff == 0 {
			return nil
		}

		variant.Stock = target
		if err := s.variants.UpdateStock(txCtx, variant.ID, target); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		entry := &model.InventoryTransaction{
			VariantID: variant.ID,
			Type:      model.TxTypeAdjustment,
			Quantity:  absInt(diff),
			Reason:    defaultString(req.Reason, model.ReasonStockAdjust),
			UserID:    actor,
		}
		if err := s.ledger.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		result.TransactionID = &entry.ID
		events = append(events, newStockEvent(*variant, model.TxTypeAdjustment, previous, &entry.ID, s.now()))
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "stock adjust", err)
	}

	if result.Change != 0 {
		s.log.Info("Stock adjusted",
			zap.String("variant_id", variantID.String()),
			zap.Int("previous_stock", result.PreviousStock),
			zap.Int("new_stock", result.NewStock))
	}
	publishStockEvents(s.publisher, events)
	return &result, nil
}

type bulkItem struct {
	productID uuid.UUID
	size      string
	color     string
	quantity  int
	minStock  *int
	kind      string
}

func (s *stockLedgerService) BulkApply(ctx context.Context, userID string, req BulkApplyRequest) ([]BulkEntryResult, error) {
	ctx, span := s.tracer.Start(ctx, "BulkApply", trace.WithAttributes(
		attribute.Int("entries", len(req.Transactions)),
	))
	defer span.End()

	items, err := validateBulkEntries(req.Transactions)
	if err != nil {
		return nil, s.fail(span, "bulk apply", err)
	}
	actor, err := parseActor(userID)
	if err != nil {
		return nil, s.fail(span, "bulk apply", err)
	}
	supplier := trimmedOrNil(req.Supplier)

	results := make([]BulkEntryResult, 0, len(items))
	events := make([]StockEvent, 0, len(items))
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		checked := make(map[uuid.UUID]bool)
		for i, item := range items {
			if !checked[item.productID] {
				if _, err := s.products.FindByID(txCtx, item.productID); err != nil {
					return repository.TranslateError(err, fmt.Sprintf("transactions[%d]: product not found", i))
				}
				checked[item.productID] = true
			}

			variant, created, err := s.lockOrCreateVariant(txCtx, item)
			if err != nil {
				return fmt.Errorf("transactions[%d]: %w", i, err)
			}

			previous := variant.Stock
			if item.kind == model.TxTypeIn && item.quantity > maxStock-previous {
				return apperror.InvalidInput("transactions[%d]: stock would exceed %d", i, maxStock)
			}
			next := previous + item.quantity
			if item.kind == model.TxTypeOut {
				// bulk stock-out clamps at zero instead of failing
				next = max(0, previous-item.quantity)
			}
			variant.Stock = next
			if item.minStock != nil {
				variant.MinStock = *item.minStock
			}
			if err := s.variants.UpdateStockAndMinStock(txCtx, variant.ID, next, item.minStock); err != nil {
				return fmt.Errorf("transactions[%d]: failed to update stock: %w", i, err)
			}

			result := BulkEntryResult{
				VariantID:         variant.ID,
				Type:              item.kind,
				PreviousStock:     previous,
				NewStock:          next,
				RequestedQuantity: item.quantity,
				VariantCreated:    created,
			}
			// an out against an empty variant moves nothing and leaves no entry
			if next == previous {
				results = append(results, result)
				continue
			}

			entry := &model.InventoryTransaction{
				VariantID: variant.ID,
				Type:      item.kind,
				Quantity:  absInt(next - previous),
				Reason:    defaultString(req.Reason, "Bulk "+item.kind),
				Supplier:  supplier,
				UserID:    actor,
			}
			if err := s.ledger.Create(txCtx, entry); err != nil {
				return fmt.Errorf("transactions[%d]: failed to record transaction: %w", i, err)
			}

			result.TransactionID = &entry.ID
			result.Quantity = entry.Quantity
			results = append(results, result)
			events = append(events, newStockEvent(*variant, item.kind, previous, &entry.ID, s.now()))
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "bulk apply", err)
	}

	s.log.Info("Bulk transaction applied", zap.Int("entries", len(results)))
	publishStockEvents(s.publisher, events)
	return results, nil
}

func (s *stockLedgerService) lockOrCreateVariant(ctx context.Context, item bulkItem) (*model.ProductVariant, bool, error) {
	variant, err := s.variants.FindByKeyForUpdate(ctx, item.productID, item.size, item.color)
	if err == nil {
		return variant, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	minStock := s.opts.BulkDefaultMinStock
	if item.minStock != nil {
		minStock = *item.minStock
	}
	variant = &model.ProductVariant{
		ProductID: item.productID,
		Size:      item.size,
		Color:     item.color,
		Stock:     0,
		MinStock:  minStock,
	}
	if err := s.variants.Create(ctx, variant); err != nil {
		return nil, false, fmt.Errorf("failed to create variant: %w", err)
	}
	return variant, true, nil
}

// validateBulkEntries checks the whole batch before anything is written.
func validateBulkEntries(entries []BulkEntry) ([]bulkItem, error) {
	if len(entries) == 0 {
		return nil, apperror.InvalidInput("transactions must be a non-empty list")
	}

	items := make([]bulkItem, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.ProductID) == "" {
			return nil, apperror.InvalidInput("transactions[%d]: product_id is required", i)
		}
		productID, err := uuid.Parse(strings.TrimSpace(e.ProductID))
		if err != nil {
			return nil, apperror.InvalidInput("transactions[%d]: product_id is not a valid id", i)
		}
		size := strings.TrimSpace(e.Size)
		color := strings.TrimSpace(e.Color)
		if size == "" || color == "" {
			return nil, apperror.InvalidInput("transactions[%d]: size and color are required", i)
		}
		if e.Quantity <= 0 {
			return nil, apperror.InvalidInput("transactions[%d]: quantity must be a positive integer", i)
		}
		if e.MinStock != nil && *e.MinStock < 0 {
			return nil, apperror.InvalidInput("transactions[%d]: min_stock must not be negative", i)
		}
		kind := strings.ToLower(strings.TrimSpace(e.Type))
		if kind == "" {
			kind = model.TxTypeIn
		}
		if kind != model.TxTypeIn && kind != model.TxTypeOut {
			return nil, apperror.InvalidInput("transactions[%d]: type must be in or out", i)
		}

		items = append(items, bulkItem{
			productID: productID,
			size:      size,
			color:     color,
			quantity:  e.Quantity,
			minStock:  e.MinStock,
			kind:      kind,
		})
	}
	return items, nil
}

// fail normalizes err, records it on the span and logs it.
func (s *stockLedgerService) fail(span trace.Span, op string, err error) error {
	err = repository.TranslateError(err, "")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if apperror.KindOf(err) == apperror.KindInternal {
		s.log.Error("Stock operation failed", zap.String("op", op), zap.Error(err))
	} else {
		s.log.Warn("Stock operation rejected", zap.String("op", op), zap.Error(err))
	}
	return err
}
