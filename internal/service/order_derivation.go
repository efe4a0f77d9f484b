package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderContext is the sale information that may accompany a stock-out.
type OrderContext struct {
	CreateOrder   bool
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	OrderID       *uuid.UUID
	Reason        string
}

// OrderPolicy decides whether a stock-out becomes a sales order.
type OrderPolicy interface {
	ShouldCreateOrder(oc OrderContext) bool
}

// ExplicitFlagPolicy creates an order only on explicit intent: the flag or customer details.
type ExplicitFlagPolicy struct{}

func (ExplicitFlagPolicy) ShouldCreateOrder(oc OrderContext) bool {
	return oc.CreateOrder ||
		strings.TrimSpace(oc.CustomerName) != "" ||
		strings.TrimSpace(oc.CustomerPhone) != ""
}

// SaleKeywordPolicy additionally treats a reason containing a sale keyword
// (e.g. "bán") as a sale, unless the stock-out references an existing order.
type SaleKeywordPolicy struct {
	Keywords []string
}

func (p SaleKeywordPolicy) ShouldCreateOrder(oc OrderContext) bool {
	if (ExplicitFlagPolicy{}).ShouldCreateOrder(oc) {
		return true
	}
	if oc.OrderID != nil {
		return false
	}
	reason := strings.ToLower(oc.Reason)
	for _, kw := range p.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(reason, kw) {
			return true
		}
	}
	return false
}

// NewOrderPolicy returns the policy for a config mode ("keyword" or "flag").
func NewOrderPolicy(mode string, keywords []string) OrderPolicy {
	if mode == "flag" {
		return ExplicitFlagPolicy{}
	}
	return SaleKeywordPolicy{Keywords: keywords}
}

// OrderDeriver links stock-outs to orders: it creates one when the policy says
// so, otherwise verifies an explicitly referenced order.
type OrderDeriver struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	policy     OrderPolicy
	walkInName string
	now        func() time.Time
}

func NewOrderDeriver(orders repository.OrderRepository, products repository.ProductRepository, policy OrderPolicy, walkInName string) *OrderDeriver {
	return &OrderDeriver{
		orders:     orders,
		products:   products,
		policy:     policy,
		walkInName: walkInName,
		now:        time.Now,
	}
}

// Resolve runs inside the stock-out transaction. It returns the order id to
// record on the ledger entry and the order when one was created.
func (d *OrderDeriver) Resolve(ctx context.Context, oc OrderContext, variant *model.ProductVariant, quantity int, actor *uuid.UUID) (*uuid.UUID, *model.Order, error) {
	if d.policy.ShouldCreateOrder(oc) {
		order, err := d.create(ctx, oc, variant, quantity, actor)
		if err != nil {
			return nil, nil, err
		}
		return &order.ID, order, nil
	}

	if oc.OrderID == nil {
		return nil, nil, nil
	}
	exists, err := d.orders.Exists(ctx, *oc.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check order: %w", err)
	}
	if !exists {
		return nil, nil, apperror.NotFound("order not found")
	}
	return oc.OrderID, nil, nil
}

func (d *OrderDeriver) create(ctx context.Context, oc OrderContext, variant *model.ProductVariant, quantity int, actor *uuid.UUID) (*model.Order, error) {
	product, err := d.products.FindByID(ctx, variant.ProductID)
	if err != nil {
		return nil, repository.TranslateError(err, "product not found")
	}

	customer := strings.TrimSpace(oc.CustomerName)
	if customer == "" {
		customer = d.walkInName
	}

	lineTotal := product.SalePrice.Mul(decimal.NewFromInt(int64(quantity)))
	order := &model.Order{
		OrderNumber:   fmt.Sprintf("ORD-%d", d.now().UnixMilli()),
		CustomerName:  customer,
		CustomerPhone: strings.TrimSpace(oc.CustomerPhone),
		CustomerEmail: strings.TrimSpace(oc.CustomerEmail),
		TotalAmount:   lineTotal,
		Status:        model.OrderStatusCompleted,
		PaymentStatus: model.PaymentStatusPaid,
		Notes:         oc.Reason,
		UserID:        actor,
		Items: []model.OrderItem{{
			VariantID: variant.ID,
			Quantity:  quantity,
			UnitPrice: product.SalePrice,
			LineTotal: lineTotal,
		}},
	}

	if err := d.orders.Create(ctx, order); err != nil {
		return nil, repository.TranslateError(err, "")
	}
	return order, nil
}
