package service

import (
	"time"

	"clothingstore/internal/model"

	"github.com/google/uuid"
)

const (
	EventStockUpdated = "stock.updated"
	EventStockAlert   = "stock.alert"
)

// EventPublisher receives stock events after the change is committed.
// Publish must not block.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

// StockEvent describes a committed stock change of one variant.
type StockEvent struct {
	VariantID     uuid.UUID  `json:"variant_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Size          string     `json:"size"`
	Color         string     `json:"color"`
	Type          string     `json:"type"`
	PreviousStock int        `json:"previous_stock"`
	NewStock      int        `json:"new_stock"`
	MinStock      int        `json:"min_stock"`
	Status        string     `json:"status"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func newStockEvent(v model.ProductVariant, txType string, previous int, txID *uuid.UUID, at time.Time) StockEvent {
	return StockEvent{
		VariantID:     v.ID,
		ProductID:     v.ProductID,
		Size:          v.Size,
		Color:         v.Color,
		Type:          txType,
		PreviousStock: previous,
		NewStock:      v.Stock,
		MinStock:      v.MinStock,
		Status:        v.StockStatus(),
		TransactionID: txID,
		OccurredAt:    at,
	}
}

func publishStockEvents(p EventPublisher, events []StockEvent) {
	for _, e := range events {
		p.Publish(EventStockUpdated, e)
		if e.Status != model.StockStatusIn {
			p.Publish(EventStockAlert, e)
		}
	}
}
