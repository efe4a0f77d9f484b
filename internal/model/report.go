package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesPeriod aggregates completed orders for one bucket of a sales report
type SalesPeriod struct {
	Period      string          `json:"period"`
	OrderCount  int             `json:"order_count"`
	ItemsSold   int             `json:"items_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	AverageSale decimal.Decimal `json:"average_sale"`
}

// ProductRanking represents a ranked product based on accumulated quantities
type ProductRanking struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductSKU    string          `json:"product_sku"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// ProductProfit is one row of the profit report
type ProductProfit struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductSKU   string          `json:"product_sku"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	Margin       decimal.Decimal `json:"margin"` // percent
}

// SalesSummary totals a sales report
type SalesSummary struct {
	OrderCount  int             `json:"order_count"`
	ItemsSold   int             `json:"items_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	AverageSale decimal.Decimal `json:"average_sale"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
}
