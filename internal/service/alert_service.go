package service

import (
	"cmp"
	"context"
	"slices"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockAlert struct {
	VariantID    uuid.UUID `json:"variant_id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	CategoryName string    `json:"category_name"`
	Size         string    `json:"size"`
	Color        string    `json:"color"`
	Stock        int       `json:"stock"`
	MinStock     int       `json:"min_stock"`
	Deficit      int       `json:"deficit"`
	Status       string    `json:"status"`
}

type AlertSummary struct {
	TotalVariants   int             `json:"total_variants"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	LowStockCount   int             `json:"low_stock_count"`
	InStockCount    int             `json:"in_stock_count"`
	TotalUnits      int             `json:"total_units"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
}

type AlertReport struct {
	Summary AlertSummary `json:"summary"`
	Alerts  []StockAlert `json:"alerts"`
}

// AlertService classifies variants; it never writes.
type AlertService interface {
	GetAlerts(ctx context.Context, categoryID string) (*AlertReport, error)
}

type alertService struct {
	variants repository.VariantRepository
}

func NewAlertService(variants repository.VariantRepository) AlertService {
	return &alertService{variants: variants}
}

func (s *alertService) GetAlerts(ctx context.Context, categoryID string) (*AlertReport, error) {
	catID, err := parseOptionalID(categoryID, "category_id")
	if err != nil {
		return nil, err
	}

	variants, err := s.variants.ListAll(ctx, repository.VariantFilter{CategoryID: catID})
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}

	report := BuildAlertReport(variants)
	return &report, nil
}

// BuildAlertReport aggregates the variants and ranks the ones needing
// attention, most urgent (lowest stock - min_stock) first.
func BuildAlertReport(variants []model.ProductVariant) AlertReport {
	report := AlertReport{
		Summary: AlertSummary{TotalStockValue: decimal.Zero},
		Alerts:  []StockAlert{},
	}

	for _, v := range variants {
		report.Summary.TotalVariants++
		report.Summary.TotalUnits += v.Stock
		if v.Product != nil {
			report.Summary.TotalStockValue = report.Summary.TotalStockValue.
				Add(v.Product.PurchasePrice.Mul(decimal.NewFromInt(int64(v.Stock))))
		}

		switch {
		case v.IsOutOfStock():
			report.Summary.OutOfStockCount++
		case v.IsLowStock():
			report.Summary.LowStockCount++
		default:
			report.Summary.InStockCount++
		}

		if v.NeedsAttention() {
			report.Alerts = append(report.Alerts, toStockAlert(v))
		}
	}

	slices.SortStableFunc(report.Alerts, func(a, b StockAlert) int {
		return cmp.Or(
			cmp.Compare(a.Stock-a.MinStock, b.Stock-b.MinStock),
			cmp.Compare(a.ProductName, b.ProductName),
			cmp.Compare(a.Size, b.Size),
			cmp.Compare(a.Color, b.Color),
		)
	})
	return report
}

func toStockAlert(v model.ProductVariant) StockAlert {
	alert := StockAlert{
		VariantID: v.ID,
		ProductID: v.ProductID,
		Size:      v.Size,
		Color:     v.Color,
		Stock:     v.Stock,
		MinStock:  v.MinStock,
		Deficit:   v.Deficit(),
		Status:    v.StockStatus(),
	}
	if v.Product != nil {
		alert.ProductName = v.Product.Name
		alert.SKU = v.Product.SKU
		if v.Product.Category != nil {
			alert.CategoryName = v.Product.Category.Name
		}
	}
	return alert
}
