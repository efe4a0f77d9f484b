package repository

import (
	"context"
	"fmt"
	"time"

	"clothingstore/internal/model"

	"gorm.io/gorm"
)

// periodFormats maps a report grouping to its date_trunc unit and label format.
var periodFormats = map[string][2]string{
	"day":   {"day", "YYYY-MM-DD"},
	"week":  {"week", "IYYY-\"W\"IW"},
	"month": {"month", "YYYY-MM"},
	"year":  {"year", "YYYY"},
}

// ValidGroupBy reports whether groupBy is a supported sales report bucket.
func ValidGroupBy(groupBy string) bool {
	_, ok := periodFormats[groupBy]
	return ok
}

// DateRange bounds a report. Before is exclusive; nil bounds are open.
type DateRange struct {
	From   *time.Time
	Before *time.Time
}

type ReportRepository interface {
	SalesByPeriod(ctx context.Context, groupBy string, rng DateRange) ([]model.SalesPeriod, error)
	TopProducts(ctx context.Context, rng DateRange, limit int) ([]model.ProductRanking, error)
	ProfitByProduct(ctx context.Context, rng DateRange) ([]model.ProductProfit, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) completedItems(ctx context.Context, rng DateRange) *gorm.DB {
	db := GetDB(ctx, r.db).Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", model.OrderStatusCompleted)
	if rng.From != nil {
		db = db.Where("orders.created_at >= ?", *rng.From)
	}
	if rng.Before != nil {
		db = db.Where("orders.created_at < ?", *rng.Before)
	}
	return db
}

func (r *reportRepository) SalesByPeriod(ctx context.Context, groupBy string, rng DateRange) ([]model.SalesPeriod, error) {
	format, ok := periodFormats[groupBy]
	if !ok {
		return nil, fmt.Errorf("unsupported grouping %q", groupBy)
	}
	// unit and format come from the whitelist above, never from the request
	bucket := fmt.Sprintf("date_trunc('%s', orders.created_at)", format[0])

	var rows []model.SalesPeriod
	if err := r.completedItems(ctx, rng).
		Select(fmt.Sprintf("to_char(%s, '%s') AS period, "+
			"COUNT(DISTINCT orders.id) AS order_count, "+
			"COALESCE(SUM(order_items.quantity), 0) AS items_sold, "+
			"COALESCE(SUM(order_items.line_total), 0) AS revenue", bucket, format[1])).
		Group(bucket).
		Order(bucket).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query sales by period: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) TopProducts(ctx context.Context, rng DateRange, limit int) ([]model.ProductRanking, error) {
	var rankings []model.ProductRanking
	if err := r.completedItems(ctx, rng).
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, " +
			"SUM(order_items.quantity) as total_quantity, SUM(order_items.line_total) as total_value").
		Joins("JOIN product_variants ON product_variants.id = order_items.variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Group("products.id, products.name, products.sku").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rankings, nil
}

func (r *reportRepository) ProfitByProduct(ctx context.Context, rng DateRange) ([]model.ProductProfit, error) {
	var rows []model.ProductProfit
	if err := r.completedItems(ctx, rng).
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, " +
			"SUM(order_items.quantity) as quantity_sold, " +
			"SUM(order_items.line_total) as revenue, " +
			"SUM(order_items.quantity * products.purchase_price) as cost").
		Joins("JOIN product_variants ON product_variants.id = order_items.variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Group("products.id, products.name, products.sku").
		Order("revenue DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query profit by product: %w", err)
	}
	return rows, nil
}
