package service

import (
	"context"
	"strings"
	"time"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"

	"github.com/shopspring/decimal"
)

const topProductsLimit = 10

// ReportQuery carries optional YYYY-MM-DD bounds, both inclusive.
type ReportQuery struct {
	StartDate string
	EndDate   string
	GroupBy   string
}

type SalesReport struct {
	Summary     model.SalesSummary     `json:"summary"`
	Periods     []model.SalesPeriod    `json:"periods"`
	TopProducts []model.ProductRanking `json:"top_products"`
	GroupBy     string                 `json:"group_by"`
}

type InventoryReport struct {
	Summary  AlertSummary       `json:"summary"`
	Alerts   []StockAlert       `json:"alerts"`
	Variants []VariantStockView `json:"variants"`
}

type ProfitReport struct {
	Products     []model.ProductProfit `json:"products"`
	TotalRevenue decimal.Decimal       `json:"total_revenue"`
	TotalCost    decimal.Decimal       `json:"total_cost"`
	GrossProfit  decimal.Decimal       `json:"gross_profit"`
	Margin       decimal.Decimal       `json:"margin"`
}

type ReportService interface {
	Sales(ctx context.Context, q ReportQuery) (*SalesReport, error)
	Inventory(ctx context.Context, categoryID string) (*InventoryReport, error)
	Profit(ctx context.Context, q ReportQuery) (*ProfitReport, error)
}

type reportService struct {
	reports  repository.ReportRepository
	variants repository.VariantRepository
	loc      *time.Location
}

func NewReportService(reports repository.ReportRepository, variants repository.VariantRepository) ReportService {
	return &reportService{reports: reports, variants: variants, loc: time.Local}
}

func (s *reportService) Sales(ctx context.Context, q ReportQuery) (*SalesReport, error) {
	groupBy := strings.ToLower(defaultString(q.GroupBy, "day"))
	if !repository.ValidGroupBy(groupBy) {
		return nil, apperror.InvalidInput("group_by must be one of day, week, month, year")
	}
	rng, start, end, err := s.dateRange(q)
	if err != nil {
		return nil, err
	}

	periods, err := s.reports.SalesByPeriod(ctx, groupBy, rng)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}
	top, err := s.reports.TopProducts(ctx, rng, topProductsLimit)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}

	summary := model.SalesSummary{Revenue: decimal.Zero, AverageSale: decimal.Zero, StartDate: start, EndDate: end}
	for i := range periods {
		p := &periods[i]
		p.AverageSale = averageOf(p.Revenue, p.OrderCount)
		summary.OrderCount += p.OrderCount
		summary.ItemsSold += p.ItemsSold
		summary.Revenue = summary.Revenue.Add(p.Revenue)
	}
	summary.AverageSale = averageOf(summary.Revenue, summary.OrderCount)

	if periods == nil {
		periods = []model.SalesPeriod{}
	}
	if top == nil {
		top = []model.ProductRanking{}
	}
	return &SalesReport{Summary: summary, Periods: periods, TopProducts: top, GroupBy: groupBy}, nil
}

func (s *reportService) Inventory(ctx context.Context, categoryID string) (*InventoryReport, error) {
	catID, err := parseOptionalID(categoryID, "category_id")
	if err != nil {
		return nil, err
	}
	variants, err := s.variants.ListAll(ctx, repository.VariantFilter{CategoryID: catID})
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}

	alerts := BuildAlertReport(variants)
	rows := make([]VariantStockView, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, toVariantStockView(v))
	}
	return &InventoryReport{Summary: alerts.Summary, Alerts: alerts.Alerts, Variants: rows}, nil
}

func (s *reportService) Profit(ctx context.Context, q ReportQuery) (*ProfitReport, error) {
	rng, _, _, err := s.dateRange(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.reports.ProfitByProduct(ctx, rng)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}

	report := &ProfitReport{
		Products:     []model.ProductProfit{},
		TotalRevenue: decimal.Zero,
		TotalCost:    decimal.Zero,
	}
	for _, r := range rows {
		r.GrossProfit = r.Revenue.Sub(r.Cost)
		r.Margin = marginOf(r.GrossProfit, r.Revenue)
		report.TotalRevenue = report.TotalRevenue.Add(r.Revenue)
		report.TotalCost = report.TotalCost.Add(r.Cost)
		report.Products = append(report.Products, r)
	}
	report.GrossProfit = report.TotalRevenue.Sub(report.TotalCost)
	report.Margin = marginOf(report.GrossProfit, report.TotalRevenue)
	return report, nil
}

func (s *reportService) dateRange(q ReportQuery) (repository.DateRange, *time.Time, *time.Time, error) {
	var rng repository.DateRange
	start, err := parseDay(q.StartDate, "start_date", s.loc)
	if err != nil {
		return rng, nil, nil, err
	}
	end, err := parseDay(q.EndDate, "end_date", s.loc)
	if err != nil {
		return rng, nil, nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return rng, nil, nil, apperror.InvalidInput("start_date must not be after end_date")
	}
	rng.From = start
	if end != nil {
		next := end.AddDate(0, 0, 1)
		rng.Before = &next
	}
	return rng, start, end, nil
}

func averageOf(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// marginOf is profit as a percentage of revenue, 0 when there was no revenue.
func marginOf(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
}
