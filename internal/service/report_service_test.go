package service

import (
	"context"
	"testing"
	"time"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) SalesByPeriod(ctx context.Context, groupBy string, rng repository.DateRange) ([]model.SalesPeriod, error) {
	args := m.Called(ctx, groupBy, rng)
	periods, _ := args.Get(0).([]model.SalesPeriod)
	return periods, args.Error(1)
}

func (m *mockReportRepo) TopProducts(ctx context.Context, rng repository.DateRange, limit int) ([]model.ProductRanking, error) {
	args := m.Called(ctx, rng, limit)
	top, _ := args.Get(0).([]model.ProductRanking)
	return top, args.Error(1)
}

func (m *mockReportRepo) ProfitByProduct(ctx context.Context, rng repository.DateRange) ([]model.ProductProfit, error) {
	args := m.Called(ctx, rng)
	rows, _ := args.Get(0).([]model.ProductProfit)
	return rows, args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReportService_SalesTotalsAndDefaults(t *testing.T) {
	repo := new(mockReportRepo)
	repo.On("SalesByPeriod", mock.Anything, "day", mock.Anything).Return([]model.SalesPeriod{
		{Period: "2024-03-01", OrderCount: 2, ItemsSold: 3, Revenue: dec("300000")},
		{Period: "2024-03-02", OrderCount: 1, ItemsSold: 1, Revenue: dec("100000")},
	}, nil)
	repo.On("TopProducts", mock.Anything, mock.Anything, topProductsLimit).Return(nil, nil)

	svc := NewReportService(repo, memVariants{newMemStore()})
	report, err := svc.Sales(context.Background(), ReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, "day", report.GroupBy)
	assert.Equal(t, 3, report.Summary.OrderCount)
	assert.Equal(t, 4, report.Summary.ItemsSold)
	assert.True(t, dec("400000").Equal(report.Summary.Revenue))
	assert.True(t, dec("133333.33").Equal(report.Summary.AverageSale), report.Summary.AverageSale.String())
	assert.True(t, dec("150000").Equal(report.Periods[0].AverageSale))
	assert.Nil(t, report.Summary.StartDate)
	assert.NotNil(t, report.TopProducts)
	assert.Empty(t, report.TopProducts)
	repo.AssertExpectations(t)
}

func TestReportService_SalesPassesInclusiveRange(t *testing.T) {
	repo := new(mockReportRepo)
	svc := &reportService{reports: repo, variants: memVariants{newMemStore()}, loc: time.UTC}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	wantRange := mock.MatchedBy(func(r repository.DateRange) bool {
		return r.From != nil && r.From.Equal(from) && r.Before != nil && r.Before.Equal(before)
	})
	repo.On("SalesByPeriod", mock.Anything, "month", wantRange).Return([]model.SalesPeriod{}, nil)
	repo.On("TopProducts", mock.Anything, wantRange, topProductsLimit).Return([]model.ProductRanking{}, nil)

	report, err := svc.Sales(context.Background(), ReportQuery{StartDate: "2024-03-01", EndDate: "2024-03-31", GroupBy: "Month"})
	require.NoError(t, err)
	assert.Equal(t, "month", report.GroupBy)
	assert.True(t, report.Summary.AverageSale.IsZero())
	repo.AssertExpectations(t)
}

func TestReportService_SalesRejectsBadInput(t *testing.T) {
	repo := new(mockReportRepo)
	svc := NewReportService(repo, memVariants{newMemStore()})

	for _, q := range []ReportQuery{
		{GroupBy: "hour"},
		{StartDate: "2024-13-01"},
		{StartDate: "2024-03-05", EndDate: "2024-03-01"},
	} {
		_, err := svc.Sales(context.Background(), q)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput, "%+v", q)
	}
	repo.AssertNotCalled(t, "SalesByPeriod", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_ProfitMargins(t *testing.T) {
	repo := new(mockReportRepo)
	repo.On("ProfitByProduct", mock.Anything, mock.Anything).Return([]model.ProductProfit{
		{ProductName: "Tee", QuantitySold: 4, Revenue: dec("600000"), Cost: dec("320000")},
		{ProductName: "Gift", QuantitySold: 1, Revenue: decimal.Zero, Cost: dec("50000")},
	}, nil)

	svc := NewReportService(repo, memVariants{newMemStore()})
	report, err := svc.Profit(context.Background(), ReportQuery{})
	require.NoError(t, err)

	require.Len(t, report.Products, 2)
	assert.True(t, dec("280000").Equal(report.Products[0].GrossProfit))
	assert.True(t, dec("46.67").Equal(report.Products[0].Margin), report.Products[0].Margin.String())
	assert.True(t, dec("-50000").Equal(report.Products[1].GrossProfit))
	assert.True(t, report.Products[1].Margin.IsZero())

	assert.True(t, dec("600000").Equal(report.TotalRevenue))
	assert.True(t, dec("370000").Equal(report.TotalCost))
	assert.True(t, dec("230000").Equal(report.GrossProfit))
	assert.True(t, dec("38.33").Equal(report.Margin), report.Margin.String())
}

func TestReportService_InventoryListsEveryVariant(t *testing.T) {
	store := newMemStore()
	cat := store.seedCategory("Pants")
	p := store.seedProduct(&cat.ID, "CHI", "Chino", 120, 250)
	store.seedVariant(p.ID, "30", "Khaki", 0, 2)
	store.seedVariant(p.ID, "32", "Khaki", 9, 2)

	svc := NewReportService(new(mockReportRepo), memVariants{store})
	report, err := svc.Inventory(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, report.Variants, 2)
	assert.Len(t, report.Alerts, 1)
	assert.Equal(t, 2, report.Summary.TotalVariants)
	assert.True(t, dec("1080").Equal(report.Summary.TotalStockValue))
}
