package service

import (
	"context"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"
	"clothingstore/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const recentTransactionsLimit = 10

type VariantListQuery struct {
	Search     string
	CategoryID string
	LowStock   bool
	OutOfStock bool
	Page       pagination.Params
}

// VariantStockView is a variant with its product context and stock status.
type VariantStockView struct {
	VariantID     uuid.UUID       `json:"variant_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	SKU           string          `json:"sku"`
	CategoryName  string          `json:"category_name"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	Status        string          `json:"status"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockValue    decimal.Decimal `json:"stock_value"`
}

type VariantPage struct {
	Variants   []VariantStockView `json:"variants"`
	Pagination pagination.Meta    `json:"pagination"`
}

type CategoryStock struct {
	CategoryName    string          `json:"category_name"`
	VariantCount    int             `json:"variant_count"`
	TotalUnits      int             `json:"total_units"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	StockValue      decimal.Decimal `json:"stock_value"`
}

type InventorySummary struct {
	Overview           AlertSummary      `json:"overview"`
	Categories         []CategoryStock   `json:"categories"`
	RecentTransactions []TransactionView `json:"recent_transactions"`
}

// InventoryService serves read-only stock views.
type InventoryService interface {
	ListVariants(ctx context.Context, q VariantListQuery) (*VariantPage, error)
	GetSummary(ctx context.Context) (*InventorySummary, error)
}

type inventoryService struct {
	variants repository.VariantRepository
	ledger   repository.InventoryTxRepository
}

func NewInventoryService(variants repository.VariantRepository, ledger repository.InventoryTxRepository) InventoryService {
	return &inventoryService{variants: variants, ledger: ledger}
}

func (s *inventoryService) ListVariants(ctx context.Context, q VariantListQuery) (*VariantPage, error) {
	catID, err := parseOptionalID(q.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}

	variants, total, err := s.variants.List(ctx, repository.VariantFilter{
		CategoryID: catID,
		Search:     q.Search,
		LowStock:   q.LowStock,
		OutOfStock: q.OutOfStock,
	}, q.Page.Offset, q.Page.Limit)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}

	views := make([]VariantStockView, 0, len(variants))
	for _, v := range variants {
		views = append(views, toVariantStockView(v))
	}
	return &VariantPage{Variants: views, Pagination: q.Page.Meta(total)}, nil
}

func (s *inventoryService) GetSummary(ctx context.Context) (*InventorySummary, error) {
	variants, err := s.variants.ListAll(ctx, repository.VariantFilter{})
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}
	recent, err := s.ledger.Recent(ctx, recentTransactionsLimit)
	if err != nil {
		return nil, repository.TranslateError(err, "")
	}

	return &InventorySummary{
		Overview:           BuildAlertReport(variants).Summary,
		Categories:         groupByCategory(variants),
		RecentTransactions: toTransactionViews(recent),
	}, nil
}

func groupByCategory(variants []model.ProductVariant) []CategoryStock {
	index := make(map[string]int)
	out := []CategoryStock{}
	for _, v := range variants {
		name := "Uncategorized"
		if v.Product != nil && v.Product.Category != nil {
			name = v.Product.Category.Name
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryStock{CategoryName: name, StockValue: decimal.Zero})
		}

		c := &out[i]
		c.VariantCount++
		c.TotalUnits += v.Stock
		if v.IsOutOfStock() {
			c.OutOfStockCount++
		} else if v.IsLowStock() {
			c.LowStockCount++
		}
		if v.Product != nil {
			c.StockValue = c.StockValue.Add(v.Product.PurchasePrice.Mul(decimal.NewFromInt(int64(v.Stock))))
		}
	}
	return out
}

func toVariantStockView(v model.ProductVariant) VariantStockView {
	view := VariantStockView{
		VariantID:     v.ID,
		ProductID:     v.ProductID,
		Size:          v.Size,
		Color:         v.Color,
		Stock:         v.Stock,
		MinStock:      v.MinStock,
		Status:        v.StockStatus(),
		PurchasePrice: decimal.Zero,
		SalePrice:     decimal.Zero,
		StockValue:    decimal.Zero,
	}
	if p := v.Product; p != nil {
		view.ProductName = p.Name
		view.SKU = p.SKU
		view.PurchasePrice = p.PurchasePrice
		view.SalePrice = p.SalePrice
		view.StockValue = p.PurchasePrice.Mul(decimal.NewFromInt(int64(v.Stock)))
		if p.Category != nil {
			view.CategoryName = p.Category.Name
		}
	}
	return view
}
