package service

import (
	"context"
	"testing"

	"clothingstore/internal/model"
	"clothingstore/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHistory writes in, out, adjustment (oldest to newest), all on 2024-03-01.
func seedHistory(t *testing.T) (*ledgerFixture, TransactionQueryService) {
	t.Helper()
	f := newLedgerFixture(t, 10, 2, defaultPolicy())
	ctx := context.Background()
	user := f.actor.ID.String()
	vid := f.variant.ID.String()

	_, err := f.svc.StockIn(ctx, user, StockInRequest{VariantID: vid, Quantity: 5, Reason: "Nhập hàng mới"})
	require.NoError(t, err)
	_, err = f.svc.StockOut(ctx, user, StockOutRequest{VariantID: vid, Quantity: 3, Reason: "Bán hàng"})
	require.NoError(t, err)
	_, err = f.svc.StockAdjust(ctx, user, StockAdjustRequest{VariantID: vid, NewStock: intPtr(7), Reason: "Kiểm kê"})
	require.NoError(t, err)

	return f, NewTransactionQueryService(memLedger{f.store})
}

func TestTransactionQuery_NewestFirstWithJoinedNames(t *testing.T) {
	f, svc := seedHistory(t)

	page, err := svc.List(context.Background(), TransactionQuery{Page: 1, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Transactions, 2)

	first := page.Transactions[0]
	assert.Equal(t, model.TxTypeAdjustment, first.Type)
	assert.Equal(t, 5, first.Quantity)
	assert.Equal(t, "Áo thun basic", first.ProductName)
	assert.Equal(t, "TS-001", first.SKU)
	assert.Equal(t, "Áo", first.CategoryName)
	assert.Equal(t, f.variant.ID, first.VariantID)
	assert.Equal(t, f.product.ID, first.ProductID)
	require.NotNil(t, first.UserName)
	assert.Equal(t, "Kho", *first.UserName)

	second := page.Transactions[1]
	assert.Equal(t, model.TxTypeOut, second.Type)
	assert.NotNil(t, second.OrderID)

	next, err := svc.List(context.Background(), TransactionQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, next.Transactions, 1)
	assert.Equal(t, model.TxTypeIn, next.Transactions[0].Type)
}

func TestTransactionQuery_Filters(t *testing.T) {
	f, svc := seedHistory(t)
	other := f.store.seedUser("Someone", "s@example.com", "x", model.RoleStaff, true)

	tests := []struct {
		name  string
		query TransactionQuery
		want  int
	}{
		{"no filter", TransactionQuery{}, 3},
		{"by type", TransactionQuery{Type: "OUT"}, 1},
		{"by variant", TransactionQuery{VariantID: f.variant.ID.String()}, 3},
		{"by product", TransactionQuery{ProductID: f.product.ID.String()}, 3},
		{"by acting user", TransactionQuery{UserID: f.actor.ID.String()}, 3},
		{"by another user", TransactionQuery{UserID: other.ID.String()}, 0},
		{"search reason", TransactionQuery{Search: "kiểm"}, 1},
		{"search product name", TransactionQuery{Search: "thun"}, 3},
		{"search sku", TransactionQuery{Search: "ts-001"}, 3},
		{"single day range includes the whole end day", TransactionQuery{StartDate: "2024-03-01", EndDate: "2024-03-01"}, 3},
		{"range before the entries", TransactionQuery{EndDate: "2024-02-29"}, 0},
		{"range after the entries", TransactionQuery{StartDate: "2024-03-02"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.ListAll(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Len(t, views, tt.want)
		})
	}
}

func TestTransactionQuery_RejectsBadInput(t *testing.T) {
	_, svc := seedHistory(t)

	tests := []struct {
		name  string
		query TransactionQuery
	}{
		{"unknown type", TransactionQuery{Page: 1, Limit: 20, Type: "transfer"}},
		{"bad variant id", TransactionQuery{Page: 1, Limit: 20, VariantID: "abc"}},
		{"bad product id", TransactionQuery{Page: 1, Limit: 20, ProductID: "abc"}},
		{"bad date", TransactionQuery{Page: 1, Limit: 20, StartDate: "01/03/2024"}},
		{"reversed range", TransactionQuery{Page: 1, Limit: 20, StartDate: "2024-03-02", EndDate: "2024-03-01"}},
		{"page zero", TransactionQuery{Page: 0, Limit: 20}},
		{"limit too large", TransactionQuery{Page: 1, Limit: 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.List(context.Background(), tt.query)
			require.Error(t, err)
			assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
		})
	}
}
