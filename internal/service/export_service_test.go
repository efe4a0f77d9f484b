package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, content []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportTransactions(t *testing.T) {
	f, transactions := seedHistory(t)
	svc := NewExportService(transactions, NewReportService(new(mockReportRepo), memVariants{f.store})).(*exportService)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local) }

	file, err := svc.ExportTransactions(context.Background(), TransactionQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Bao_cao_giao_dich_kho_20240305_143000.xlsx", file.Filename)

	rows := openWorkbook(t, file.Content, "Giao dịch kho")
	require.Len(t, rows, 4)
	assert.Equal(t, "Ngày giờ", rows[0][0])
	assert.Equal(t, "Mã đơn hàng", rows[0][11])

	// newest first: adjustment, out, in
	assert.Equal(t, "Điều chỉnh", rows[1][1])
	assert.Equal(t, "Xuất kho", rows[2][1])
	assert.Equal(t, "-3", rows[2][7])
	assert.Len(t, rows[2], 12, "sale has an order reference")
	assert.Equal(t, "Nhập kho", rows[3][1])
	assert.Equal(t, "5", rows[3][7])
	assert.Equal(t, "Áo thun basic", rows[3][2])
	assert.Equal(t, "Kho", rows[3][9])
}

func TestExportInventory(t *testing.T) {
	store := newMemStore()
	cat := store.seedCategory("Pants")
	p := store.seedProduct(&cat.ID, "CHI", "Chino", 120, 250)
	store.seedVariant(p.ID, "30", "Khaki", 0, 2)
	store.seedVariant(p.ID, "32", "Khaki", 9, 2)

	svc := NewExportService(NewTransactionQueryService(memLedger{store}), NewReportService(new(mockReportRepo), memVariants{store}))
	file, err := svc.ExportInventory(context.Background(), "")
	require.NoError(t, err)

	rows := openWorkbook(t, file.Content, "Tồn kho")
	require.Len(t, rows, 3)
	assert.Equal(t, "Trạng thái", rows[0][10])
	assert.Equal(t, []string{"Chino", "CHI", "Pants", "30", "Khaki", "0", "2", "120", "250", "0", "Out of Stock"}, rows[1])
	assert.Equal(t, "1080", rows[2][9])
}

func TestExport_PropagatesQueryErrors(t *testing.T) {
	store := newMemStore()
	svc := NewExportService(NewTransactionQueryService(memLedger{store}), NewReportService(new(mockReportRepo), memVariants{store}))

	_, err := svc.ExportTransactions(context.Background(), TransactionQuery{Type: "bogus"})
	assert.Error(t, err)

	_, err = svc.ExportInventory(context.Background(), "bogus")
	assert.Error(t, err)
}
