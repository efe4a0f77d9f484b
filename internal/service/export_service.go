package service

import (
	"context"
	"fmt"
	"time"

	"clothingstore/internal/model"

	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportFile is a rendered workbook ready to be sent as an attachment.
type ExportFile struct {
	Filename string
	Content  []byte
}

type ExportService interface {
	ExportTransactions(ctx context.Context, q TransactionQuery) (*ExportFile, error)
	ExportInventory(ctx context.Context, categoryID string) (*ExportFile, error)
}

type exportService struct {
	transactions TransactionQueryService
	reports      ReportService
	now          func() time.Time
}

func NewExportService(transactions TransactionQueryService, reports ReportService) ExportService {
	return &exportService{transactions: transactions, reports: reports, now: time.Now}
}

type sheetColumn struct {
	header string
	width  float64
}

var txTypeLabels = map[string]string{
	model.TxTypeIn:         "Nhập kho",
	model.TxTypeOut:        "Xuất kho",
	model.TxTypeAdjustment: "Điều chỉnh",
}

func (s *exportService) ExportTransactions(ctx context.Context, q TransactionQuery) (*ExportFile, error) {
	views, err := s.transactions.ListAll(ctx, q)
	if err != nil {
		return nil, err
	}

	columns := []sheetColumn{
		{"Ngày giờ", 20}, {"Loại giao dịch", 15}, {"Tên sản phẩm", 25}, {"SKU", 15},
		{"Danh mục", 15}, {"Kích cỡ", 10}, {"Màu sắc", 12}, {"Số lượng", 12},
		{"Lý do", 20}, {"Người thực hiện", 18}, {"Nhà cung cấp", 18}, {"Mã đơn hàng", 38},
	}
	rows := make([][]interface{}, 0, len(views))
	for _, v := range views {
		label, ok := txTypeLabels[v.Type]
		if !ok {
			label = v.Type
		}
		user, supplier, order := "", "", ""
		if v.UserName != nil {
			user = *v.UserName
		}
		if v.Supplier != nil {
			supplier = *v.Supplier
		}
		if v.OrderID != nil {
			order = v.OrderID.String()
		}
		rows = append(rows, []interface{}{
			v.CreatedAt.In(time.Local).Format("2006-01-02 15:04:05"), label, v.ProductName, v.SKU,
			v.CategoryName, v.Size, v.Color, signedQuantity(v.Type, v.Quantity),
			v.Reason, user, supplier, order,
		})
	}

	content, err := renderSheet("Giao dịch kho", columns, rows)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: s.filename("Bao_cao_giao_dich_kho"), Content: content}, nil
}

func (s *exportService) ExportInventory(ctx context.Context, categoryID string) (*ExportFile, error) {
	report, err := s.reports.Inventory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	columns := []sheetColumn{
		{"Tên sản phẩm", 25}, {"SKU", 15}, {"Danh mục", 15}, {"Kích cỡ", 10}, {"Màu sắc", 12},
		{"Tồn kho", 10}, {"Tồn kho tối thiểu", 15}, {"Giá nhập (VNĐ)", 15}, {"Giá bán (VNĐ)", 15},
		{"Giá trị tồn kho (VNĐ)", 18}, {"Trạng thái", 15},
	}
	rows := make([][]interface{}, 0, len(report.Variants))
	for _, v := range report.Variants {
		rows = append(rows, []interface{}{
			v.ProductName, v.SKU, v.CategoryName, v.Size, v.Color,
			v.Stock, v.MinStock, v.PurchasePrice.InexactFloat64(), v.SalePrice.InexactFloat64(),
			v.StockValue.InexactFloat64(), v.Status,
		})
	}

	content, err := renderSheet("Tồn kho", columns, rows)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: s.filename("Bao_cao_ton_kho"), Content: content}, nil
}

func (s *exportService) filename(prefix string) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, s.now().Format("20060102_150405"))
}

// signedQuantity shows outgoing movements as negative numbers in the sheet.
func signedQuantity(txType string, qty int) int {
	if txType == model.TxTypeOut {
		return -qty
	}
	return qty
}

func renderSheet(sheet string, columns []sheetColumn, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, col.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
		if err := f.SetCellValue(sheet, name+"1", col.header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
