// Package export renders order lists as spreadsheets.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"order-desk/internal/core"
)

// ContentType is the MIME type of the workbooks produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Orders"

var orderHeaders = []string{
	"Order No.", "Status", "Customer", "Sales Rep", "Machine Model", "Currency",
	"Total", "Deposit", "Outstanding", "Warehouse", "Est. Delivery", "Created", "Warnings",
}

var orderColWidths = []float64{14, 24, 24, 18, 18, 9, 14, 14, 14, 10, 14, 18, 30}

// OrdersWorkbook builds a single-sheet workbook listing orders with a totals row.
// The caller closes the returned file.
func OrdersWorkbook(orders []core.SalesOrder) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	w := &sheetWriter{f: f}
	for i, h := range orderHeaders {
		cell := w.cell(i+1, 1)
		w.value(cell, h)
		w.style(cell, cell, headerStyle)
	}

	var total, deposit, outstanding decimal.Decimal
	for i, o := range orders {
		row := i + 2
		values := []any{
			o.OrderNumber,
			o.Status.Label(),
			partyName(o.Customer),
			partyName(o.SalesRep),
			o.MachineModel,
			o.Currency,
			o.TotalAmount.InexactFloat64(),
			o.DepositAmount.InexactFloat64(),
			o.OutstandingBalance().InexactFloat64(),
			optionalInt(o.WarehouseID),
			optionalDate(o.EstimatedDelivery),
			o.CreatedAt.Format("2006-01-02 15:04"),
			strings.Join(o.InventoryWarnings, "; "),
		}
		for col, v := range values {
			w.value(w.cell(col+1, row), v)
		}
		total = total.Add(o.TotalAmount)
		deposit = deposit.Add(o.DepositAmount)
		outstanding = outstanding.Add(o.OutstandingBalance())
	}

	summaryRow := len(orders) + 2
	summaryStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("summary style: %w", err)
	}
	w.value(fmt.Sprintf("A%d", summaryRow), "Total")
	w.value(fmt.Sprintf("C%d", summaryRow), fmt.Sprintf("%d orders", len(orders)))
	w.value(fmt.Sprintf("G%d", summaryRow), total.InexactFloat64())
	w.value(fmt.Sprintf("H%d", summaryRow), deposit.InexactFloat64())
	w.value(fmt.Sprintf("I%d", summaryRow), outstanding.InexactFloat64())
	w.style(fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("M%d", summaryRow), summaryStyle)

	for i, width := range orderColWidths {
		w.colWidth(i+1, width)
	}
	if w.err == nil {
		if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			w.err = fmt.Errorf("freeze header: %w", err)
		}
	}

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// sheetWriter writes to the orders sheet and keeps the first error.
// Once an error is held every further call is a no-op.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) cell(col, row int) string {
	if w.err != nil {
		return ""
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = fmt.Errorf("cell %d,%d: %w", col, row, err)
	}
	return name
}

func (w *sheetWriter) value(cell string, v any) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellValue(sheetName, cell, v); err != nil {
		w.err = fmt.Errorf("set %s: %w", cell, err)
	}
}

func (w *sheetWriter) style(from, to string, styleID int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellStyle(sheetName, from, to, styleID); err != nil {
		w.err = fmt.Errorf("style %s:%s: %w", from, to, err)
	}
}

func (w *sheetWriter) colWidth(col int, width float64) {
	if w.err != nil {
		return
	}
	name, err := excelize.ColumnNumberToName(col)
	if err == nil {
		err = w.f.SetColWidth(sheetName, name, name, width)
	}
	if err != nil {
		w.err = fmt.Errorf("column %d width: %w", col, err)
	}
}

// Filename names an export taken at t, optionally scoped to a status.
func Filename(status core.OrderStatus, t time.Time) string {
	if status == "" {
		return fmt.Sprintf("orders_%s.xlsx", t.Format("20060102_150405"))
	}
	return fmt.Sprintf("orders_%s_%s.xlsx", status, t.Format("20060102_150405"))
}

func partyName(p *core.PartyRef) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func optionalInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

