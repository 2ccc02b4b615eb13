// Package export renders report results as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an .xlsx workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// Workbook is an in-memory spreadsheet ready to be written out
type Workbook struct {
	file   *excelize.File
	header int
}

// sheet writes rows top to bottom on one worksheet
type sheet struct {
	wb   *Workbook
	name string
	row  int
}

func newWorkbook(first string) (*Workbook, *sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	wb := &Workbook{file: f, header: style}
	return wb, &sheet{wb: wb, name: first, row: 1}, nil
}

func (wb *Workbook) addSheet(name string) (*sheet, error) {
	if _, err := wb.file.NewSheet(name); err != nil {
		return nil, err
	}
	return &sheet{wb: wb, name: name, row: 1}, nil
}

// headings writes a bold header row and freezes it
func (s *sheet) headings(titles ...string) error {
	if err := s.append(toRow(titles)); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), s.row-1)
	if err != nil {
		return err
	}
	if err := s.wb.file.SetCellStyle(s.name, "A1", last, s.wb.header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(titles))
	if err != nil {
		return err
	}
	if err := s.wb.file.SetColWidth(s.name, "A", lastCol, 18); err != nil {
		return err
	}
	return s.wb.file.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (s *sheet) append(values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.wb.file.SetSheetRow(s.name, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", s.name, s.row, err)
	}
	s.row++
	return nil
}

// Rows returns the cell values of a worksheet, header included
func (wb *Workbook) Rows(sheetName string) ([][]string, error) {
	return wb.file.GetRows(sheetName)
}

// SheetNames lists the worksheets in order
func (wb *Workbook) SheetNames() []string {
	return wb.file.GetSheetList()
}

// WriteTo streams the workbook as .xlsx
func (wb *Workbook) WriteTo(w io.Writer) (int64, error) {
	return wb.file.WriteTo(w)
}

// Close releases the workbook's temporary resources
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

func toRow(titles []string) []any {
	row := make([]any, len(titles))
	for i, t := range titles {
		row[i] = t
	}
	return row
}

// StockLevels renders the stock level report
func StockLevels(levels []report.StockLevel) (*Workbook, error) {
	wb, s, err := newWorkbook("Stock Levels")
	if err != nil {
		return nil, err
	}
	if err := s.headings("SKU", "Name", "Category", "Current Stock", "Reorder Level", "Status"); err != nil {
		_ = wb.Close()
		return nil, err
	}
	for _, l := range levels {
		if err := s.append([]any{l.SKU, l.Name, l.Category, l.CurrentStock, l.ReorderLevel, string(l.Status)}); err != nil {
			_ = wb.Close()
			return nil, err
		}
	}
	return wb, nil
}

// Expiry renders the expiry report
func Expiry(entries []report.ExpiryEntry) (*Workbook, error) {
	wb, s, err := newWorkbook("Expiry")
	if err != nil {
		return nil, err
	}
	if err := s.headings("SKU", "Product", "Category", "Batch", "Expiry Date", "Days To Expiry", "Quantity", "Status", "Source"); err != nil {
		_ = wb.Close()
		return nil, err
	}
	for _, e := range entries {
		row := []any{
			e.SKU, e.ProductName, e.Category, e.BatchNumber,
			e.ExpiryDate.Format(dateLayout), e.DaysToExpiry, e.Quantity,
			string(e.Status), string(e.Source),
		}
		if err := s.append(row); err != nil {
			_ = wb.Close()
			return nil, err
		}
	}
	return wb, nil
}

// Valuation renders the valuation report with one sheet of products and
// one of category totals. The grand total is the last category row.
func Valuation(v *report.InventoryValuation) (*Workbook, error) {
	wb, products, err := newWorkbook("Products")
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Workbook, error) {
		_ = wb.Close()
		return nil, err
	}

	if err := products.headings("SKU", "Name", "Category", "Current Stock", "Cost Value", "Retail Value", "Potential Profit", "Margin %"); err != nil {
		return fail(err)
	}
	for _, l := range v.Products {
		row := []any{
			l.SKU, l.Name, l.Category, l.CurrentStock,
			l.CostValue.InexactFloat64(), l.RetailValue.InexactFloat64(),
			l.PotentialProfit.InexactFloat64(), l.ProfitMargin.InexactFloat64(),
		}
		if err := products.append(row); err != nil {
			return fail(err)
		}
	}

	categories, err := wb.addSheet("Categories")
	if err != nil {
		return fail(err)
	}
	if err := categories.headings("Category", "Products", "Total Stock", "Cost Value", "Retail Value", "Potential Profit", "Margin %"); err != nil {
		return fail(err)
	}
	totals := append(append([]report.ValuationTotals{}, v.Categories...), v.Totals)
	totals[len(totals)-1].Category = "TOTAL"
	for _, c := range totals {
		row := []any{
			c.Category, c.ProductCount, c.TotalStock,
			c.CostValue.InexactFloat64(), c.RetailValue.InexactFloat64(),
			c.PotentialProfit.InexactFloat64(), c.ProfitMargin.InexactFloat64(),
		}
		if err := categories.append(row); err != nil {
			return fail(err)
		}
	}
	return wb, nil
}
