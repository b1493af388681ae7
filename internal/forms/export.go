package forms

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/meridian-erp/meridian/internal/docform"
)

// ExportXLSX renders the current draft as a workbook for offline review.
// Caller must hold the session lock.
func ExportXLSX(sess *Session) ([]byte, error) {
	form := sess.Form
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Draft"
	f.SetSheetName("Sheet1", sheet)

	header := form.Header()
	dt := form.DocType()

	rows := [][]any{
		{dt.Label, ""},
		{"Document Number", header.DocumentNumber},
		{"Counterparty", header.CounterpartyCode + " " + header.CounterpartyName},
		{"Reference", header.CounterpartyRef},
	}
	if header.DocumentDate != nil {
		rows = append(rows, []any{dt.PrimaryDateLabel, header.DocumentDate.Format("2006-01-02")})
	}
	if header.DueDate != nil {
		rows = append(rows, []any{dt.SecondaryDateLabel, header.DueDate.Format("2006-01-02")})
	}
	if header.BasedOnDocumentNumber != "" {
		rows = append(rows, []any{"Based On", header.BasedOnDocumentNumber})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("forms: export header row: %w", err)
		}
	}

	tableStart := len(rows) + 2
	head := []any{"Product", "Name", "UOM", "Warehouse", "Quantity", "Unit Price", "Tax Code", "Tax %", "Tax Amount", "Line Total"}
	cell, _ := excelize.CoordinatesToCellName(1, tableStart)
	if err := f.SetSheetRow(sheet, cell, &head); err != nil {
		return nil, fmt.Errorf("forms: export table head: %w", err)
	}
	for i, line := range form.Lines() {
		row := []any{
			line.ProductCode, line.ProductName, line.UOM, line.WarehouseCode,
			line.Quantity, line.UnitPrice, line.TaxCode, line.TaxRatePercent,
			line.TaxAmount, line.LineTotal,
		}
		cell, _ := excelize.CoordinatesToCellName(1, tableStart+1+i)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("forms: export line row: %w", err)
		}
	}

	totals := form.Totals()
	totalsStart := tableStart + len(form.Lines()) + 2
	for i, pair := range [][]any{
		{"Product Subtotal", docform.FormatAmount(totals.ProductSubtotal)},
		{"Tax Total", docform.FormatAmount(totals.TaxTotal)},
		{"Grand Total", docform.FormatAmount(totals.GrandTotal)},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, totalsStart+i)
		row := pair
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("forms: export totals: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("forms: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
