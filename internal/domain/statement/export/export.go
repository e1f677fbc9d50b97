// Package export renders parsed statements as CSV (gocsv) and XLSX
// (excelize) downloads.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/normalizer"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "", json, csv and xlsx. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json; charset=utf-8"
}

// Row is the flat form of one record. Absent optional fields are empty.
type Row struct {
	Date         string `csv:"date"`
	Time         string `csv:"time"`
	Amount       string `csv:"amount"`
	Direction    string `csv:"direction"`
	Counterparty string `csv:"counterparty"`
	Purpose      string `csv:"purpose"`
	Balance      string `csv:"balance"`
	DedupeKey    string `csv:"dedupe_key"`
}

// Rows flattens records.
func Rows(records []statement.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Date:         r.Date.String(),
			Time:         r.Time,
			Amount:       normalizer.FormatAmount(r.Amount),
			Direction:    string(r.Direction),
			Counterparty: r.Counterparty,
			Purpose:      r.Purpose,
			DedupeKey:    r.DedupeKey,
		}
		if r.Balance.Valid {
			rows[i].Balance = normalizer.FormatAmount(r.Balance.Decimal)
		}
	}
	return rows
}

// WriteCSV writes a header line and one line per record.
func WriteCSV(w io.Writer, records []statement.Record) error {
	if err := gocsv.Marshal(Rows(records), w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
	// Built-in number format "#,##0.00".
	moneyNumFmt = 4
)

var xlsxHeader = []any{"Date", "Time", "Amount", "Direction", "Counterparty", "Purpose", "Balance", "Dedupe key"}

// WriteXLSX writes a workbook with a transactions sheet and a summary sheet.
// Amounts and balances are numeric cells.
func WriteXLSX(w io.Writer, records []statement.Record, summary statement.Summary) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(transactionsSheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range records {
		row := []any{
			r.Date.String(),
			r.Time,
			r.Amount.InexactFloat64(),
			string(r.Direction),
			r.Counterparty,
			r.Purpose,
			nil,
			r.DedupeKey,
		}
		if r.Balance.Valid {
			row[6] = r.Balance.Decimal.InexactFloat64()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColStyle(transactionsSheet, "C", moneyStyle); err != nil {
		return err
	}
	if err := f.SetColStyle(transactionsSheet, "G", moneyStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(transactionsSheet, "E", "F", 40); err != nil {
		return err
	}
	if err := f.SetPanes(transactionsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summaryRows := [][]any{
		{"Income", summary.Income.ToDecimal().InexactFloat64(), summary.IncomeCount},
		{"Expense", summary.Expense.ToDecimal().InexactFloat64(), summary.ExpenseCount},
		{"Net", summary.Net.ToDecimal().InexactFloat64(), nil},
		{"Unknown", nil, summary.UnknownCount},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := f.SetColStyle(summarySheet, "B", moneyStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
