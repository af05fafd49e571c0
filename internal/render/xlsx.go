package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"propcheck/internal/domain"
)

// Workbook sheet names.
const (
	SheetSummary      = "Summary"
	SheetTitleFlow    = "Title Flow"
	SheetEncumbrances = "Encumbrances"
	SheetClauses      = "Legal Clauses"
	SheetRiskFactors  = "Risk Factors"
)

// WriteXLSX writes r as a workbook with one sheet per report section.
func WriteXLSX(w io.Writer, r *domain.DueDiligenceReport, fileName string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	view := NewView(r)
	d := r.PropertyDetails
	summary := [][]interface{}{
		{"Field", "Value"},
		{"Source Document", fileName},
		{"Summary", r.ReportSummary},
		{"Risk Level", string(r.RiskAssessment.RiskLevel)},
		{"Risk Score", r.RiskAssessment.Score},
		{"Score Band", view.ScoreBand},
		{"Encumbrances", view.EncumbranceBadge},
		{"Current Owner", r.CurrentOwner},
		{"Address", d.Address},
		{"Survey Number", d.SurveyNumber},
		{"Total Area", d.TotalArea},
		{"Property Type", d.PropertyType},
		{"Zone Type", d.ZoneType},
		{"Last Transaction Value", r.Financials.LastTransactionValue},
		{"Tax Status", r.Financials.TaxStatus},
		{"Financial Summary", r.Financials.Summary},
	}
	for _, rec := range r.RiskAssessment.Recommendations {
		summary = append(summary, []interface{}{"Recommendation", rec})
	}
	if err := writeSheet(f, SheetSummary, summary, headerStyle); err != nil {
		return err
	}

	titleFlow := [][]interface{}{{"Date", "Transaction Type", "From", "To", "Amount", "Document Number", "Details"}}
	for _, t := range r.OwnershipHistory {
		titleFlow = append(titleFlow, []interface{}{t.Date, t.TransactionType, t.From, t.To, t.Amount, t.DocumentNumber, t.Details})
	}
	if err := addSheet(f, SheetTitleFlow, titleFlow, headerStyle); err != nil {
		return err
	}

	encumbrances := [][]interface{}{{"Encumbrance"}}
	for _, e := range r.Encumbrances {
		encumbrances = append(encumbrances, []interface{}{e})
	}
	if err := addSheet(f, SheetEncumbrances, encumbrances, headerStyle); err != nil {
		return err
	}

	clauses := [][]interface{}{{"Clause", "Significance", "Explanation"}}
	for _, c := range r.LegalClauses {
		clauses = append(clauses, []interface{}{c.Clause, string(c.Significance), c.Explanation})
	}
	if err := addSheet(f, SheetClauses, clauses, headerStyle); err != nil {
		return err
	}

	factors := [][]interface{}{{"Category", "Risk", "Severity", "Explanation"}}
	for _, rf := range r.RiskAssessment.Factors {
		factors = append(factors, []interface{}{rf.Category, rf.Risk, string(rf.Severity), rf.Explanation})
	}
	if err := addSheet(f, SheetRiskFactors, factors, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %q: %w", name, err)
	}
	return writeSheet(f, name, rows, headerStyle)
}

func writeSheet(f *excelize.File, name string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", name, i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", name, err)
	}
	if err := f.SetColWidth(name, "A", lastCol, 24); err != nil {
		return fmt.Errorf("sizing %s columns: %w", name, err)
	}
	return nil
}
