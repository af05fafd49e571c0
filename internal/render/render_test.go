package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"propcheck/internal/domain"
	"propcheck/internal/render"
	"propcheck/internal/testutil"
)

func TestNewView_HighRisk(t *testing.T) {
	view := render.NewView(testutil.Report())

	assert.Equal(t, domain.LevelHigh, view.RiskLevel)
	assert.True(t, view.IsHighRisk)
	assert.Equal(t, 85, view.Score)
	assert.Equal(t, "85/100", view.ScoreLabel)
	assert.Equal(t, render.BandHigh, view.ScoreBand)
	assert.Equal(t, render.BadgeDetected, view.EncumbranceBadge)
	assert.Equal(t, 1, view.EncumbranceCount)
	assert.True(t, view.TaxStatusPaid)
	require.Len(t, view.HighSignificanceClauses, 1)
	assert.Equal(t, "Indemnity", view.HighSignificanceClauses[0].Clause)
	assert.Equal(t, 2, view.TransactionCount)
}

func TestNewView_Clean(t *testing.T) {
	view := render.NewView(testutil.CleanReport())

	assert.False(t, view.IsHighRisk)
	assert.Equal(t, render.BadgeClean, view.EncumbranceBadge)
	assert.Equal(t, render.BandLow, view.ScoreBand)
	assert.NotNil(t, view.HighSignificanceClauses)
	assert.Empty(t, view.HighSignificanceClauses)
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, render.BandLow},
		{29, render.BandLow},
		{30, render.BandMedium},
		{69, render.BandMedium},
		{70, render.BandHigh},
		{100, render.BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, render.ScoreBand(tt.score), tt.score)
	}
}

func TestTaxStatusPaid(t *testing.T) {
	assert.True(t, render.TaxStatusPaid("Paid"))
	assert.True(t, render.TaxStatusPaid("Tax paid up to 2023-24"))
	assert.False(t, render.TaxStatusPaid("Unpaid"))
	assert.False(t, render.TaxStatusPaid("Not paid since 2019"))
	assert.False(t, render.TaxStatusPaid("Pending"))
	assert.False(t, render.TaxStatusPaid(""))
}

func TestMarkdownWriter_HighRiskReport(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

	err := render.NewMarkdownWriter(&buf).Write(testutil.Report(), "deed.pdf", generated)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "# Property Due Diligence Report")
	assert.Contains(t, out, "Generated on March 5, 2024")
	assert.Contains(t, out, "`deed.pdf`")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "85/100")
	assert.Contains(t, out, "[!CAUTION]")
	assert.Contains(t, out, "## Encumbrances: Detected")
	assert.Contains(t, out, "Mortgage in favour of State Bank of India, 2016")
	assert.Contains(t, out, "JAY-2004-1182")
	assert.Contains(t, out, "Obtain a loan closure letter")
	assert.Contains(t, out, "Zone Type")
}

func TestMarkdownWriter_CleanReport(t *testing.T) {
	var buf bytes.Buffer

	err := render.NewMarkdownWriter(&buf).Write(testutil.CleanReport(), "", time.Now())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "## Encumbrances: Clean")
	assert.Contains(t, out, "No active encumbrances found.")
	assert.Contains(t, out, "No notable clauses identified.")
	assert.Contains(t, out, "12/100")
	assert.NotContains(t, out, "Zone Type")
	assert.NotContains(t, out, "Source document")
}

func TestMarkdownWriter_EscapesTableCells(t *testing.T) {
	r := testutil.Report()
	r.OwnershipHistory[0].From = "A | B"
	var buf bytes.Buffer

	require.NoError(t, render.NewMarkdownWriter(&buf).Write(r, "deed.pdf", time.Now()))

	assert.Contains(t, buf.String(), `A \| B`)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, render.WriteXLSX(&buf, testutil.Report(), "deed.pdf"))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{
		render.SheetSummary, render.SheetTitleFlow, render.SheetEncumbrances,
		render.SheetClauses, render.SheetRiskFactors,
	}, f.GetSheetList())

	score, err := f.GetCellValue(render.SheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "85", score)

	rows, err := f.GetRows(render.SheetTitleFlow)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "K. Murthy", rows[1][2])
	assert.Equal(t, "Anita Rao", rows[2][3])

	factors, err := f.GetRows(render.SheetRiskFactors)
	require.NoError(t, err)
	require.Len(t, factors, 3)
	assert.Equal(t, "HIGH", factors[1][2])
}

func TestWriteXLSX_EmptySections(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, render.WriteXLSX(&buf, testutil.CleanReport(), "flat.png"))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(render.SheetEncumbrances)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
