// Package render turns a due-diligence report into presentation-ready forms:
// a client view model, a printable Markdown document and an XLSX workbook.
package render

import (
	"strconv"
	"strings"

	"propcheck/internal/domain"
)

// Encumbrance badge labels.
const (
	BadgeClean    = "Clean"
	BadgeDetected = "Detected"
)

// Score bands used to colour the risk meter.
const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
)

// View carries the derived facts a client needs to display a report.
type View struct {
	RiskLevel               domain.Level         `json:"risk_level"`
	Score                   int                  `json:"score"`
	ScoreLabel              string               `json:"score_label"`
	ScoreBand               string               `json:"score_band"`
	IsHighRisk              bool                 `json:"is_high_risk"`
	EncumbranceBadge        string               `json:"encumbrance_badge"`
	EncumbranceCount        int                  `json:"encumbrance_count"`
	TaxStatusPaid           bool                 `json:"tax_status_paid"`
	HighSignificanceClauses []domain.LegalClause `json:"high_significance_clauses"`
	TransactionCount        int                  `json:"transaction_count"`
}

// NewView derives the display view of r.
func NewView(r *domain.DueDiligenceReport) View {
	v := View{
		RiskLevel:               r.RiskAssessment.RiskLevel,
		Score:                   r.RiskAssessment.Score,
		ScoreLabel:              ScoreLabel(r.RiskAssessment.Score),
		ScoreBand:               ScoreBand(r.RiskAssessment.Score),
		IsHighRisk:              r.RiskAssessment.RiskLevel == domain.LevelHigh,
		EncumbranceBadge:        EncumbranceBadge(r),
		EncumbranceCount:        len(r.Encumbrances),
		TaxStatusPaid:           TaxStatusPaid(r.Financials.TaxStatus),
		HighSignificanceClauses: []domain.LegalClause{},
		TransactionCount:        len(r.OwnershipHistory),
	}
	for _, c := range r.LegalClauses {
		if c.Significance == domain.LevelHigh {
			v.HighSignificanceClauses = append(v.HighSignificanceClauses, c)
		}
	}
	return v
}

// ScoreLabel formats a score as shown on the risk meter, e.g. "85/100".
func ScoreLabel(score int) string {
	return strconv.Itoa(score) + "/100"
}

// ScoreBand buckets a score: below 30 is low, below 70 medium, otherwise high.
func ScoreBand(score int) string {
	switch {
	case score < 30:
		return BandLow
	case score < 70:
		return BandMedium
	default:
		return BandHigh
	}
}

func EncumbranceBadge(r *domain.DueDiligenceReport) string {
	if r.HasEncumbrances() {
		return BadgeDetected
	}
	return BadgeClean
}

// TaxStatusPaid reports whether the tax status text says the tax is paid.
func TaxStatusPaid(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "paid") && !strings.Contains(s, "unpaid") && !strings.Contains(s, "not paid")
}
