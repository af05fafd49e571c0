package render

import (
	"io"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"propcheck/internal/domain"
)

// MarkdownWriter outputs reports as printable Markdown.
type MarkdownWriter struct {
	output io.Writer
}

func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders r. fileName and generatedAt go into the report header.
func (w *MarkdownWriter) Write(r *domain.DueDiligenceReport, fileName string, generatedAt time.Time) error {
	md := markdown.NewMarkdown(w.output)
	view := NewView(r)

	w.writeHeader(md, r, fileName, generatedAt)
	w.writeRisk(md, r, view)
	w.writeProperty(md, r)
	w.writeTitleFlow(md, r)
	w.writeEncumbrances(md, r, view)
	w.writeFinancials(md, r, view)
	w.writeClauses(md, r)
	w.writeFooter(md)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *domain.DueDiligenceReport, fileName string, generatedAt time.Time) {
	md.H1("Property Due Diligence Report")
	md.PlainText("")
	md.PlainTextf("Generated on %s", generatedAt.Format("January 2, 2006"))
	if fileName != "" {
		md.PlainText("")
		md.PlainTextf("Source document: `%s`", fileName)
	}
	md.PlainText("")

	md.H2("Executive Summary")
	md.PlainText("")
	md.PlainText(r.ReportSummary)
	md.PlainText("")
}

func (w *MarkdownWriter) writeRisk(md *markdown.Markdown, r *domain.DueDiligenceReport, view View) {
	md.H2("Risk Assessment")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Risk Level", "Score", "Band"},
		Rows: [][]string{
			{string(view.RiskLevel), view.ScoreLabel, view.ScoreBand},
		},
	})
	md.PlainText("")

	switch view.RiskLevel {
	case domain.LevelHigh:
		md.Cautionf("High risk. %d risk factor(s) identified; review before proceeding.", len(r.RiskAssessment.Factors))
	case domain.LevelMedium:
		md.Warningf("Medium risk. %d risk factor(s) identified.", len(r.RiskAssessment.Factors))
	default:
		md.Tip("Low risk. No significant issues identified.")
	}
	md.PlainText("")

	if len(r.RiskAssessment.Factors) > 0 {
		md.H3("Risk Factors")
		md.PlainText("")
		rows := make([][]string, len(r.RiskAssessment.Factors))
		for i, f := range r.RiskAssessment.Factors {
			rows[i] = []string{cell(f.Category), cell(f.Risk), string(f.Severity), cell(f.Explanation)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Risk", "Severity", "Explanation"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(r.RiskAssessment.Recommendations) > 0 {
		md.H3("Recommendations")
		md.PlainText("")
		md.BulletList(r.RiskAssessment.Recommendations...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeProperty(md *markdown.Markdown, r *domain.DueDiligenceReport) {
	md.H2("Property Details")
	md.PlainText("")

	d := r.PropertyDetails
	rows := [][]string{
		{"Address", cell(d.Address)},
		{"Survey Number", cell(d.SurveyNumber)},
		{"Total Area", cell(d.TotalArea)},
		{"Property Type", cell(d.PropertyType)},
	}
	if d.ZoneType != "" {
		rows = append(rows, []string{"Zone Type", cell(d.ZoneType)})
	}
	rows = append(rows, []string{"Current Owner", cell(r.CurrentOwner)})

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTitleFlow(md *markdown.Markdown, r *domain.DueDiligenceReport) {
	md.H2("Title Flow")
	md.PlainText("")

	if len(r.OwnershipHistory) == 0 {
		md.PlainText("No transactions recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(r.OwnershipHistory))
	for i, t := range r.OwnershipHistory {
		rows[i] = []string{
			cell(t.Date),
			cell(t.TransactionType),
			cell(t.From),
			cell(t.To),
			cell(t.Amount),
			cell(t.DocumentNumber),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Date", "Transaction", "From", "To", "Amount", "Document No."},
		Rows:   rows,
	})
	md.PlainText("")

	for _, t := range r.OwnershipHistory {
		if t.Details != "" {
			md.Details(t.Date+" "+t.TransactionType, t.Details)
		}
	}
}

func (w *MarkdownWriter) writeEncumbrances(md *markdown.Markdown, r *domain.DueDiligenceReport, view View) {
	md.H2("Encumbrances: " + view.EncumbranceBadge)
	md.PlainText("")

	if !r.HasEncumbrances() {
		md.PlainText("No active encumbrances found.")
		md.PlainText("")
		return
	}
	md.Warningf("%d active liability(ies) registered against the property.", len(r.Encumbrances))
	md.PlainText("")
	md.BulletList(r.Encumbrances...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFinancials(md *markdown.Markdown, r *domain.DueDiligenceReport, view View) {
	md.H2("Financials")
	md.PlainText("")

	tax := cell(r.Financials.TaxStatus)
	if view.TaxStatusPaid {
		tax += " ✅"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Last Transaction Value", cell(r.Financials.LastTransactionValue)},
			{"Tax Status", tax},
		},
	})
	md.PlainText("")
	md.PlainText(r.Financials.Summary)
	md.PlainText("")
}

func (w *MarkdownWriter) writeClauses(md *markdown.Markdown, r *domain.DueDiligenceReport) {
	md.H2("Legal Clauses")
	md.PlainText("")

	if len(r.LegalClauses) == 0 {
		md.PlainText("No notable clauses identified.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(r.LegalClauses))
	for i, c := range r.LegalClauses {
		rows[i] = []string{cell(c.Clause), string(c.Significance), cell(c.Explanation)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Clause", "Significance", "Explanation"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*This report is generated automatically and is not legal advice. Verify with the registering authority.*")
}

var cellReplacer = strings.NewReplacer("|", "\\|", "\r\n", " ", "\n", " ")

// cell escapes text for use inside a table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return cellReplacer.Replace(s)
}
