package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"propcheck/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the title flow CSV header row.
var columns = []string{
	"Step",
	"Date",
	"Transaction Type",
	"From",
	"To",
	"Amount",
	"Document Number",
	"Details",
}

// Writer wraps csv.Writer for exporting a report's title flow as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteReport writes one row per ownership transaction, in report order.
func (w *Writer) WriteReport(r *domain.DueDiligenceReport) error {
	for i := range r.OwnershipHistory {
		if err := w.csv.Write(transactionToRow(i+1, &r.OwnershipHistory[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func transactionToRow(step int, t *domain.Transaction) []string {
	return []string{
		strconv.Itoa(step),
		t.Date,
		t.TransactionType,
		t.From,
		t.To,
		t.Amount,
		t.DocumentNumber,
		t.Details,
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized export filename for Content-Disposition.
// Format: {document_name_without_extension}_due_diligence_{YYYY-MM-DD}.{ext}
func BuildFilename(documentName, ext string, now time.Time) string {
	base := SanitizeFilename(strings.TrimSuffix(documentName, filepath.Ext(documentName)))
	if base == "" {
		base = "property"
	}
	return fmt.Sprintf("%s_due_diligence_%s.%s", base, now.Format("2006-01-02"), ext)
}
