package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propcheck/internal/testutil"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 8)
	assert.Equal(t, "Step", row[0])
	assert.Equal(t, "Details", row[7])
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteReport(testutil.Report()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"1", "12-03-2004", "Sale Deed", "K. Murthy", "S. Iyer", "Rs. 8,00,000", "JAY-2004-1182", ""}, rows[1])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "Anita Rao", rows[2][4])
	assert.Equal(t, "Registered at Jayanagar SRO", rows[2][7])
}

func TestWriteReport_AmountWithCommasIsQuoted(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReport(testutil.Report()))
	w.Flush()

	assert.Contains(t, buf.String(), `"Rs. 8,00,000"`)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Sale Deed 2016", "Sale_Deed_2016"},
		{"EC/Form-15 (copy)", "EC_Form-15_copy"},
		{"___leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeFilename(tt.input), tt.input)
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "deed_due_diligence_2024-03-05.md", BuildFilename("deed.pdf", "md", now))
	assert.Equal(t, "Tax_Receipt_due_diligence_2024-03-05.xlsx", BuildFilename("Tax Receipt.png", "xlsx", now))
	assert.Equal(t, "property_due_diligence_2024-03-05.csv", BuildFilename("", "csv", now))
}
