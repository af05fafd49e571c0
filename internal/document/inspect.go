package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"propcheck/internal/domain"
)

// SniffLength is how many leading bytes DetectContentType needs.
const SniffLength = 3072

// DetectContentType returns declared unless it is empty or a generic binary type,
// in which case the type is sniffed from the leading bytes of the file.
func DetectContentType(header []byte, declared string) string {
	d := domain.NormalizeContentType(declared)
	switch d {
	case "", "application/octet-stream", "binary/octet-stream":
	default:
		return d
	}
	return domain.NormalizeContentType(mimetype.Detect(header).String())
}

// CountPDFPages returns the number of pages in a PDF.
func CountPDFPages(r io.ReaderAt, size int64) (n int, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("reading pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("reading pdf: %w", err)
	}
	return reader.NumPage(), nil
}

// CountPDFPagesBytes is CountPDFPages over an in-memory document.
func CountPDFPagesBytes(data []byte) (int, error) {
	return CountPDFPages(bytes.NewReader(data), int64(len(data)))
}
