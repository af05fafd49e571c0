// Package document turns user-selected files into payloads for the analyzer.
package document

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"propcheck/internal/domain"
)

// Encodable reports whether the encoder accepts mimeType: PDFs and any image type.
// Upload validation is stricter (see domain.AllowedContentTypes).
func Encodable(mimeType string) bool {
	mt := domain.NormalizeContentType(mimeType)
	return mt == "application/pdf" || strings.HasPrefix(mt, "image/")
}

// Encode reads r to the end and returns its content as standard base64 without any
// data-URI prefix. Unsupported MIME types are rejected before anything is read.
// No size limit is applied here.
func Encode(r io.Reader, mimeType string) (string, error) {
	if !Encodable(mimeType) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, mimeType)
	}
	if r == nil {
		return "", &domain.EncodingError{Err: fmt.Errorf("no file content")}
	}

	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := io.Copy(enc, r); err != nil {
		return "", &domain.EncodingError{Err: err}
	}
	if err := enc.Close(); err != nil {
		return "", &domain.EncodingError{Err: err}
	}
	return sb.String(), nil
}

// StripDataURIPrefix removes a leading "data:<mime>;base64," prefix if present.
func StripDataURIPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ParseDataURI decodes a base64 data URI as produced by FileReader.readAsDataURL.
func ParseDataURI(uri string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, &domain.EncodingError{Err: fmt.Errorf("not a data URI")}
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return "", nil, &domain.EncodingError{Err: fmt.Errorf("data URI has no payload")}
	}
	meta := uri[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, &domain.EncodingError{Err: fmt.Errorf("data URI is not base64 encoded")}
	}
	mimeType = domain.NormalizeContentType(strings.TrimSuffix(meta, ";base64"))

	data, err = base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return "", nil, &domain.EncodingError{Err: fmt.Errorf("decoding data URI: %w", err)}
	}
	return mimeType, data, nil
}
