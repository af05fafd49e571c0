package document_test

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propcheck/internal/document"
	"propcheck/internal/domain"
)

type failingReader struct {
	reads int
}

func (f *failingReader) Read(p []byte) (int, error) {
	f.reads++
	return 0, errors.New("disk on fire")
}

func TestEncode_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"application/pdf": []byte("%PDF-1.4 minimal"),
		"image/png":       {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
		"image/jpeg":      {0xFF, 0xD8, 0xFF, 0xE0, 0x00},
		"image/webp":      []byte("RIFF....WEBP"),
		"application/PDF": {},
	}
	random := make([]byte, 100_003)
	_, err := rand.Read(random)
	require.NoError(t, err)
	inputs["image/tiff"] = random

	for mimeType, data := range inputs {
		encoded, err := document.Encode(bytes.NewReader(data), mimeType)
		require.NoError(t, err, mimeType)

		assert.False(t, strings.HasPrefix(encoded, "data:"))
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Equal(t, data, decoded, mimeType)
	}
}

func TestEncode_RejectsBeforeReading(t *testing.T) {
	for _, mimeType := range []string{"text/plain", "application/zip", "", "video/mp4"} {
		r := &failingReader{}

		encoded, err := document.Encode(r, mimeType)

		assert.Empty(t, encoded)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
		assert.True(t, domain.IsValidation(err))
		assert.Zero(t, r.reads)
	}
}

func TestEncode_ReadFailure(t *testing.T) {
	encoded, err := document.Encode(&failingReader{}, "application/pdf")

	assert.Empty(t, encoded)
	var encErr *domain.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.False(t, domain.IsValidation(err))
}

func TestStripDataURIPrefix(t *testing.T) {
	assert.Equal(t, "QUJD", document.StripDataURIPrefix("data:application/pdf;base64,QUJD"))
	assert.Equal(t, "QUJD", document.StripDataURIPrefix("QUJD"))
}

func TestParseDataURI(t *testing.T) {
	mimeType, data, err := document.ParseDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes")))

	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestParseDataURI_Invalid(t *testing.T) {
	for _, uri := range []string{
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:text/plain,hello",
		"data:image/png;base64,!!!",
	} {
		_, _, err := document.ParseDataURI(uri)

		var encErr *domain.EncodingError
		assert.ErrorAs(t, err, &encErr, uri)
	}
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", document.DetectContentType(nil, "image/PNG; charset=binary"))
	assert.Equal(t, "application/pdf", document.DetectContentType([]byte("%PDF-1.7\n%âãÏÓ\n"), ""))
	assert.Equal(t, "image/png", document.DetectContentType([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "application/octet-stream"))
}

func TestCountPDFPages_NotAPDF(t *testing.T) {
	_, err := document.CountPDFPagesBytes([]byte("definitely not a pdf"))

	assert.Error(t, err)
}
