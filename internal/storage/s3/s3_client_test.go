package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propcheck/internal/config"
	"propcheck/internal/domain"
	s3source "propcheck/internal/storage/s3"
)

var pdfBody = []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj <<>> endobj\n%%EOF")

func newFakeS3(t *testing.T, contentType string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/deeds/2024/deed.pdf":
			if contentType != "" {
				w.Header().Set("Content-Type", contentType)
			}
			w.Header().Set("Content-Length", strconv.Itoa(len(pdfBody)))
			_, _ = w.Write(pdfBody)
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newSource(t *testing.T, endpoint string) *s3source.Source {
	t.Helper()
	src, err := s3source.NewS3Source(&config.S3Config{
		Region:    "us-east-1",
		Bucket:    "deeds",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
		Enabled:   true,
	})
	require.NoError(t, err)
	return src
}

func TestSource_Open(t *testing.T) {
	server := newFakeS3(t, "application/pdf")
	src := newSource(t, server.URL)

	obj, err := src.Open(context.Background(), "deeds", "2024/deed.pdf")
	require.NoError(t, err)
	defer obj.Body.Close()

	assert.Equal(t, "deed.pdf", obj.Name)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, int64(len(pdfBody)), obj.Size)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, data)
}

func TestSource_Open_DefaultBucketAndSniffing(t *testing.T) {
	server := newFakeS3(t, "binary/octet-stream")
	src := newSource(t, server.URL)

	obj, err := src.Open(context.Background(), "", "2024/deed.pdf")
	require.NoError(t, err)
	defer obj.Body.Close()

	assert.Equal(t, "application/pdf", obj.ContentType)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, data)
}

func TestSource_Open_NotFound(t *testing.T) {
	server := newFakeS3(t, "application/pdf")
	src := newSource(t, server.URL)

	obj, err := src.Open(context.Background(), "deeds", "missing.pdf")

	assert.Nil(t, obj)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestSource_Open_MissingKey(t *testing.T) {
	src := newSource(t, "http://127.0.0.1:1")

	_, err := src.Open(context.Background(), "deeds", "")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
