package port

import (
	"context"
	"io"
)

// SourceObject is a document opened from a DocumentSource. The caller closes Body.
type SourceObject struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// DocumentSource abstracts read-only access to documents kept outside the request,
// such as objects in a storage bucket.
type DocumentSource interface {
	Open(ctx context.Context, bucket, key string) (*SourceObject, error)
}
