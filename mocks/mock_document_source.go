package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"propcheck/internal/port"
)

// MockDocumentSource is a mock implementation of port.DocumentSource.
type MockDocumentSource struct {
	mock.Mock
}

func (m *MockDocumentSource) Open(ctx context.Context, bucket, key string) (*port.SourceObject, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.SourceObject), args.Error(1)
}
