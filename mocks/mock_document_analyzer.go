package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"propcheck/internal/domain"
	"propcheck/internal/port"
)

// MockDocumentAnalyzer is a mock implementation of port.DocumentAnalyzer.
type MockDocumentAnalyzer struct {
	mock.Mock
}

func (m *MockDocumentAnalyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.DueDiligenceReport, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DueDiligenceReport), args.Error(1)
}
