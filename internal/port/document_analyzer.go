package port

import (
	"context"

	"propcheck/internal/domain"
)

// AnalyzeInput carries one encoded document to the analyzer.
type AnalyzeInput struct {
	Data     string // standard base64, no data-URI prefix
	MimeType string
}

// DocumentAnalyzer abstracts the remote document-understanding model.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*domain.DueDiligenceReport, error)
}
