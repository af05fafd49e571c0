package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"propcheck/internal/analyzer"
	"propcheck/internal/config"
	"propcheck/internal/document"
	"propcheck/internal/domain"
	"propcheck/internal/port"
	"propcheck/internal/schema"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.5-flash"
)

// Analyzer implements port.DocumentAnalyzer using Google's Gemini API.
type Analyzer struct {
	apiKey          string
	model           string
	endpoint        string
	temperature     float64
	maxOutputTokens int
	client          *http.Client
}

// NewAnalyzer creates a Gemini-based document analyzer. A missing API key is a
// configuration error.
func NewAnalyzer(cfg *config.AnalyzerConfig) (*Analyzer, error) {
	return newAnalyzer(cfg, cfg.Endpoint)
}

// NewAnalyzerWithEndpoint creates an analyzer pointing at a custom API endpoint (for testing).
func NewAnalyzerWithEndpoint(cfg *config.AnalyzerConfig, endpoint string) (*Analyzer, error) {
	return newAnalyzer(cfg, endpoint)
}

func newAnalyzer(cfg *config.AnalyzerConfig, endpoint string) (*Analyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 16384
	}
	return &Analyzer{
		apiKey:          cfg.APIKey,
		model:           model,
		endpoint:        endpoint,
		temperature:     cfg.Temperature,
		maxOutputTokens: maxTokens,
		client:          &http.Client{Timeout: cfg.Timeout()},
	}, nil
}

// Model returns the model name requests are sent to.
func (a *Analyzer) Model() string {
	return a.model
}

func (a *Analyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*domain.DueDiligenceReport, error) {
	if !document.Encodable(input.MimeType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, input.MimeType)
	}

	bodyBytes, err := a.buildRequest(input)
	if err != nil {
		return nil, domain.NewAnalysisError(domain.ReasonRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, domain.NewAnalysisError(domain.ReasonRequestFailed, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, domain.NewAnalysisError(domain.ReasonRequestFailed, fmt.Errorf("calling gemini API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewAnalysisError(domain.ReasonRequestFailed, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			anErr := domain.NewAnalysisError(domain.ReasonRateLimited, baseErr)
			anErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			return nil, anErr
		}
		return nil, domain.NewAnalysisError(domain.ReasonRequestFailed, baseErr)
	}

	return parseResponse(respBody)
}

func (a *Analyzer) buildRequest(input port.AnalyzeInput) ([]byte, error) {
	responseSchema, err := schema.Gemini()
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]interface{}{
							"mime_type": domain.NormalizeContentType(input.MimeType),
							"data":      document.StripDataURIPrefix(input.Data),
						},
					},
					{
						"text": analyzer.BuildDueDiligencePrompt(),
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema,
			"temperature":      a.temperature,
			"maxOutputTokens":  a.maxOutputTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return bodyBytes, nil
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func parseResponse(body []byte) (*domain.DueDiligenceReport, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewAnalysisError(domain.ReasonRequestFailed, fmt.Errorf("unmarshaling response: %w", err))
	}

	if len(resp.Candidates) == 0 {
		cause := errors.New("no candidates")
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			cause = fmt.Errorf("no candidates (blocked: %s)", resp.PromptFeedback.BlockReason)
		}
		return nil, domain.NewAnalysisError(domain.ReasonEmptyResponse, cause)
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, domain.NewAnalysisError(domain.ReasonEmptyResponse, fmt.Errorf("no text (finish reason %q)", candidate.FinishReason))
	}

	report, err := schema.Decode([]byte(text))
	if err != nil {
		if candidate.FinishReason == "MAX_TOKENS" {
			err = fmt.Errorf("output truncated (finish reason MAX_TOKENS): %w", err)
		}
		return nil, domain.NewAnalysisError(domain.ReasonSchemaViolation, fmt.Errorf("%w (raw: %s)", err, truncate(text, 500)))
	}
	return report, nil
}

// parseRetryAfter parses a Retry-After header given in seconds.
func parseRetryAfter(val string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
