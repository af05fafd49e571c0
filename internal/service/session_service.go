package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"propcheck/internal/document"
	"propcheck/internal/domain"
	"propcheck/internal/port"
)

// User-facing messages. Error details only go to the log.
const (
	MsgInvalidFile    = "Please upload a valid PDF or Image file."
	MsgFileTooLarge   = "The file is too large. Please upload a document under the size limit."
	MsgAnalysisFailed = "Failed to analyze the document. Please ensure the file is clear and try again."
)

// Phase is the lifecycle state of the analysis session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAnalyzing Phase = "analyzing"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
)

// FileInput is a document selected for analysis. The session takes ownership of Body
// and closes it. Size is -1 when unknown.
type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Phase       Phase                      `json:"phase"`
	FileName    string                     `json:"file_name"`
	Report      *domain.DueDiligenceReport `json:"report,omitempty"`
	Error       string                     `json:"error,omitempty"`
	ErrorKind   string                     `json:"error_kind,omitempty"`
	AnalysisID  string                     `json:"analysis_id,omitempty"`
	Generation  uint64                     `json:"generation"`
	MimeType    string                     `json:"mime_type,omitempty"`
	PageCount   int                        `json:"page_count,omitempty"`
	StartedAt   *time.Time                 `json:"started_at,omitempty"`
	CompletedAt *time.Time                 `json:"completed_at,omitempty"`
}

// AnalysisRecorder receives analysis outcomes for instrumentation.
type AnalysisRecorder interface {
	RecordAnalysis(outcome string, d time.Duration)
	RecordStaleResult()
	RecordUpload(mimeType string, size int64)
}

// SessionOptions configures a SessionService.
type SessionOptions struct {
	MaxBytes int64         // 0 disables the size check
	Timeout  time.Duration // deadline for one encode+analyze run
	Logger   zerolog.Logger
	Recorder AnalysisRecorder
}

// SessionService is the single analysis session: Idle, Analyzing, Success or Error.
type SessionService interface {
	SelectFile(ctx context.Context, input FileInput) (Snapshot, error)
	Import(ctx context.Context, bucket, key string) (Snapshot, error)
	Reset() Snapshot
	Snapshot() Snapshot
	Wait(ctx context.Context) (Snapshot, error)
}

type sessionService struct {
	analyzer port.DocumentAnalyzer
	source   port.DocumentSource
	opts     SessionOptions
	log      zerolog.Logger

	mu    sync.Mutex
	state Snapshot
	done  chan struct{} // closed when the current generation's analysis completes
}

// NewSessionService creates a SessionService in the Idle phase. source may be nil.
func NewSessionService(analyzer port.DocumentAnalyzer, source port.DocumentSource, opts SessionOptions) SessionService {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &sessionService{
		analyzer: analyzer,
		source:   source,
		opts:     opts,
		log:      opts.Logger.With().Str("component", "session").Logger(),
		state:    Snapshot{Phase: PhaseIdle},
	}
}

func (s *sessionService) SelectFile(ctx context.Context, input FileInput) (Snapshot, error) {
	log := s.logger(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == PhaseAnalyzing {
		closeBody(input.Body)
		return s.state, domain.ErrAnalysisInProgress
	}

	mimeType, err := s.validate(input)
	if err != nil {
		closeBody(input.Body)
		s.state.Error = validationMessage(err)
		s.state.ErrorKind = domain.ErrorKind(err)
		log.Info().Str("file", input.Name).Str("content_type", input.ContentType).Err(err).
			Msg("rejected file selection")
		return s.state, err
	}

	now := time.Now().UTC()
	gen := s.state.Generation + 1
	s.state = Snapshot{
		Phase:      PhaseAnalyzing,
		FileName:   input.Name,
		AnalysisID: uuid.New().String(),
		Generation: gen,
		MimeType:   mimeType,
		StartedAt:  &now,
	}
	done := make(chan struct{})
	s.done = done

	if input.Size > 0 {
		s.opts.Recorder.RecordUpload(mimeType, input.Size)
	}
	log.Info().Str("file", input.Name).Str("mime_type", mimeType).Int64("size", input.Size).
		Uint64("generation", gen).Str("analysis_id", s.state.AnalysisID).Msg("analysis started")

	go s.analyzeInBackground(gen, input, mimeType, done)

	return s.state, nil
}

func (s *sessionService) Import(ctx context.Context, bucket, key string) (Snapshot, error) {
	if s.source == nil {
		return s.Snapshot(), domain.ErrSourceNotConfigured
	}
	if s.Snapshot().Phase == PhaseAnalyzing {
		return s.Snapshot(), domain.ErrAnalysisInProgress
	}

	// the body is read after the caller returns, so it must outlive ctx
	openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.Timeout)
	obj, err := s.source.Open(openCtx, bucket, key)
	if err != nil {
		cancel()
		return s.Snapshot(), fmt.Errorf("opening %s/%s: %w", bucket, key, err)
	}
	return s.SelectFile(ctx, FileInput{
		Name:        obj.Name,
		ContentType: obj.ContentType,
		Size:        obj.Size,
		Body:        cancelOnClose{ReadCloser: obj.Body, cancel: cancel},
	})
}

func (s *sessionService) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == PhaseAnalyzing {
		s.log.Info().Uint64("generation", s.state.Generation).Msg("reset while analyzing; result will be discarded")
	}
	s.state = Snapshot{Phase: PhaseIdle, Generation: s.state.Generation + 1}
	s.done = nil
	return s.state
}

func (s *sessionService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until the analysis of the current generation completes, then returns the
// resulting snapshot. It returns immediately when nothing is being analyzed.
func (s *sessionService) Wait(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
	return s.Snapshot(), nil
}

func (s *sessionService) validate(input FileInput) (string, error) {
	if input.Body == nil {
		return "", domain.ErrEmptyFile
	}
	mimeType := domain.NormalizeContentType(input.ContentType)
	if !domain.IsAllowedContentType(mimeType) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, input.ContentType)
	}
	if mimeType == "image/jpg" {
		mimeType = "image/jpeg"
	}
	if input.Size == 0 {
		return "", domain.ErrEmptyFile
	}
	if s.opts.MaxBytes > 0 && input.Size > s.opts.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, input.Size, s.opts.MaxBytes)
	}
	return mimeType, nil
}

func (s *sessionService) analyzeInBackground(gen uint64, input FileInput, mimeType string, done chan struct{}) {
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	report, pages, err := s.encodeAndAnalyze(ctx, input, mimeType)
	s.complete(gen, report, pages, err)
}

func (s *sessionService) encodeAndAnalyze(ctx context.Context, input FileInput, mimeType string) (*domain.DueDiligenceReport, int, error) {
	defer closeBody(input.Body)

	var r io.Reader = input.Body
	if s.opts.MaxBytes > 0 && input.Size < 0 {
		r = &limitedReader{r: r, remaining: s.opts.MaxBytes}
	}

	var pdfBuf *bytes.Buffer
	if mimeType == "application/pdf" {
		pdfBuf = new(bytes.Buffer)
		r = io.TeeReader(r, pdfBuf)
	}

	encoded, err := document.Encode(r, mimeType)
	if err != nil {
		return nil, 0, err
	}
	if encoded == "" {
		return nil, 0, domain.ErrEmptyFile
	}

	pages := 0
	if pdfBuf != nil {
		if n, perr := document.CountPDFPagesBytes(pdfBuf.Bytes()); perr == nil {
			pages = n
		} else {
			s.log.Debug().Err(perr).Msg("could not count pdf pages")
		}
	}

	report, err := s.analyzer.Analyze(ctx, port.AnalyzeInput{Data: encoded, MimeType: mimeType})
	if err != nil {
		return nil, pages, err
	}
	return report, pages, nil
}

func (s *sessionService) complete(gen uint64, report *domain.DueDiligenceReport, pages int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.state.Generation || s.state.Phase != PhaseAnalyzing {
		s.opts.Recorder.RecordStaleResult()
		s.log.Info().Uint64("generation", gen).Uint64("current_generation", s.state.Generation).
			Msg("discarding stale analysis result")
		return
	}

	now := time.Now().UTC()
	s.state.CompletedAt = &now
	s.state.PageCount = pages
	elapsed := now.Sub(*s.state.StartedAt)

	if err != nil {
		kind := domain.ErrorKind(err)
		s.state.Phase = PhaseError
		s.state.Error = MsgAnalysisFailed
		s.state.ErrorKind = kind
		s.opts.Recorder.RecordAnalysis(kind, elapsed)
		s.log.Error().Err(err).Str("file", s.state.FileName).Str("error_kind", kind).
			Uint64("generation", gen).Dur("elapsed", elapsed).Msg("analysis failed")
		return
	}

	s.state.Phase = PhaseSuccess
	s.state.Report = report
	s.opts.Recorder.RecordAnalysis("success", elapsed)
	s.log.Info().Str("file", s.state.FileName).Str("risk_level", string(report.RiskAssessment.RiskLevel)).
		Int("score", report.RiskAssessment.Score).Uint64("generation", gen).Dur("elapsed", elapsed).
		Msg("analysis completed")
}

func (s *sessionService) logger(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l.With().Str("component", "session").Logger()
	}
	return s.log
}

func validationMessage(err error) string {
	if errors.Is(err, domain.ErrFileTooLarge) {
		return MsgFileTooLarge
	}
	return MsgInvalidFile
}

func closeBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}

// limitedReader fails once more than remaining bytes have been read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, domain.ErrFileTooLarge
	}
	return n, err
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

type nopRecorder struct{}

func (nopRecorder) RecordAnalysis(string, time.Duration) {}
func (nopRecorder) RecordStaleResult()                   {}
func (nopRecorder) RecordUpload(string, int64)           {}
