package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"propcheck/internal/analyzer"
	"propcheck/internal/analyzer/gemini"
	"propcheck/internal/config"
	"propcheck/internal/csvexport"
	"propcheck/internal/document"
	"propcheck/internal/domain"
	"propcheck/internal/logging"
	"propcheck/internal/port"
	"propcheck/internal/render"
	"propcheck/internal/service"
	s3storage "propcheck/internal/storage/s3"
)

// Output formats accepted by --format.
const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
	formatXLSX     = "xlsx"
	formatCSV      = "csv"
)

var validFormats = map[string]bool{
	formatJSON: true, formatYAML: true, formatMarkdown: true, formatXLSX: true, formatCSV: true,
}

type analyzeOptions struct {
	file     string
	format   string
	output   string
	timeout  time.Duration
	model    string
	endpoint string
	s3Bucket string
	s3Key    string
	verbose  bool
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a property document",
		Long: `Analyze sends one property document to the model and prints the report.

Examples:
  # Print the report as JSON
  propcheck analyze sale_deed.pdf

  # Write a printable Markdown report
  propcheck analyze --format markdown --output report.md sale_deed.pdf

  # Export the report to Excel
  propcheck analyze --format xlsx --output report.xlsx ec_scan.jpg

  # Analyze a document stored in S3
  propcheck analyze --s3-bucket property-docs --s3-key uploads/deed.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("format", "f", formatJSON, "Output format: json, yaml, markdown, xlsx, csv")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().DurationP("timeout", "t", 2*time.Minute, "Maximum time to wait for the analysis")
	cmd.Flags().String("model", "", "Override the analyzer model")
	cmd.Flags().String("endpoint", "", "Override the analyzer API endpoint")
	cmd.Flags().String("s3-bucket", "", "Bucket to read the document from (default: PROPCHECK_S3_BUCKET)")
	cmd.Flags().String("s3-key", "", "Object key of the document to analyze")

	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	opts, err := buildAnalyzeOptions(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.model != "" {
		cfg.Analyzer.Model = opts.model
	}
	if opts.endpoint != "" {
		cfg.Analyzer.Endpoint = opts.endpoint
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	logger := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())

	svc, err := newSessionService(cfg, opts, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	snap, err := startAnalysis(ctx, svc, opts)
	if err != nil {
		if snap.Error != "" {
			return fmt.Errorf("%s: %w", snap.Error, err)
		}
		return err
	}
	logger.Debug().Str("file", snap.FileName).Str("analysis_id", snap.AnalysisID).Msg("analysis started")

	final, err := svc.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for analysis: %w", err)
	}
	if final.Phase != service.PhaseSuccess {
		return fmt.Errorf("%s (%s)", final.Error, final.ErrorKind)
	}

	return writeReport(cmd.OutOrStdout(), opts, final)
}

func buildAnalyzeOptions(cmd *cobra.Command, args []string) (analyzeOptions, error) {
	var opts analyzeOptions
	if len(args) == 1 {
		opts.file = args[0]
	}
	opts.format, _ = cmd.Flags().GetString("format")
	opts.output, _ = cmd.Flags().GetString("output")
	opts.timeout, _ = cmd.Flags().GetDuration("timeout")
	opts.model, _ = cmd.Flags().GetString("model")
	opts.endpoint, _ = cmd.Flags().GetString("endpoint")
	opts.s3Bucket, _ = cmd.Flags().GetString("s3-bucket")
	opts.s3Key, _ = cmd.Flags().GetString("s3-key")
	opts.verbose, _ = cmd.Flags().GetBool("verbose")

	if !validFormats[opts.format] {
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.file == "" && opts.s3Key == "" {
		return opts, errors.New("a file argument or --s3-key is required")
	}
	if opts.file != "" && opts.s3Key != "" {
		return opts, errors.New("a file argument and --s3-key are mutually exclusive")
	}
	if opts.format == formatXLSX && opts.output == "" {
		return opts, errors.New("--format xlsx requires --output")
	}
	return opts, nil
}

func newSessionService(cfg *config.Config, opts analyzeOptions, logger zerolog.Logger) (service.SessionService, error) {
	geminiAnalyzer, err := gemini.NewAnalyzer(&cfg.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	var docAnalyzer port.DocumentAnalyzer = geminiAnalyzer
	if cfg.Resilience.Enabled() {
		docAnalyzer = analyzer.NewResilientAnalyzer(geminiAnalyzer, cfg.Resilience, logger)
	}

	var source port.DocumentSource
	if opts.s3Key != "" {
		s3Source, err := s3storage.NewS3Source(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 source: %w", err)
		}
		source = s3Source
	}

	return service.NewSessionService(docAnalyzer, source, service.SessionOptions{
		MaxBytes: cfg.Upload.MaxBytes(),
		Timeout:  opts.timeout,
		Logger:   logger,
	}), nil
}

func startAnalysis(ctx context.Context, svc service.SessionService, opts analyzeOptions) (service.Snapshot, error) {
	if opts.s3Key != "" {
		return svc.Import(ctx, opts.s3Bucket, opts.s3Key)
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return service.Snapshot{}, fmt.Errorf("failed to open %s: %w", opts.file, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return service.Snapshot{}, fmt.Errorf("failed to stat %s: %w", opts.file, err)
	}

	br := bufio.NewReaderSize(f, document.SniffLength)
	header, _ := br.Peek(document.SniffLength)

	return svc.SelectFile(ctx, service.FileInput{
		Name:        filepath.Base(opts.file),
		ContentType: document.DetectContentType(header, ""),
		Size:        info.Size(),
		Body: struct {
			io.Reader
			io.Closer
		}{br, f},
	})
}

func writeReport(stdout io.Writer, opts analyzeOptions, snap service.Snapshot) error {
	output := stdout
	if opts.output != "" {
		dir := filepath.Dir(opts.output)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	return renderReport(output, opts.format, snap.Report, snap.FileName, time.Now())
}

func renderReport(w io.Writer, format string, r *domain.DueDiligenceReport, fileName string, now time.Time) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case formatMarkdown:
		return render.NewMarkdownWriter(w).Write(r, fileName, now)
	case formatXLSX:
		return render.WriteXLSX(w, r, fileName)
	case formatCSV:
		if _, err := w.Write(csvexport.BOM); err != nil {
			return err
		}
		cw := csvexport.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		if err := cw.WriteReport(r); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
}
