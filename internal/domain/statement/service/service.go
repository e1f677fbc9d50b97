// Package service orchestrates statement parsing for the transports: input
// validation, the per-request timeout, deduplication keys, summaries,
// logging, tracing and metrics around the pure institution pipelines.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/document"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/pipeline"
	"github.com/FACorreiaa/statement-parser/pkg/metrics"
)

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrNotPDF       = errors.New("file is not a PDF document")
	ErrFileTooLarge = errors.New("file exceeds the upload limit")
)

const pdfMagic = "%PDF"

// Config bounds a ParseService.
type Config struct {
	MaxUploadBytes int64
	// Timeout caps how long Parse waits. A timed-out pipeline is abandoned,
	// not cancelled: it runs to completion in the background and its result
	// is dropped. Zero disables it.
	Timeout time.Duration
	// Workers is the ParseBatch pool size. Zero means GOMAXPROCS.
	Workers int
}

// Request is one document to parse.
type Request struct {
	Institution pipeline.Institution
	Filename    string
	Data        []byte
}

// Response is the outcome of one parse.
type Response struct {
	ParseID           uuid.UUID            `json:"parse_id"`
	Institution       pipeline.Institution `json:"bank_code"`
	Filename          string               `json:"filename,omitempty"`
	AccountIdentifier *string              `json:"account_identifier"`
	Transactions      []statement.Record   `json:"transactions"`
	TotalCount        int                  `json:"total_count"`
	Summary           statement.Summary    `json:"summary"`
	Stats             statement.Stats      `json:"stats"`
}

// ParseService runs institution pipelines on validated uploads.
type ParseService struct {
	pipelines map[pipeline.Institution]pipeline.InstitutionPipeline
	cfg       Config
	metrics   *metrics.Metrics // Optional: nil records nothing
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewParseService creates a service with one pipeline per supported
// institution, all reading documents through extractor.
func NewParseService(extractor document.Extractor, cfg Config, logger *slog.Logger) *ParseService {
	pipelines := make(map[pipeline.Institution]pipeline.InstitutionPipeline, len(pipeline.Institutions))
	for _, inst := range pipeline.Institutions {
		p, err := pipeline.New(inst, extractor)
		if err != nil {
			// Institutions and New are kept in sync.
			panic(err)
		}
		pipelines[inst] = p
	}

	return &ParseService{
		pipelines: pipelines,
		cfg:       cfg,
		tracer:    otel.Tracer("github.com/FACorreiaa/statement-parser/service"),
		logger:    logger,
	}
}

// WithMetrics adds Prometheus instrumentation to the service.
func (s *ParseService) WithMetrics(m *metrics.Metrics) *ParseService {
	s.metrics = m
	return s
}

// Validate checks an upload before any decoding happens. A file passes the
// format check when it is named *.pdf or starts with the PDF magic bytes.
func (s *ParseService) Validate(req Request) error {
	if len(req.Data) == 0 {
		return ErrEmptyFile
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(req.Data)) > s.cfg.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(req.Data), s.cfg.MaxUploadBytes)
	}
	if !strings.EqualFold(filepath.Ext(req.Filename), ".pdf") && !bytes.HasPrefix(req.Data, []byte(pdfMagic)) {
		return ErrNotPDF
	}
	return nil
}

type outcome struct {
	result *statement.Result
	err    error
}

// Parse validates req and extracts its transactions. Errors wrap one of the
// package sentinels, pipeline.ErrUnsupportedInstitution,
// statement.ErrParseFailed or the context error when the deadline passed.
func (s *ParseService) Parse(ctx context.Context, req Request) (*Response, error) {
	parseID := uuid.New()
	ctx, span := s.tracer.Start(ctx, "ParseService.Parse", trace.WithAttributes(
		attribute.String("parse.id", parseID.String()),
		attribute.String("parse.institution", string(req.Institution)),
		attribute.Int("parse.bytes", len(req.Data)),
	))
	defer span.End()

	logger := s.logger.With(
		slog.String("parse_id", parseID.String()),
		slog.String("institution", string(req.Institution)),
		slog.String("filename", req.Filename),
	)

	p, ok := s.pipelines[req.Institution]
	if !ok {
		err := fmt.Errorf("%w: %q", pipeline.ErrUnsupportedInstitution, req.Institution)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.Validate(req); err != nil {
		s.metrics.ObserveParse(string(req.Institution), metrics.OutcomeRejected, 0)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	// Buffered so an abandoned pipeline can still send and exit.
	done := make(chan outcome, 1)
	go func() {
		res, err := p.Parse(req.Data)
		done <- outcome{result: res, err: err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		elapsed := time.Since(start)
		s.metrics.ObserveParse(string(req.Institution), metrics.OutcomeTimeout, elapsed)
		logger.Warn("statement parse abandoned",
			slog.Duration("elapsed", elapsed),
			slog.Any("error", ctx.Err()))
		span.SetStatus(codes.Error, ctx.Err().Error())
		return nil, fmt.Errorf("parse %s: %w", parseID, ctx.Err())
	case out = <-done:
	}
	elapsed := time.Since(start)

	if out.err != nil {
		s.metrics.ObserveParse(string(req.Institution), metrics.OutcomeFailed, elapsed)
		logger.Error("statement parse failed", slog.Any("error", out.err))
		span.RecordError(out.err)
		span.SetStatus(codes.Error, out.err.Error())
		return nil, out.err
	}

	resp := s.respond(parseID, req, out.result)
	s.observe(req.Institution, out.result, elapsed)

	stats := out.result.Stats
	logger.Info("statement parsed",
		slog.Int("transactions", resp.TotalCount),
		slog.Int("pages", stats.Pages),
		slog.Int("tables_seen", stats.TablesSeen),
		slog.Int("tables_rejected", stats.TablesRejected),
		slog.Int("rows_skipped", stats.RowsSkipped),
		slog.String("strategy", stats.Strategy),
		slog.Bool("text_flow", stats.TextFlow),
		slog.Duration("elapsed", elapsed))
	span.SetAttributes(
		attribute.Int("parse.transactions", resp.TotalCount),
		attribute.String("parse.strategy", stats.Strategy),
	)

	return resp, nil
}

func (s *ParseService) respond(parseID uuid.UUID, req Request, result *statement.Result) *Response {
	resp := &Response{
		ParseID:      parseID,
		Institution:  req.Institution,
		Filename:     req.Filename,
		Transactions: statement.Records(result.AccountIdentifier, result.Transactions),
		TotalCount:   len(result.Transactions),
		Summary:      statement.Summarize(result.Transactions),
		Stats:        result.Stats,
	}
	if result.AccountIdentifier != "" {
		id := result.AccountIdentifier
		resp.AccountIdentifier = &id
	}
	return resp
}

func (s *ParseService) observe(inst pipeline.Institution, result *statement.Result, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	label := metrics.OutcomeOK
	if len(result.Transactions) == 0 {
		label = metrics.OutcomeEmpty
	}
	s.metrics.ObserveParse(string(inst), label, elapsed)

	directions := make(map[string]int, 3)
	for _, tx := range result.Transactions {
		directions[string(tx.Direction)]++
	}
	s.metrics.ObserveResult(string(inst), result.Stats.Strategy, directions,
		result.Stats.RowsSkipped, result.Stats.TablesRejected)
}

// BatchResult pairs a batch request with its outcome.
type BatchResult struct {
	Request  Request
	Response *Response
	Err      error
}

// ParseBatch parses reqs on a bounded worker pool. Results come back in
// request order. A failed document does not stop the others; cancelling ctx
// marks the documents not yet started with the context error.
func (s *ParseService) ParseBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	workerCount := s.cfg.Workers
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	workerCount = min(workerCount, len(reqs))

	jobs := make(chan int, workerCount*4)
	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = BatchResult{Request: reqs[i], Err: err}
					continue
				}
				resp, err := s.Parse(ctx, reqs[i])
				results[i] = BatchResult{Request: reqs[i], Response: resp, Err: err}
			}
		}()
	}

	for i := range reqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("statement batch finished",
		slog.Int("documents", len(reqs)),
		slog.Int("failed", failed),
		slog.Int("workers", workerCount))

	return results
}

// Institutions lists the codes the service accepts.
func (s *ParseService) Institutions() []pipeline.Institution {
	return pipeline.Institutions
}
