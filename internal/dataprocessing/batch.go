package dataprocessing

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"s38cli/internal/config"
	"s38cli/internal/exporter"
	"s38cli/internal/infrastructure"
	"s38cli/pkg/contracts/domain"
)

const tracerName = "s38cli/dataprocessing"

// MetricsRecorder receives per-file and per-flush measurements.
type MetricsRecorder interface {
	RecordFile(ctx context.Context, res domain.FileResult, elapsed time.Duration)
	RecordFlush(ctx context.Context, records, diagnostics int)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics records decoding metrics on m.
func WithMetrics(m MetricsRecorder) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithDateResolver replaces the default strategy chain.
func WithDateResolver(resolver *DateResolver) RunnerOption {
	return func(r *Runner) { r.resolver = resolver }
}

// WithProgressInterval sets how often progress is logged.
func WithProgressInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.progress = rate.Sometimes{Interval: d} }
}

// Runner decodes many files on a bounded worker pool and streams the merged
// results to a Sink. Files are merged in submission order by a single
// collector, so the sink sees the same rows whatever the worker count.
type Runner struct {
	cfg       *config.Config
	sink      exporter.Sink
	processor *FileProcessor
	resolver  *DateResolver
	metrics   MetricsRecorder
	tracer    trace.Tracer
	logger    *slog.Logger
	progress  rate.Sometimes

	mu      sync.RWMutex
	summary RunSummary
}

// NewRunner wires the decoding pipeline described by cfg to sink.
func NewRunner(cfg *config.Config, sink exporter.Sink, opts ...RunnerOption) (*Runner, error) {
	enc, err := config.ResolveEncoding(cfg.Decode.Encoding)
	if err != nil {
		return nil, err
	}
	slicer := NewSlicer(enc)

	r := &Runner{
		cfg:      cfg,
		sink:     sink,
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
		progress: rate.Sometimes{Interval: 5 * time.Second},
		summary:  NewRunSummary("", cfg.Decode.Variant),
	}
	for _, opt := range opts {
		opt(r)
	}
	base := r.logger
	r.logger = infrastructure.WithComponent(base, "runner")

	validator := NewRecordValidator(cfg.Decode, LayoutFor(cfg.Decode.Variant), slicer)
	r.processor = NewFileProcessor(validator, slicer, base)
	if r.resolver == nil {
		r.resolver = DefaultDateResolver(slicer, cfg.Decode.ValidateCalendarDates)
	}
	return r, nil
}

// Snapshot returns the current summary; it is safe to call while Run is in
// progress.
func (r *Runner) Snapshot() RunSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary.Clone()
}

func (r *Runner) workers() int {
	if n := r.cfg.Output.Workers; n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

type indexedResult struct {
	index  int
	result domain.FileResult
}

// Run decodes inputs and flushes their records and diagnostics to the sink.
// Cancelling ctx stops submitting files; files already submitted finish and
// are flushed. The returned error is a sink failure or ctx.Err().
func (r *Runner) Run(ctx context.Context, inputs []domain.FileInput) (RunSummary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := r.tracer.Start(ctx, "dataprocessing.run",
		trace.WithAttributes(attribute.Int("files", len(inputs))))
	defer span.End()

	summary := NewRunSummary(infrastructure.GetTraceID(ctx), r.cfg.Decode.Variant)
	summary.FilesTotal = len(inputs)
	r.mu.Lock()
	r.summary = summary
	r.mu.Unlock()

	workers := r.workers()
	r.logger.InfoContext(ctx, "Starting decode run",
		slog.Int("files", len(inputs)),
		slog.Int("workers", workers),
		slog.String("variant", string(r.cfg.Decode.Variant)),
		slog.Int("batch_size", r.cfg.Output.BatchSize))

	// Submitted files are decoded and flushed even after ctx is cancelled.
	workCtx := context.WithoutCancel(ctx)
	submitCtx, stop := context.WithCancel(ctx)
	defer stop()

	results := make(chan indexedResult, workers)
	collected := make(chan error, 1)
	go func() {
		collected <- r.collect(workCtx, stop, results)
	}()

	var g errgroup.Group
	g.SetLimit(workers)
	submitted := 0
	for i, in := range inputs {
		if submitCtx.Err() != nil {
			break
		}
		submitted++
		g.Go(func() error {
			results <- indexedResult{index: i, result: r.processFile(workCtx, in)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	sinkErr := <-collected

	r.mu.Lock()
	r.summary.FilesSkipped = len(inputs) - submitted
	r.summary.FinishedAt = time.Now()
	r.summary.Done = true
	final := r.summary.Clone()
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Decode run complete",
		slog.Int("files_processed", final.FilesProcessed),
		slog.Int("files_failed", final.FilesFailed),
		slog.Int("files_skipped", final.FilesSkipped),
		slog.Int("accepted", final.Accepted),
		slog.Int("rejected", final.Rejected),
		slog.Float64("reject_ratio", final.RejectRatio()),
		slog.Any("top_reasons", final.TopReasons(5)),
		slog.Duration("duration", final.Duration()))

	if sinkErr != nil {
		infrastructure.RecordError(ctx, sinkErr)
		return final, sinkErr
	}
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cancelled")
		return final, err
	}
	return final, nil
}

// processFile resolves the trade date of one file and decodes it.
func (r *Runner) processFile(ctx context.Context, in domain.FileInput) domain.FileResult {
	ctx, span := r.tracer.Start(ctx, "dataprocessing.process_file",
		trace.WithAttributes(attribute.String("file.path", in.Path)))
	defer span.End()

	start := time.Now()
	desc := domain.NewFileDescriptor(in)
	desc.TradeDate = r.resolver.Resolve(ctx, desc)
	res := r.processor.Process(ctx, desc)

	span.SetAttributes(
		attribute.String("trade_date", desc.TradeDate),
		attribute.Int("data_lines", res.DataLines),
		attribute.Int("accepted", res.Accepted()),
		attribute.Int("rejected", res.Rejected()))
	if res.Failed() {
		span.SetStatus(codes.Error, "file read error")
	}
	if r.metrics != nil {
		r.metrics.RecordFile(ctx, res, time.Since(start))
	}
	return res
}

// collect merges results in submission order and flushes whenever the
// buffered records or diagnostics reach the batch size. After a sink
// failure it stops submissions and drains the channel.
func (r *Runner) collect(ctx context.Context, stop context.CancelFunc, results <-chan indexedResult) error {
	batchSize := r.cfg.Output.BatchSize
	pending := make(map[int]domain.FileResult)
	next := 0

	var (
		records []domain.ParsedQuoteRecord
		diags   []domain.DiagnosticRecord
		failed  error
	)
	for ir := range results {
		if failed != nil {
			continue
		}
		pending[ir.index] = ir.result
		for {
			res, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			r.merge(ctx, res)
			records = append(records, res.Records...)
			diags = append(diags, res.Diagnostics...)
			if len(records) >= batchSize || len(diags) >= batchSize {
				if err := r.flush(ctx, records, diags); err != nil {
					failed = err
					stop()
					break
				}
				records, diags = nil, nil
			}
		}
	}
	if failed != nil {
		return failed
	}
	return r.flush(ctx, records, diags)
}

func (r *Runner) merge(ctx context.Context, res domain.FileResult) {
	if err := res.Audit(); err != nil {
		r.logger.ErrorContext(ctx, "Audit mismatch", slog.String("error", err.Error()))
	}

	r.mu.Lock()
	r.summary.Add(res)
	processed, total := r.summary.FilesProcessed, r.summary.FilesTotal
	accepted, rejected := r.summary.Accepted, r.summary.Rejected
	r.mu.Unlock()

	r.progress.Do(func() {
		r.logger.InfoContext(ctx, "Decode progress",
			slog.Int("files_processed", processed),
			slog.Int("files_total", total),
			slog.Int("accepted", accepted),
			slog.Int("rejected", rejected))
	})
}

func (r *Runner) flush(ctx context.Context, records []domain.ParsedQuoteRecord, diags []domain.DiagnosticRecord) error {
	if len(records) == 0 && len(diags) == 0 {
		return nil
	}
	if len(records) > 0 {
		if err := r.sink.WriteRecords(ctx, records); err != nil {
			return err
		}
	}
	if len(diags) > 0 {
		if err := r.sink.WriteDiagnostics(ctx, diags); err != nil {
			return err
		}
	}
	if r.metrics != nil {
		r.metrics.RecordFlush(ctx, len(records), len(diags))
	}

	r.mu.Lock()
	r.summary.Flushes++
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "Flushed batch",
		slog.Int("records", len(records)),
		slog.Int("diagnostics", len(diags)))
	return nil
}
