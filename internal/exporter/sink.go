package exporter

import (
	"context"
	"fmt"
	"sync"

	"s38cli/internal/config"
	"s38cli/pkg/contracts/domain"
)

// Sink persists batches of accepted records and diagnostics. Calls are
// appends; a sink is written by one goroutine at a time.
type Sink interface {
	WriteRecords(ctx context.Context, records []domain.ParsedQuoteRecord) error
	WriteDiagnostics(ctx context.Context, diags []domain.DiagnosticRecord) error
	Close() error
}

// NewSink opens the sink selected by cfg.Format.
func NewSink(cfg config.OutputConfig, variant domain.Variant) (Sink, error) {
	switch cfg.Format {
	case "csv", "":
		return NewCSVSink(cfg.RecordsPath, cfg.DiagnosticsPath, variant, cfg.BOM)
	case "xlsx":
		return NewXLSXSink(cfg.RecordsPath, variant)
	case "sqlite":
		return NewSQLiteSink(cfg.RecordsPath)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
}

// MemorySink keeps everything in memory. It is safe for concurrent use.
type MemorySink struct {
	mu          sync.Mutex
	records     []domain.ParsedQuoteRecord
	diagnostics []domain.DiagnosticRecord
	flushes     int
	closed      bool
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) WriteRecords(_ context.Context, records []domain.ParsedQuoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("memory sink closed")
	}
	m.records = append(m.records, records...)
	m.flushes++
	return nil
}

func (m *MemorySink) WriteDiagnostics(_ context.Context, diags []domain.DiagnosticRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("memory sink closed")
	}
	m.diagnostics = append(m.diagnostics, diags...)
	return nil
}

func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Records returns a copy of the records written so far.
func (m *MemorySink) Records() []domain.ParsedQuoteRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ParsedQuoteRecord(nil), m.records...)
}

// Diagnostics returns a copy of the diagnostics written so far.
func (m *MemorySink) Diagnostics() []domain.DiagnosticRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DiagnosticRecord(nil), m.diagnostics...)
}

// RecordBatches returns how many WriteRecords calls were made.
func (m *MemorySink) RecordBatches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Closed reports whether Close was called.
func (m *MemorySink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
