package dataprocessing

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"s38cli/pkg/contracts/domain"
)

// HeaderLines is the number of leading lines of every quote file that hold a
// header or timestamp rather than records. They are dropped unread.
const HeaderLines = 1

// FileProcessor decodes whole files line by line.
type FileProcessor struct {
	validator *RecordValidator
	slicer    *Slicer
	logger    *slog.Logger
}

// NewFileProcessor returns a processor that classifies lines with validator.
func NewFileProcessor(validator *RecordValidator, slicer *Slicer, logger *slog.Logger) *FileProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProcessor{
		validator: validator,
		slicer:    slicer,
		logger:    logger.With(slog.String("component", "file_processor")),
	}
}

// Process reads desc.Path and decodes it. An unreadable file yields a single
// file_read_error diagnostic with line number 0 and no records.
func (p *FileProcessor) Process(ctx context.Context, desc domain.FileDescriptor) domain.FileResult {
	data, err := os.ReadFile(desc.Path)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to read quote file",
			slog.String("file", desc.Name),
			slog.String("error", err.Error()))
		return domain.FileResult{
			Descriptor: desc,
			Diagnostics: []domain.DiagnosticRecord{{
				SourceFile: desc.Name,
				LineNo:     0,
				Reason:     domain.RejectWith(domain.ReasonFileReadError, err.Error()),
			}},
		}
	}
	return p.ProcessBytes(ctx, desc, data)
}

// ProcessBytes decodes file content already in memory. Lines are split on
// '\n' with a trailing '\r' removed; the header lines are dropped and lines
// left with no bytes are skipped. A line holding only spaces is a data line
// and is classified like any other. Line numbers are 1-based positions in
// the file.
func (p *FileProcessor) ProcessBytes(ctx context.Context, desc domain.FileDescriptor, data []byte) domain.FileResult {
	res := domain.FileResult{Descriptor: desc}

	lines := bytes.Split(data, []byte{'\n'})
	for i, raw := range lines {
		if i < HeaderLines {
			continue
		}
		raw = bytes.TrimRight(raw, "\r")
		if len(raw) == 0 {
			continue
		}
		res.DataLines++

		out := p.validator.Classify(RawLine{File: desc.Name, LineNo: i + 1, Bytes: raw}, desc.TradeDate)
		if out.Accepted() {
			res.Records = append(res.Records, *out.Record)
			continue
		}
		res.Diagnostics = append(res.Diagnostics, *out.Diagnostic)
		p.logger.DebugContext(ctx, "Rejected record",
			slog.String("file", desc.Name),
			slog.Int("line_no", i+1),
			slog.String("reason", out.Diagnostic.Reason.String()))
	}

	p.logger.DebugContext(ctx, "Decoded quote file",
		slog.String("file", desc.Name),
		slog.String("trade_date", desc.TradeDate),
		slog.Int("data_lines", res.DataLines),
		slog.Int("accepted", res.Accepted()),
		slog.Int("rejected", res.Rejected()))
	return res
}
