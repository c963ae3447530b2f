package exporter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "s38cli/internal/errors"
	"s38cli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates filePath (and its directory), writes the BOM
// when requested and the header row.
func CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	slog.Info("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	// Excel needs the BOM to detect UTF-8
	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush pushes buffered rows to the file.
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// CSVSink writes accepted records and diagnostics to two CSV files.
type CSVSink struct {
	variant     domain.Variant
	records     *StreamWriter
	diagnostics *StreamWriter
}

// NewCSVSink creates both files and writes their headers.
func NewCSVSink(recordsPath, diagnosticsPath string, variant domain.Variant, bom bool) (*CSVSink, error) {
	records, err := CreateStreamWriter(recordsPath, RecordColumns(variant), bom)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open records file", err).
			WithContext("path", recordsPath)
	}
	diagnostics, err := CreateStreamWriter(diagnosticsPath, DiagnosticColumns(), bom)
	if err != nil {
		records.Close()
		return nil, apperrors.NewStorageError("failed to open diagnostics file", err).
			WithContext("path", diagnosticsPath)
	}
	return &CSVSink{variant: variant, records: records, diagnostics: diagnostics}, nil
}

func (s *CSVSink) WriteRecords(ctx context.Context, records []domain.ParsedQuoteRecord) error {
	for i, rec := range records {
		if err := s.records.WriteRecord(RecordRow(s.variant, rec)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}
	if err := s.records.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush records", err)
	}
	return nil
}

func (s *CSVSink) WriteDiagnostics(ctx context.Context, diags []domain.DiagnosticRecord) error {
	for i, d := range diags {
		if err := s.diagnostics.WriteRecord(DiagnosticRow(d)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write diagnostic %d", i), err)
		}
	}
	if err := s.diagnostics.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush diagnostics", err)
	}
	return nil
}

func (s *CSVSink) Close() error {
	return errors.Join(s.records.Close(), s.diagnostics.Close())
}
