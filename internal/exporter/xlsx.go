package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "s38cli/internal/errors"
	"s38cli/pkg/contracts/domain"
)

// Sheet names of the workbook written by XLSXSink.
const (
	QuotesSheet      = "quotes"
	DiagnosticsSheet = "diagnostics"
)

// maxSheetRows is the row limit of one worksheet.
const maxSheetRows = excelize.TotalRows

// XLSXSink streams records and diagnostics into two sheets of one workbook.
// The workbook is written to disk on Close.
type XLSXSink struct {
	path    string
	variant domain.Variant
	file    *excelize.File

	quotes      *excelize.StreamWriter
	diagnostics *excelize.StreamWriter
	quoteRow    int
	diagRow     int
}

// NewXLSXSink prepares a workbook to be saved at path.
func NewXLSXSink(path string, variant domain.Variant) (*XLSXSink, error) {
	f := excelize.NewFile()
	fail := func(msg string, err error) (*XLSXSink, error) {
		f.Close()
		return nil, apperrors.NewStorageError(msg, err).WithContext("path", path)
	}

	if err := f.SetSheetName("Sheet1", QuotesSheet); err != nil {
		return fail("failed to name quotes sheet", err)
	}
	if _, err := f.NewSheet(DiagnosticsSheet); err != nil {
		return fail("failed to create diagnostics sheet", err)
	}

	quotes, err := f.NewStreamWriter(QuotesSheet)
	if err != nil {
		return fail("failed to open quotes sheet", err)
	}
	diagnostics, err := f.NewStreamWriter(DiagnosticsSheet)
	if err != nil {
		return fail("failed to open diagnostics sheet", err)
	}

	s := &XLSXSink{
		path:        path,
		variant:     variant,
		file:        f,
		quotes:      quotes,
		diagnostics: diagnostics,
	}
	if err := s.writeHeader(quotes, &s.quoteRow, RecordColumns(variant)); err != nil {
		return fail("failed to write quotes header", err)
	}
	if err := s.writeHeader(diagnostics, &s.diagRow, DiagnosticColumns()); err != nil {
		return fail("failed to write diagnostics header", err)
	}
	return s, nil
}

func (s *XLSXSink) writeHeader(sw *excelize.StreamWriter, row *int, headers []string) error {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return s.writeRow(sw, row, cells)
}

func (s *XLSXSink) writeRow(sw *excelize.StreamWriter, row *int, cells []interface{}) error {
	if *row >= maxSheetRows {
		return fmt.Errorf("sheet row limit %d reached", maxSheetRows)
	}
	*row++
	cell, err := excelize.CoordinatesToCellName(1, *row)
	if err != nil {
		return err
	}
	return sw.SetRow(cell, cells)
}

func (s *XLSXSink) WriteRecords(_ context.Context, records []domain.ParsedQuoteRecord) error {
	for _, rec := range records {
		if err := s.writeRow(s.quotes, &s.quoteRow, recordCells(s.variant, rec)); err != nil {
			return apperrors.NewStorageError("failed to write quote row", err).
				WithContext("source_file", rec.SourceFile).
				WithContext("line_no", rec.LineNo)
		}
	}
	return nil
}

func (s *XLSXSink) WriteDiagnostics(_ context.Context, diags []domain.DiagnosticRecord) error {
	for _, d := range diags {
		row := DiagnosticRow(d)
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cells[1] = d.LineNo
		if err := s.writeRow(s.diagnostics, &s.diagRow, cells); err != nil {
			return apperrors.NewStorageError("failed to write diagnostic row", err).
				WithContext("source_file", d.SourceFile)
		}
	}
	return nil
}

// Close flushes both sheets and saves the workbook.
func (s *XLSXSink) Close() error {
	defer s.file.Close()

	if err := s.quotes.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush quotes sheet", err)
	}
	if err := s.diagnostics.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush diagnostics sheet", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", s.path)
	}
	return nil
}

// recordCells keeps prices as numbers so the sheet can be computed on;
// absent values are left blank.
func recordCells(variant domain.Variant, rec domain.ParsedQuoteRecord) []interface{} {
	if variant == domain.VariantFiltering {
		return []interface{}{
			rec.TradeDate,
			rec.StockID,
			nullFloat(rec.Open.Valid, rec.Open.Decimal.InexactFloat64()),
			nullFloat(rec.High.Valid, rec.High.Decimal.InexactFloat64()),
			nullFloat(rec.Low.Valid, rec.Low.Decimal.InexactFloat64()),
			rec.Close.InexactFloat64(),
			rec.ChangeFlag,
			nullFloat(rec.ChangeAmount.Valid, rec.ChangeAmount.Decimal.InexactFloat64()),
			nullInt(rec.Volume.Valid, rec.Volume.Int64),
			nullInt(rec.Amount.Valid, rec.Amount.Int64),
			rec.StockName,
			rec.SourceFile,
			rec.LineNo,
		}
	}
	return []interface{}{
		rec.TradeDate,
		rec.StockID,
		rec.Close.InexactFloat64(),
		rec.ChangeFlag,
		rec.StockName,
		rec.SourceFile,
		rec.LineNo,
	}
}

func nullFloat(valid bool, v float64) interface{} {
	if !valid {
		return nil
	}
	return v
}

func nullInt(valid bool, v int64) interface{} {
	if !valid {
		return nil
	}
	return v
}
