package exporter

import (
	"database/sql"
	"strconv"

	"github.com/shopspring/decimal"

	"s38cli/pkg/contracts/domain"
)

// PriceScale is the number of fractional digits written for prices.
const PriceScale = 4

var (
	basicColumns = []string{
		"date", "stock_id", "closing_price", "change_flag", "stock_name", "source_file", "line_no",
	}
	filteringColumns = []string{
		"date", "stock_id", "open_price", "high_price", "low_price", "closing_price",
		"change_flag", "change_amount", "volume", "amount", "stock_name", "source_file", "line_no",
	}
	diagnosticColumns = []string{"file", "line_no", "reason", "line_preview", "close_raw"}
)

// RecordColumns returns the accepted-record header for variant.
func RecordColumns(variant domain.Variant) []string {
	if variant == domain.VariantFiltering {
		return append([]string(nil), filteringColumns...)
	}
	return append([]string(nil), basicColumns...)
}

// DiagnosticColumns returns the diagnostic header.
func DiagnosticColumns() []string {
	return append([]string(nil), diagnosticColumns...)
}

// RecordRow renders rec in RecordColumns order. Absent values are empty.
func RecordRow(variant domain.Variant, rec domain.ParsedQuoteRecord) []string {
	if variant == domain.VariantFiltering {
		return []string{
			rec.TradeDate,
			rec.StockID,
			formatNullDecimal(rec.Open),
			formatNullDecimal(rec.High),
			formatNullDecimal(rec.Low),
			formatDecimal(rec.Close),
			rec.ChangeFlag,
			formatNullDecimal(rec.ChangeAmount),
			formatNullInt(rec.Volume),
			formatNullInt(rec.Amount),
			rec.StockName,
			rec.SourceFile,
			formatInt(int64(rec.LineNo)),
		}
	}
	return []string{
		rec.TradeDate,
		rec.StockID,
		formatDecimal(rec.Close),
		rec.ChangeFlag,
		rec.StockName,
		rec.SourceFile,
		formatInt(int64(rec.LineNo)),
	}
}

// DiagnosticRow renders d in DiagnosticColumns order.
func DiagnosticRow(d domain.DiagnosticRecord) []string {
	return []string{
		d.SourceFile,
		formatInt(int64(d.LineNo)),
		d.Reason.String(),
		d.Preview,
		d.RawValue,
	}
}

func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(PriceScale)
}

func formatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return formatDecimal(d.Decimal)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatNullInt(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return formatInt(n.Int64)
}
