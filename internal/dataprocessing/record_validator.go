package dataprocessing

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"s38cli/internal/config"
	"s38cli/pkg/contracts/domain"
)

// Outcome is the single result of classifying a line: exactly one of Record
// and Diagnostic is set.
type Outcome struct {
	Record     *domain.ParsedQuoteRecord
	Diagnostic *domain.DiagnosticRecord
}

// Accepted reports whether the line produced a record.
func (o Outcome) Accepted() bool { return o.Record != nil }

// RecordValidator applies the ordered line checks:
// length, extraction, identifier, close parse, close bounds and, for the
// filtering variant, volume and amount minimums. The first failing check
// decides the rejection reason.
type RecordValidator struct {
	cfg      config.DecodeConfig
	layout   *Layout
	slicer   *Slicer
	minPrice decimal.Decimal
	maxPrice decimal.Decimal
}

// NewRecordValidator captures cfg; later changes to the caller's copy have no
// effect.
func NewRecordValidator(cfg config.DecodeConfig, layout *Layout, slicer *Slicer) *RecordValidator {
	cfg.AcceptedIDRanges = append(config.IDRanges(nil), cfg.AcceptedIDRanges...)
	return &RecordValidator{
		cfg:      cfg,
		layout:   layout,
		slicer:   slicer,
		minPrice: decimal.NewFromFloat(cfg.MinPrice),
		maxPrice: decimal.NewFromFloat(cfg.MaxPrice),
	}
}

func (v *RecordValidator) filtering() bool {
	return v.cfg.Variant == domain.VariantFiltering
}

// Classify decodes and validates one line of a file whose trade date is
// tradeDate.
func (v *RecordValidator) Classify(line RawLine, tradeDate string) Outcome {
	if len(line.Bytes) < v.layout.MinLength() {
		return v.reject(line, domain.Reject(domain.ReasonLineTooShort), "")
	}

	// MinLength covers every field of a layout built by NewLayout; this
	// only fires for a layout whose checked length stops short of a field.
	fields, err := v.slicer.Extract(v.layout, line.Bytes)
	if err != nil {
		code := domain.ReasonSliceError
		if v.filtering() {
			code = domain.ReasonExtractionError
		}
		return v.reject(line, domain.RejectWith(code, err.Error()), "")
	}
	closeRaw := v.closeRaw(line.Bytes)

	stockID := fields[FieldStockID]
	if stockID == "" {
		return v.reject(line, domain.Reject(domain.ReasonEmptyStockID), closeRaw)
	}
	if v.filtering() && !v.acceptedID(stockID) {
		return v.reject(line, domain.Reject(domain.ReasonInvalidStockID), closeRaw)
	}

	closePrice, err := ParseImpliedDecimal(fields[FieldClose])
	if err != nil {
		return v.reject(line, domain.Reject(domain.ReasonCloseUnparseable), closeRaw)
	}
	if closePrice.LessThan(v.minPrice) || closePrice.GreaterThan(v.maxPrice) {
		return v.reject(line, domain.RejectWith(domain.ReasonCloseOutOfBounds, closePrice.String()), closeRaw)
	}

	rec := &domain.ParsedQuoteRecord{
		TradeDate:  tradeDate,
		StockID:    stockID,
		StockName:  fields[FieldStockName],
		Close:      closePrice,
		ChangeFlag: fields[FieldChangeFlag],
		SourceFile: line.File,
		LineNo:     line.LineNo,
	}

	if v.filtering() {
		volume := countField(fields, FieldVolume)
		if !volume.Valid || volume.Int64 < v.cfg.MinVolume {
			return v.reject(line, domain.RejectWith(domain.ReasonLowVolume, formatCount(volume)), closeRaw)
		}
		amount := countField(fields, FieldAmount)
		if !amount.Valid || amount.Int64 < v.cfg.MinAmount {
			return v.reject(line, domain.RejectWith(domain.ReasonLowAmount, formatCount(amount)), closeRaw)
		}
		rec.Volume = volume
		rec.Amount = amount
		rec.Open = v.priceAtLeastMin(fields[FieldOpen])
		rec.High = v.priceAtLeastMin(fields[FieldHigh])
		rec.Low = v.priceAtLeastMin(fields[FieldLow])
		rec.ChangeAmount = DecodeImpliedDecimal(fields[FieldChangeAmount])
	}

	if v.cfg.StripLeadingZeros {
		rec.StockID = stripLeadingZeros(rec.StockID)
	}
	return Outcome{Record: rec}
}

// acceptedID requires an all-digit identifier inside one of the accepted
// ranges.
func (v *RecordValidator) acceptedID(id string) bool {
	if digitsOnly(id) != id {
		return false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return false
	}
	return v.cfg.AcceptedIDRanges.Contains(n)
}

// priceAtLeastMin decodes an optional price; values under the minimum price
// are treated as absent.
func (v *RecordValidator) priceAtLeastMin(text string) decimal.NullDecimal {
	d := DecodeImpliedDecimal(text)
	if d.Valid && d.Decimal.LessThan(v.minPrice) {
		return decimal.NullDecimal{}
	}
	return d
}

func (v *RecordValidator) closeRaw(line []byte) string {
	f, ok := v.layout.Range(FieldClose)
	if !ok {
		return ""
	}
	return v.slicer.SliceRaw(line, f.Start, f.End)
}

func (v *RecordValidator) reject(line RawLine, reason domain.Rejection, closeRaw string) Outcome {
	return Outcome{Diagnostic: &domain.DiagnosticRecord{
		SourceFile: line.File,
		LineNo:     line.LineNo,
		Reason:     reason,
		Preview:    v.slicer.Preview(line.Bytes, v.cfg.PreviewLength),
		RawValue:   closeRaw,
	}}
}

func countField(fields DecodedFields, name string) sql.NullInt64 {
	text, ok := fields[name]
	if !ok {
		return sql.NullInt64{}
	}
	n, err := ParseCount(text)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func formatCount(n sql.NullInt64) string {
	if !n.Valid {
		return "none"
	}
	return strconv.FormatInt(n.Int64, 10)
}

func stripLeadingZeros(id string) string {
	if s := strings.TrimLeft(id, "0"); s != "" {
		return s
	}
	return "0"
}
