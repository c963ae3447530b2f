package exporter

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"s38cli/pkg/contracts/domain"
)

func sampleRecord() domain.ParsedQuoteRecord {
	return domain.ParsedQuoteRecord{
		TradeDate:    "20200102",
		StockID:      "1240",
		StockName:    "台泥",
		Open:         decimal.NewNullDecimal(decimal.RequireFromString("39.5")),
		Low:          decimal.NewNullDecimal(decimal.RequireFromString("39.1")),
		Close:        decimal.RequireFromString("39.8"),
		ChangeFlag:   "+",
		ChangeAmount: decimal.NewNullDecimal(decimal.RequireFromString("0.3")),
		Volume:       sql.NullInt64{Int64: 1500, Valid: true},
		SourceFile:   "STKT2QUOTESN(0102).TXT",
		LineNo:       2,
	}
}

func TestRecordRow(t *testing.T) {
	tests := []struct {
		name    string
		variant domain.Variant
		want    []string
	}{
		{
			name:    "basic",
			variant: domain.VariantBasic,
			want:    []string{"20200102", "1240", "39.8000", "+", "台泥", "STKT2QUOTESN(0102).TXT", "2"},
		},
		{
			name:    "filtering leaves absent values empty",
			variant: domain.VariantFiltering,
			want: []string{
				"20200102", "1240", "39.5000", "", "39.1000", "39.8000", "+", "0.3000",
				"1500", "", "台泥", "STKT2QUOTESN(0102).TXT", "2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := RecordRow(tt.variant, sampleRecord())
			assert.Equal(t, tt.want, row)
			assert.Len(t, row, len(RecordColumns(tt.variant)))
		})
	}
}

func TestDiagnosticRow(t *testing.T) {
	row := DiagnosticRow(domain.DiagnosticRecord{
		SourceFile: "a.txt",
		LineNo:     7,
		Reason:     domain.RejectWith(domain.ReasonCloseOutOfBounds, "1234567.5"),
		Preview:    "001240 ...",
		RawValue:   "123456789",
	})
	assert.Equal(t, []string{"a.txt", "7", "close_out_of_bounds:1234567.5", "001240 ...", "123456789"}, row)
	assert.Len(t, row, len(DiagnosticColumns()))
}

func TestColumnsAreCopies(t *testing.T) {
	cols := RecordColumns(domain.VariantBasic)
	cols[0] = "changed"
	assert.Equal(t, "date", RecordColumns(domain.VariantBasic)[0])
}
