package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// ParsedQuoteRecord is one accepted S38 record line.
// Close is always present and inside the configured price bounds; every other
// numeric field is either present or explicitly absent.
type ParsedQuoteRecord struct {
	TradeDate    string              `json:"trade_date" db:"trade_date"`
	StockID      string              `json:"stock_id" db:"stock_id"`
	StockName    string              `json:"stock_name,omitempty" db:"stock_name"`
	Open         decimal.NullDecimal `json:"open_price" db:"open_price"`
	High         decimal.NullDecimal `json:"high_price" db:"high_price"`
	Low          decimal.NullDecimal `json:"low_price" db:"low_price"`
	Close        decimal.Decimal     `json:"closing_price" db:"closing_price"`
	ChangeFlag   string              `json:"change_flag,omitempty" db:"change_flag"`
	ChangeAmount decimal.NullDecimal `json:"change_amount" db:"change_amount"`
	Volume       sql.NullInt64       `json:"volume" db:"volume"` // thousands of shares
	Amount       sql.NullInt64       `json:"amount" db:"amount"` // thousands of currency units
	SourceFile   string              `json:"source_file" db:"source_file"`
	LineNo       int                 `json:"line_no" db:"line_no"`
}

// Variant selects which decoding rules and output columns apply.
type Variant string

const (
	// VariantBasic decodes identifier, name, close and change flag only.
	VariantBasic Variant = "basic"
	// VariantFiltering additionally decodes OHLC, change amount, volume and
	// amount, and filters instruments by id range and liquidity.
	VariantFiltering Variant = "filtering"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantBasic || v == VariantFiltering
}
