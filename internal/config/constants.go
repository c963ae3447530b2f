package config

import "s38cli/pkg/contracts"

// Application constants
const (
	// Application Info
	AppName    = "s38extract"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable (S38_DECODE_MIN_PRICE, ...)
	EnvPrefix = "S38"

	// Decoding defaults
	DefaultEncoding      = "cp950"
	DefaultMinPrice      = 0.01
	DefaultMaxPrice      = 1_000_000.0
	DefaultMinVolume     = 100  // thousands of shares
	DefaultMinAmount     = 1000 // thousands of currency units
	DefaultPreviewLength = 200

	// Output defaults
	DefaultRecordsPath     = "stock_prices.csv"
	DefaultDiagnosticsPath = "stock_prices_debug.csv"
	DefaultBatchSize       = 50_000
)
