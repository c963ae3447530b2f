package domain

import (
	"fmt"
	"sort"
)

// ReasonCode is the enumerated cause attached to a rejected line or file.
type ReasonCode string

const (
	ReasonLineTooShort     ReasonCode = "line_too_short"
	ReasonSliceError       ReasonCode = "slice_error"
	ReasonExtractionError  ReasonCode = "extraction_error"
	ReasonEmptyStockID     ReasonCode = "empty_stock_id"
	ReasonInvalidStockID   ReasonCode = "invalid_stock_id"
	ReasonCloseUnparseable ReasonCode = "close_unparseable"
	ReasonCloseOutOfBounds ReasonCode = "close_out_of_bounds"
	ReasonLowVolume        ReasonCode = "low_volume"
	ReasonLowAmount        ReasonCode = "low_amount"
	ReasonFileReadError    ReasonCode = "file_read_error"
)

// Rejection is a reason code optionally parameterized with the offending value.
type Rejection struct {
	Code     ReasonCode `json:"code"`
	Value    string     `json:"value,omitempty"`
	HasValue bool       `json:"-"`
}

// Reject returns a rejection without a parameter.
func Reject(code ReasonCode) Rejection {
	return Rejection{Code: code}
}

// RejectWith returns a rejection carrying the offending value.
func RejectWith(code ReasonCode, value string) Rejection {
	return Rejection{Code: code, Value: value, HasValue: true}
}

// String renders the rejection as "code" or "code:value".
func (r Rejection) String() string {
	if !r.HasValue {
		return string(r.Code)
	}
	return fmt.Sprintf("%s:%s", r.Code, r.Value)
}

// DiagnosticRecord explains one rejected line, or a whole file when LineNo is 0.
type DiagnosticRecord struct {
	SourceFile string    `json:"file"`
	LineNo     int       `json:"line_no"`
	Reason     Rejection `json:"reason"`
	Preview    string    `json:"line_preview"`
	RawValue   string    `json:"close_raw"`
}

// IsFileLevel reports whether the diagnostic describes a whole-file failure.
func (d DiagnosticRecord) IsFileLevel() bool {
	return d.LineNo == 0
}

// ReasonCount pairs a reason code with its number of occurrences.
type ReasonCount struct {
	Code  ReasonCode `json:"code"`
	Count int        `json:"count"`
}

// ReasonCounts tallies diagnostics by reason code.
type ReasonCounts map[ReasonCode]int

// Add counts every diagnostic in diags.
func (c ReasonCounts) Add(diags []DiagnosticRecord) {
	for _, d := range diags {
		c[d.Reason.Code]++
	}
}

// Top returns the n most frequent codes, ties broken by code name.
// n <= 0 returns all of them.
func (c ReasonCounts) Top(n int) []ReasonCount {
	out := make([]ReasonCount, 0, len(c))
	for code, count := range c {
		out = append(out, ReasonCount{Code: code, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
