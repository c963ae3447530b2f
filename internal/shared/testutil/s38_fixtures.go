package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/traditionalchinese"
)

// S38 record widths.
const (
	BasicLineLength     = 59
	FilteringLineLength = 107
)

// S38Line describes one fixed-width quote line. Numeric fields hold the raw
// field text; use Price and Count to produce well-formed values. Text is
// Big5 encoded, left aligned and space padded to the field width.
type S38Line struct {
	StockID      string
	StockName    string
	Open         string
	High         string
	Low          string
	Close        string
	ChangeFlag   string
	ChangeAmount string
	Volume       string
	Amount       string
	// Filtering pads the line to the filtering layout length.
	Filtering bool
}

type fieldSpan struct{ start, end int }

var (
	spanStockID      = fieldSpan{0, 6}
	spanStockName    = fieldSpan{6, 22}
	spanOpen         = fieldSpan{22, 31}
	spanHigh         = fieldSpan{31, 40}
	spanLow          = fieldSpan{40, 49}
	spanClose        = fieldSpan{49, 58}
	spanChangeFlag   = fieldSpan{58, 59}
	spanChangeAmount = fieldSpan{59, 68}
	spanVolume       = fieldSpan{77, 86}
	spanAmount       = fieldSpan{95, 107}
)

// Bytes renders the line without a line terminator.
func (l S38Line) Bytes() []byte {
	n := BasicLineLength
	if l.Filtering {
		n = FilteringLineLength
	}
	buf := bytes.Repeat([]byte{' '}, n)

	put(buf, spanStockID, l.StockID)
	put(buf, spanStockName, l.StockName)
	put(buf, spanOpen, l.Open)
	put(buf, spanHigh, l.High)
	put(buf, spanLow, l.Low)
	put(buf, spanClose, l.Close)
	put(buf, spanChangeFlag, l.ChangeFlag)
	if l.Filtering {
		put(buf, spanChangeAmount, l.ChangeAmount)
		put(buf, spanVolume, l.Volume)
		put(buf, spanAmount, l.Amount)
	}
	return buf
}

func put(buf []byte, span fieldSpan, text string) {
	if text == "" || span.start >= len(buf) {
		return
	}
	encoded, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(text))
	if err != nil {
		encoded = []byte(text)
	}
	end := span.end
	if end > len(buf) {
		end = len(buf)
	}
	copy(buf[span.start:end], encoded)
}

// Price renders a decimal such as "39.8" as the nine digit implied-decimal
// text "000398000".
func Price(value string) string {
	d := decimal.RequireFromString(value)
	return fmt.Sprintf("%09d", d.Shift(4).IntPart())
}

// Count renders n right aligned in a field of width digits.
func Count(n int64, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// Big5 encodes text the way quote files store it.
func Big5(text string) []byte {
	b, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(text))
	if err != nil {
		panic(err)
	}
	return b
}

// QuoteFile joins a header line and record lines with CRLF endings.
func QuoteFile(header string, lines ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write(Big5(header))
	buf.WriteString("\r\n")
	for _, l := range lines {
		buf.Write(l)
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// WriteQuoteFile writes content to dir/name, creating dir, and returns the
// path.
func WriteQuoteFile(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
