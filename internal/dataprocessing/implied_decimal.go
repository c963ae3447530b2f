package dataprocessing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// S38 9(5)V9(4): nine digits, the last four of them fractional.
const (
	impliedDigits = 9
	impliedScale  = 4
)

var (
	// ErrNoDigits marks a numeric field that carries no value at all.
	ErrNoDigits = errors.New("no value")
	// ErrMalformedNumber marks digits that cannot be represented.
	ErrMalformedNumber = errors.New("malformed number")
)

var impliedModulus = decimal.New(1, impliedDigits-impliedScale)

func digitsOnly(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if c := text[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ParseImpliedDecimal decodes a 9(5)V9(4) field. Non-digits are dropped,
// short input is left-padded with zeros and only the rightmost nine digits
// of long input count. Text without digits yields ErrNoDigits.
func ParseImpliedDecimal(text string) (decimal.Decimal, error) {
	digits := digitsOnly(text)
	if digits == "" {
		return decimal.Decimal{}, ErrNoDigits
	}
	if len(digits) > impliedDigits {
		digits = digits[len(digits)-impliedDigits:]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q: %w", text, ErrMalformedNumber)
	}
	return decimal.New(n, -impliedScale), nil
}

// DecodeImpliedDecimal is ParseImpliedDecimal with absence folded into an
// invalid NullDecimal.
func DecodeImpliedDecimal(text string) decimal.NullDecimal {
	d, err := ParseImpliedDecimal(text)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// EncodeImpliedDecimal renders d back into nine zero-padded digits. Digits
// beyond the field width are dropped the same way decoding drops them.
func EncodeImpliedDecimal(d decimal.Decimal) string {
	d = d.Abs().Truncate(impliedScale).Mod(impliedModulus)
	return fmt.Sprintf("%0*d", impliedDigits, d.Shift(impliedScale).IntPart())
}

// ParseCount decodes a thousands-denominated integer such as volume or
// amount.
func ParseCount(text string) (int64, error) {
	digits := digitsOnly(text)
	if digits == "" {
		return 0, ErrNoDigits
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", text, ErrMalformedNumber)
	}
	return n, nil
}

// DecodeCount is ParseCount with absence and overflow folded into an
// invalid value.
func DecodeCount(text string) (n int64, ok bool) {
	n, err := ParseCount(text)
	return n, err == nil
}
