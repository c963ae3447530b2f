package dataprocessing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImpliedDecimal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"nine digits", "000398000", "39.8", nil},
		{"twelve digits keep rightmost nine", "000000398000", "39.8", nil},
		{"short is left padded", "398000", "39.8", nil},
		{"single digit", "1", "0.0001", nil},
		{"zero is a value", "000000000", "0", nil},
		{"non digits stripped", " 00 0398.000 ", "39.8", nil},
		{"maximum", "999999999", "99999.9999", nil},
		{"overflow digits dropped", "1999999999", "99999.9999", nil},
		{"all spaces", "         ", "", ErrNoDigits},
		{"empty", "", "", ErrNoDigits},
		{"letters only", "N/A", "", ErrNoDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseImpliedDecimal(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, DecodeImpliedDecimal(tt.in).Valid)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.Equal(t, -int32(impliedScale), got.Exponent())
		})
	}
}

func TestParseImpliedDecimal_ClosingPrice(t *testing.T) {
	got, err := ParseImpliedDecimal("000000398000")
	require.NoError(t, err)
	assert.Equal(t, "39.8000", got.StringFixed(4))
}

func TestImpliedDecimal_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(38))
	samples := []int64{0, 1, 9999, 10000, 999999999}
	for i := 0; i < 2000; i++ {
		samples = append(samples, rng.Int63n(1_000_000_000))
	}

	for _, n := range samples {
		digits := fmt.Sprintf("%09d", n)
		d, err := ParseImpliedDecimal(digits)
		require.NoError(t, err, digits)
		assert.Equal(t, digits, EncodeImpliedDecimal(d))
	}
}

func TestImpliedDecimal_OnlyRightmostNineDigitsCount(t *testing.T) {
	rng := rand.New(rand.NewSource(59))
	for i := 0; i < 500; i++ {
		tail := fmt.Sprintf("%09d", rng.Int63n(1_000_000_000))
		prefix := fmt.Sprintf("%d", rng.Int63n(1_000_000))

		want, err := ParseImpliedDecimal(tail)
		require.NoError(t, err)
		got, err := ParseImpliedDecimal(prefix + tail)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%s%s", prefix, tail)
	}
}

func TestEncodeImpliedDecimal(t *testing.T) {
	assert.Equal(t, "000398000", EncodeImpliedDecimal(decimal.RequireFromString("39.8")))
	assert.Equal(t, "000000001", EncodeImpliedDecimal(decimal.RequireFromString("0.0001")))
	assert.Equal(t, "000000000", EncodeImpliedDecimal(decimal.RequireFromString("100000")))
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{"000001500", 1500, nil},
		{" 1,500 ", 1500, nil},
		{"0", 0, nil},
		{"", 0, ErrNoDigits},
		{"   ", 0, ErrNoDigits},
		{"99999999999999999999", 0, ErrMalformedNumber},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := ParseCount(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				_, ok := DecodeCount(tt.in)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
