package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s38cli/internal/config"
	"s38cli/internal/shared/testutil"
)

func big5Slicer(t *testing.T) *Slicer {
	t.Helper()
	enc, err := config.ResolveEncoding("cp950")
	require.NoError(t, err)
	return NewSlicer(enc)
}

func TestSlicer_Slice(t *testing.T) {
	s := big5Slicer(t)
	line := append([]byte("001240"), testutil.Big5("台泥      ")...)

	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{"ascii", 0, 6, "001240"},
		{"big5 text trimmed", 6, 16, "台泥"},
		{"range past end truncated", 4, 100, "40台泥"},
		{"range fully past end", 50, 60, ""},
		{"inverted", 5, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Slice(line, tt.start, tt.end))
		})
	}
}

func TestSlicer_InvalidBytesBecomePlaceholder(t *testing.T) {
	s := big5Slicer(t)
	// 0xFF is never a valid Big5 lead byte
	got := s.Slice([]byte{'A', 0xFF, 'B'}, 0, 3)
	assert.Equal(t, "A�B", got)

	// a lead byte cut off by the range end
	lead := testutil.Big5("台")[:1]
	assert.Contains(t, s.Slice(append([]byte("X"), lead...), 0, 2), "�")
}

func TestSlicer_Preview(t *testing.T) {
	s := big5Slicer(t)
	line := append(testutil.Big5("台泥台泥"), []byte("abc")...)

	assert.Equal(t, "台泥", s.Preview(line, 2))
	assert.Equal(t, "台泥台泥abc", s.Preview(line, 200))
	assert.Equal(t, "", s.Preview(line, 0))
}

func TestSlicer_Extract(t *testing.T) {
	s := big5Slicer(t)
	line := testutil.S38Line{
		StockID:    "001240",
		StockName:  "台泥",
		Close:      testutil.Price("39.8"),
		ChangeFlag: "+",
	}.Bytes()

	fields, err := s.Extract(QuoteLayout(), line)
	require.NoError(t, err)
	assert.Equal(t, "001240", fields[FieldStockID])
	assert.Equal(t, "台泥", fields[FieldStockName])
	assert.Equal(t, "000398000", fields[FieldClose])
	assert.Equal(t, "", fields[FieldOpen])
	assert.Equal(t, "+", fields[FieldChangeFlag])

	_, err = s.Extract(FilteringLayout(), line)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldRange))
}
