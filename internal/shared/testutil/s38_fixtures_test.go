package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS38Line_Bytes(t *testing.T) {
	line := S38Line{
		StockID:    "001240",
		StockName:  "台泥",
		Close:      "000000398000",
		ChangeFlag: "+",
	}.Bytes()

	require.Len(t, line, BasicLineLength)
	assert.Equal(t, "001240", string(line[0:6]))
	assert.Equal(t, Big5("台泥"), bytes.TrimRight(line[6:22], " "))
	// the close span is nine bytes wide, so longer text is cut
	assert.Equal(t, "000000398", string(line[49:58]))
	assert.Equal(t, "+", string(line[58:59]))
}

func TestS38Line_Filtering(t *testing.T) {
	line := S38Line{
		StockID:   "2330",
		Close:     Price("500"),
		Volume:    Count(1500, 9),
		Amount:    Count(750000, 12),
		Filtering: true,
	}.Bytes()

	require.Len(t, line, FilteringLineLength)
	assert.Equal(t, "000001500", string(line[77:86]))
	assert.Equal(t, "000000750000", string(line[95:107]))
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "000398000", Price("39.8"))
	assert.Equal(t, "000000100", Price("0.01"))
	assert.Equal(t, "999999999", Price("99999.9999"))
}

func TestQuoteFile(t *testing.T) {
	content := QuoteFile("header 20200102", []byte("a"), []byte("b"))
	assert.Equal(t, "header 20200102\r\na\r\nb\r\n", string(content))
}
