// Package shared holds helpers used across packages. Its testutil
// subpackage provides a buffered slog handler for asserting on log output
// and builders for S38 quote lines and files:
//
//	line := testutil.S38Line{StockID: "001240", StockName: "台泥", Close: testutil.Price("39.8")}.Bytes()
//	path := testutil.WriteQuoteFile(t, dir, "STKT2QUOTESN(0102).TXT", testutil.QuoteFile("20200102", line))
package shared
