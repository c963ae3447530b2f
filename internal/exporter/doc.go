// Package exporter persists decoded quote records and their diagnostics.
//
// Every output format implements Sink:
//
// CSVSink: two CSV files, records and diagnostics, each with a header row and
// an optional UTF-8 BOM for Excel compatibility. Built on StreamWriter.
//
// XLSXSink: one workbook with a "quotes" and a "diagnostics" sheet, streamed
// row by row and saved on Close.
//
// SQLiteSink: one database with "quotes" and "diagnostics" tables, each batch
// inserted in its own transaction.
//
// MemorySink: keeps batches in memory, for tests and inspection.
//
// Example usage:
//
//	sink, err := exporter.NewSink(cfg.Output, cfg.Decode.Variant)
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	err = sink.WriteRecords(ctx, records)
package exporter
