// Package dataprocessing decodes fixed-width S38 quote files into typed
// records and rejection diagnostics.
//
// # Architecture
//
// A file passes through four components:
//
//  1. DateResolver: picks the trade date from the header, the file name tag
//     or the enclosing year directory, falling back to 19700101
//  2. Slicer: decodes the legacy byte encoding and cuts byte ranges out of
//     a record line according to a Layout
//  3. RecordValidator: turns one line into either an accepted record or a
//     single diagnostic, applying the basic or filtering rules
//  4. FileProcessor: drops the header line, skips blank lines and classifies
//     the rest
//
// The Runner fans files out over a bounded worker pool and merges results
// in submission order, so the output does not depend on the worker count.
// Merged rows are flushed to an exporter.Sink in batches.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	sink, err := exporter.NewSink(cfg.Output, cfg.Decode.Variant)
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	runner, err := dataprocessing.NewRunner(cfg, sink)
//	if err != nil {
//	    return err
//	}
//	summary, err := runner.Run(ctx, inputs)
//
// Prices are 9(5)V9(4) implied-decimal fields and are kept as
// decimal.Decimal end to end.
package dataprocessing
