// Package files locates S38 quote files and prepares output paths.
//
// Quote files live in four-digit year folders under an input root:
//
//	root/
//	  2019/STKWQUOTES(1231).TXT
//	  2020/STKT2QUOTESN(0102).TXT
//
// Discovery walks only those year folders and matches file names by
// case-insensitive prefix. Manager resolves output paths against a base
// directory and creates missing folders.
//
// Example usage:
//
//	inputs, err := files.NewDiscovery(logger).
//	    FindQuoteFiles(cfg.Discovery.Root, cfg.Discovery.YearOnly, cfg.Discovery.Prefixes, 0)
//
//	path, err := files.NewManager("").PrepareOutput(cfg.Output.RecordsPath)
package files
