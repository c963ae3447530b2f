package main

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"s38cli/internal/config"
	"s38cli/internal/dataprocessing"
	apperrors "s38cli/internal/errors"
	"s38cli/pkg/contracts/domain"
)

func newInspectCmd(c *cli) *cobra.Command {
	var (
		lines   int
		variant string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Dump the first record lines of a quote file field by field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("variant") {
				cfg.UseVariant(domain.Variant(variant))
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			enc, err := config.ResolveEncoding(cfg.Decode.Encoding)
			if err != nil {
				return err
			}
			slicer := dataprocessing.NewSlicer(enc)
			layout := dataprocessing.LayoutFor(cfg.Decode.Variant)
			validator := dataprocessing.NewRecordValidator(cfg.Decode, layout, slicer)

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return apperrors.NewStorageError("failed to read quote file", err).WithContext("path", path)
			}
			desc := domain.NewFileDescriptor(domain.NewFileInput(path))
			desc.TradeDate = dataprocessing.DefaultDateResolver(slicer, cfg.Decode.ValidateCalendarDates).
				Resolve(cmd.Context(), desc)

			fmt.Fprintf(c.out, "File:       %s\n", desc.Name)
			fmt.Fprintf(c.out, "Trade date: %s\n", desc.TradeDate)
			fmt.Fprintf(c.out, "Variant:    %s (min length %d)\n", cfg.Decode.Variant, layout.MinLength())

			shown := 0
			for i, raw := range bytes.Split(data, []byte("\n")) {
				if i < dataprocessing.HeaderLines {
					continue
				}
				raw = bytes.TrimSuffix(raw, []byte("\r"))
				if len(raw) == 0 {
					continue
				}
				if shown == lines {
					break
				}
				shown++
				c.dumpLine(slicer, layout, validator, dataprocessing.RawLine{File: desc.Name, LineNo: i + 1, Bytes: raw}, desc.TradeDate)
			}
			if shown == 0 {
				fmt.Fprintln(c.out, "\nNo data lines.")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 5, "number of data lines to dump")
	cmd.Flags().StringVar(&variant, "variant", "", "decoding variant: basic or filtering")
	return cmd
}

func (c *cli) dumpLine(slicer *dataprocessing.Slicer, layout *dataprocessing.Layout, v *dataprocessing.RecordValidator, line dataprocessing.RawLine, tradeDate string) {
	fmt.Fprintf(c.out, "\nLine %d (%d bytes)\n", line.LineNo, len(line.Bytes))

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, f := range layout.Fields() {
		fmt.Fprintf(tw, "  %s\t[%d:%d]\t%q\n", f.Name, f.Start, f.End, slicer.SliceRaw(line.Bytes, f.Start, f.End))
	}
	if r, ok := layout.Range(dataprocessing.FieldClose); ok {
		closeText := slicer.Slice(line.Bytes, r.Start, r.End)
		if d, err := dataprocessing.ParseImpliedDecimal(closeText); err == nil {
			fmt.Fprintf(tw, "  decoded close\t\t%s\n", d.StringFixed(4))
		} else {
			fmt.Fprintf(tw, "  decoded close\t\t(%v)\n", err)
		}
	}
	tw.Flush()

	out := v.Classify(line, tradeDate)
	if out.Accepted() {
		fmt.Fprintf(c.out, "  => accepted %s close=%s\n", out.Record.StockID, out.Record.Close.StringFixed(4))
		return
	}
	fmt.Fprintf(c.out, "  => rejected %s\n", out.Diagnostic.Reason)
}
