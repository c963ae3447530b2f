package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"s38cli/internal/config"
	"s38cli/internal/dataprocessing"
	"s38cli/internal/exporter"
	"s38cli/internal/files"
	"s38cli/internal/infrastructure"
	transport "s38cli/internal/transport/http"
	"s38cli/pkg/contracts/domain"
)

type extractFlags struct {
	root        string
	year        string
	format      string
	records     string
	diagnostics string
	variant     string
	workers     int
	batchSize   int
	maxPerDir   int
	metricsAddr string
}

func newExtractCmd(c *cli) *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Discover quote files, decode them and write the results",
		Example: `  s38extract extract --root ./data --year 2020
  s38extract extract --variant filtering --format sqlite --records quotes.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			return c.runExtract(cmd.Context(), cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.root, "root", "", "input root holding the year folders")
	fl.StringVar(&f.year, "year", "", "only decode this year folder")
	fl.StringVar(&f.format, "format", "", "output format: csv, xlsx or sqlite")
	fl.StringVar(&f.records, "records", "", "records output path")
	fl.StringVar(&f.diagnostics, "diagnostics", "", "diagnostics output path (csv only)")
	fl.StringVar(&f.variant, "variant", "", "decoding variant: basic or filtering")
	fl.IntVar(&f.workers, "workers", 0, "number of files decoded concurrently (0 = GOMAXPROCS)")
	fl.IntVar(&f.batchSize, "batch-size", 0, "rows buffered before a flush")
	fl.IntVar(&f.maxPerDir, "max-files", 0, "at most this many files per year folder (0 = all)")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /health, /metrics and /api/summary on this address")
	return cmd
}

// apply overlays the flags that were set on cfg and revalidates it.
func (f extractFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("variant") {
		cfg.UseVariant(domain.Variant(f.variant))
	}
	if changed("root") {
		cfg.Discovery.Root = f.root
	}
	if changed("year") {
		cfg.Discovery.YearOnly = f.year
	}
	if changed("max-files") {
		cfg.Discovery.MaxFilesPerDir = f.maxPerDir
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	if changed("records") {
		cfg.Output.RecordsPath = f.records
	}
	if changed("diagnostics") {
		cfg.Output.DiagnosticsPath = f.diagnostics
	}
	if changed("workers") {
		cfg.Output.Workers = f.workers
	}
	if changed("batch-size") {
		cfg.Output.BatchSize = f.batchSize
	}
	if changed("metrics-addr") {
		cfg.Server.Addr = f.metricsAddr
	}
	return cfg.Validate()
}

func (c *cli) runExtract(ctx context.Context, cfg *config.Config) (err error) {
	logger, err := c.setupLogger(cfg)
	if err != nil {
		return err
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if serr := providers.Shutdown(shutdownCtx); serr != nil {
			logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", serr.Error()))
		}
	}()

	inputs, err := files.NewDiscovery(logger).FindQuoteFiles(
		cfg.Discovery.Root, cfg.Discovery.YearOnly, cfg.Discovery.Prefixes, cfg.Discovery.MaxFilesPerDir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		logger.WarnContext(ctx, "No quote files found",
			slog.String("root", cfg.Discovery.Root),
			slog.String("year_only", cfg.Discovery.YearOnly))
	}

	manager := files.NewManager("")
	if cfg.Output.RecordsPath, err = manager.PrepareOutput(cfg.Output.RecordsPath); err != nil {
		return err
	}
	if cfg.Output.Format == "csv" {
		if cfg.Output.DiagnosticsPath, err = manager.PrepareOutput(cfg.Output.DiagnosticsPath); err != nil {
			return err
		}
	}

	sink, err := exporter.NewSink(cfg.Output, cfg.Decode.Variant)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sink.Close())
	}()

	opts := []dataprocessing.RunnerOption{dataprocessing.WithLogger(logger)}
	if providers.Meter != nil {
		metrics, merr := infrastructure.CreateDecodeMetrics(providers.Meter)
		if merr != nil {
			return merr
		}
		opts = append(opts, dataprocessing.WithMetrics(metrics))
	}
	runner, err := dataprocessing.NewRunner(cfg, sink, opts...)
	if err != nil {
		return err
	}

	if cfg.Server.Addr != "" {
		srv := transport.NewServer(runner, providers.PrometheusHTTP, logger)
		if err := srv.Start(cfg.Server); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logger.ErrorContext(ctx, "Status server shutdown failed", slog.String("error", serr.Error()))
			}
		}()
	}

	summary, runErr := runner.Run(ctx, inputs)
	c.printSummary(cfg, summary)
	return runErr
}

func (c *cli) printSummary(cfg *config.Config, s dataprocessing.RunSummary) {
	fmt.Fprintf(c.out, "Variant:          %s\n", s.Variant)
	fmt.Fprintf(c.out, "Files processed:  %d (failed %d, skipped %d)\n", s.FilesProcessed, s.FilesFailed, s.FilesSkipped)
	fmt.Fprintf(c.out, "Data lines:       %d\n", s.DataLines)
	fmt.Fprintf(c.out, "Accepted:         %d\n", s.Accepted)
	fmt.Fprintf(c.out, "Rejected:         %d (%.2f%%)\n", s.Rejected, s.RejectRatio()*100)
	for _, rc := range s.TopReasons(10) {
		fmt.Fprintf(c.out, "  %-22s %d\n", rc.Code, rc.Count)
	}
	fmt.Fprintf(c.out, "Records written:  %s\n", cfg.Output.RecordsPath)
	if cfg.Output.Format == "csv" {
		fmt.Fprintf(c.out, "Diagnostics:      %s\n", cfg.Output.DiagnosticsPath)
	}
	fmt.Fprintf(c.out, "Duration:         %s\n", s.Duration().Round(time.Millisecond))
}
