package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"s38cli/internal/config"
	"s38cli/internal/infrastructure"
	"s38cli/pkg/contracts"
)

// cli carries the state shared by the subcommands.
type cli struct {
	out        io.Writer
	logger     *slog.Logger
	configPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&cli{out: os.Stdout})
	err := root.ExecuteContext(ctx)
	_ = infrastructure.CloseLogFile()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Decode fixed-width S38 quote files into tabular data",
		Long: `s38extract reads legacy fixed-width S38 daily quote files laid out as
<root>/<yyyy>/STKT2QUOTESN(mmdd).TXT, decodes every record line and writes
the accepted records plus one diagnostic per rejected line to CSV, XLSX or
SQLite.`,
		SilenceUsage: true,
	}
	root.SetOut(c.out)
	root.SetErr(c.out)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to the YAML config file")

	root.AddCommand(newExtractCmd(c), newInspectCmd(c), newVersionCmd(c))
	return root
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.out, contracts.GetFullVersionString(config.AppName))
		},
	}
}

// loadConfig reads the config file and environment.
func (c *cli) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// setupLogger installs the process logger unless one was injected.
func (c *cli) setupLogger(cfg *config.Config) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}
