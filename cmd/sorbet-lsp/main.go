// Command sorbet-lsp runs the incremental type-checker front-end's language
// server over stdio, or performs a one-shot analysis of a file list from
// the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alloy/sorbet/internal/ast"
	"github.com/alloy/sorbet/internal/config"
	"github.com/alloy/sorbet/internal/diagnostics"
	"github.com/alloy/sorbet/internal/gs"
	"github.com/alloy/sorbet/internal/logging"
	"github.com/alloy/sorbet/internal/lsp"
	"github.com/alloy/sorbet/internal/pipeline"
	"github.com/alloy/sorbet/internal/rewriter"
	"github.com/alloy/sorbet/internal/telemetry"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sorbet-lsp",
	Short: "An incremental, IDE-facing type-checker front end",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server over stdio",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Run one slow-path analysis over the given files and print diagnostics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults applied if omitted)")
	rootCmd.AddCommand(serveCmd, checkCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDriver() *pipeline.Driver {
	indexer := pipeline.NewDefaultIndexer()
	indexer.Rewriter = &rewriter.CommandRewriter{
		ClassName:  cfg.Rewriter.ClassName,
		ModuleName: cfg.Rewriter.ModuleName,
		MethodName: cfg.Rewriter.MethodName,
	}

	var kv pipeline.KVStore
	if cfg.Store.Dir != "" {
		store, err := pipeline.OpenBadgerKVStore(cfg.Store.Dir)
		if err != nil {
			// Fall back to an in-memory store rather than fail the whole
			// process over a memoization cache that can't open.
			kv = pipeline.NewMemoryKVStore()
		} else {
			kv = store
		}
	} else {
		kv = pipeline.NewMemoryKVStore()
	}

	q := diagnostics.NewQueue()
	driver := pipeline.NewDriver(indexer, pipeline.DefaultResolver{}, pipeline.DefaultTypechecker{Queue: q}, kv, cfg.Workers)
	driver.Queue = q
	return driver
}

func newLogger() *logging.Logger {
	level := logging.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: cfg.Logging.Service,
		JSON:    cfg.Logging.JSON,
		Quiet:   cfg.Logging.Quiet,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	defer logger.Close()

	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.ServiceName = cfg.Logging.Service
	if !cfg.Metrics.Enabled {
		telemetryCfg.MetricsAddr = ""
	} else if cfg.Metrics.Addr != "" {
		telemetryCfg.MetricsAddr = cfg.Metrics.Addr
	}
	shutdownTelemetry, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer shutdownTelemetry(context.Background())

	driver := newDriver()
	defer driver.KV.Close()
	transport := lsp.NewTransport(os.Stdin, os.Stdout)
	dispatcher := lsp.NewDispatcher(transport, driver, logger)

	logger.Infof("sorbet-lsp ready, reading requests from stdin")
	if err := dispatcher.Run(ctx); err != nil {
		logger.Errorf("dispatcher loop ended: %v", err)
		return err
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	driver := newDriver()
	driver.Opts.InputFileNames = args

	if err := driver.ReIndex(ctx, true); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}
	finalGs, err := driver.SlowPath(ctx, nil)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}
	driver.Accumulator.Drain(driver.Queue, func(ref ast.FileRef) bool {
		f := finalGs.File(ref)
		return f == nil || f.Type == gs.TombStone
	})

	exitCode := 0
	for _, ref := range driver.Accumulator.TakeUpdated() {
		name := "?"
		if idx := int(ref) - 1; idx >= 0 && idx < len(args) {
			name = args[idx]
		}
		for _, d := range driver.Accumulator.ForFile(ref) {
			fmt.Printf("%s:%d: [%s] %s\n", name, d.Class.Code, d.Class.Name, d.Formatted)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
