package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/app"
	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
	"github.com/joseph-ayodele/vetting-tracker/internal/pipeline"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config")
		sqlitePath = flag.String("sqlite", "", "use a local SQLite file instead of DB_URL")
		financeDir = flag.String("finance-dir", "", "directory of finance flow documents")
		gmDir      = flag.String("approval-dir", "", "directory of GM approval documents")
		out        = flag.String("out", "", "output XLSX file path (defaults next to the first input directory)")
	)
	flag.Parse()

	if *financeDir == "" && *gmDir == "" {
		printError("Error: at least one of --finance-dir or --approval-dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		first := *financeDir
		if first == "" {
			first = *gmDir
		}
		*out = filepath.Join(filepath.Dir(filepath.Clean(first)), "vetting-delays.xlsx")
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *sqlitePath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = repository.SQLiteDSN(*sqlitePath)
	}
	if err := cfg.ValidateExtraction(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var total pipeline.DirStats
	for _, src := range []struct {
		dir  string
		kind constants.DocumentKind
	}{
		{*financeDir, constants.FinanceFlow},
		{*gmDir, constants.Approval},
	} {
		if src.dir == "" {
			continue
		}
		logger.Info("batch.ingest.start", "dir", src.dir, "kind", src.kind)
		results, stats, err := pipeline.IngestDirectory(ctx, a.Processor, src.dir, src.kind, nil)
		if err != nil {
			logger.Error("failed to ingest directory", "dir", src.dir, "error", err)
			os.Exit(1)
		}
		for _, r := range results {
			if r.Err != "" {
				logger.Warn("batch.file.failed", "path", r.Path, "error", r.Err)
			}
		}
		logger.Info("batch.ingest.done",
			"dir", src.dir,
			"scanned", stats.Scanned,
			"matched", stats.Matched,
			"succeeded", stats.Succeeded,
			"failed", stats.Failed)
		total.Scanned += stats.Scanned
		total.Matched += stats.Matched
		total.Succeeded += stats.Succeeded
		total.Failed += stats.Failed
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := a.Export.ExportDelaysXLSX(ctx)
	if err != nil {
		logger.Error("failed to export delays", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files scanned: %d\n", total.Scanned)
	fmt.Printf("- Files processed: %d\n", total.Succeeded)
	fmt.Printf("- Failures: %d\n", total.Failed)
	fmt.Printf("- Output: %s\n", *out)
}
