package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"finledger/internal/cli"
	"finledger/internal/config"
	"finledger/internal/core"
	applog "finledger/internal/log"
	"finledger/internal/services"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: import <transactions.csv>")
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, logger, cfg, os.Args[1]); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			fmt.Fprintf(os.Stderr, "Error: File '%s' not found.\n", os.Args[1])
		case errors.Is(err, core.ErrSchema):
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Error("Import failed", applog.FieldError, err, applog.FieldPath, os.Args[1])
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config, path string) error {
	res := cli.OpenStore(ctx, logger, cfg)
	defer res.Cleanup()

	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend selected, imported rows are discarded on exit")
	}

	svc := services.NewImportService(res.Store, res.Store)
	result, err := svc.ImportFile(ctx, path)
	if err != nil {
		return err
	}

	for _, rowErr := range result.Errors {
		fmt.Printf("Row %d: %v\n", rowErr.Row, rowErr.Err)
	}
	fmt.Println()
	fmt.Println("Import complete!")
	fmt.Printf("  Successfully imported: %d transactions\n", result.Succeeded)
	if result.Failed > 0 {
		fmt.Printf("  Failed: %d transactions\n", result.Failed)
	}
	for _, c := range result.UnknownCategories {
		fmt.Printf("  Warning: category %q is not in the category list\n", c)
	}
	return nil
}
