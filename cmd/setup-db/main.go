package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"finledger/internal/cli"
	"finledger/internal/config"
	applog "finledger/internal/log"
	"finledger/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentSetup)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Database setup failed", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	if cfg.DataBackend == "sqlite" {
		_, err := os.Stat(cfg.SQLiteDBPath)
		switch {
		case err == nil:
			if !cli.Confirm(os.Stdin, os.Stdout, "Database already exists. Overwrite?") {
				fmt.Println("Setup cancelled.")
				return nil
			}
			if err := storage.ResetSchema(cfg.SQLiteDBPath); err != nil {
				return fmt.Errorf("reset schema: %w", err)
			}
			logger.Info("Existing ledger cleared", applog.FieldPath, cfg.SQLiteDBPath)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("stat database: %w", err)
		}
	}

	res := cli.OpenStore(ctx, logger, cfg)
	defer res.Cleanup()

	cats, err := res.Store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	fmt.Println("Database created successfully!")
	fmt.Printf("Default categories available: %d\n", len(cats))
	fmt.Println("Ready to import transactions")
	return nil
}
