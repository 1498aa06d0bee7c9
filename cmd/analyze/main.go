package main

import (
	"context"
	"fmt"
	"os"

	"finledger/internal/cli"
	"finledger/internal/config"
	applog "finledger/internal/log"
	"finledger/internal/report"
	"finledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentReport)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Analysis failed", applog.FieldError, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	res := cli.OpenStore(ctx, logger, cfg)
	defer res.Cleanup()

	analysis, err := services.NewAnalysisService(res.Store).Snapshot(ctx, cfg.TopExpensesLimit)
	if err != nil {
		return fmt.Errorf("analyze ledger: %w", err)
	}
	if err := report.NewPresenter().Render(os.Stdout, analysis); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
