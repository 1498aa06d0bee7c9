package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"finledger/internal/charts"
	"finledger/internal/cli"
	"finledger/internal/config"
	"finledger/internal/core"
	applog "finledger/internal/log"
	"finledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentCharts)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Chart generation failed", applog.FieldError, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	res := cli.OpenStore(ctx, logger, cfg)
	defer res.Cleanup()

	svc := services.NewAnalysisService(res.Store)

	var (
		monthly    []core.MonthlySummary
		categories []core.CategorySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		monthly, err = svc.MonthlySummary(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = svc.CategorySummary(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("summarize ledger: %w", err)
	}

	fmt.Println("Generating visualizations...")
	paths, err := charts.NewRenderer(cfg.ChartsDir).RenderAll(ctx, monthly, categories)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("Saved: %s\n", p)
	}
	if len(paths) == 0 {
		fmt.Println("No transactions to chart.")
		return nil
	}
	fmt.Printf("All visualizations generated. Check the '%s' folder to view them.\n", cfg.ChartsDir)
	return nil
}
