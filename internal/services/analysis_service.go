package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finledger/internal/core"
	"finledger/internal/ledger"
	applog "finledger/internal/log"
)

// AnalysisService computes ledger views on demand. Nothing is cached: every
// call reads the store again.
type AnalysisService struct {
	store ledger.TransactionScanner
}

func NewAnalysisService(store ledger.TransactionScanner) *AnalysisService {
	return &AnalysisService{store: store}
}

func (s *AnalysisService) scan(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return txs, nil
}

// MonthlySummary returns one row per month present in the ledger, newest first.
func (s *AnalysisService) MonthlySummary(ctx context.Context) ([]core.MonthlySummary, error) {
	txs, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	return MonthlySummaries(txs), nil
}

// CategorySummary returns expense totals per category, largest first.
func (s *AnalysisService) CategorySummary(ctx context.Context) ([]core.CategorySummary, error) {
	txs, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	return CategorySummaries(txs), nil
}

// TopExpenses returns the limit largest expenses.
func (s *AnalysisService) TopExpenses(ctx context.Context, limit int) ([]core.TopExpense, error) {
	txs, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	return TopExpenses(txs, limit), nil
}

// OverallStats totals the whole ledger.
func (s *AnalysisService) OverallStats(ctx context.Context) (core.OverallStats, error) {
	txs, err := s.scan(ctx)
	if err != nil {
		return core.OverallStats{}, err
	}
	return ComputeOverallStats(txs), nil
}

// Snapshot computes every view for a report. The reads are independent and
// run concurrently.
func (s *AnalysisService) Snapshot(ctx context.Context, limit int) (core.Analysis, error) {
	a := core.Analysis{TopLimit: limit}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a.Monthly, err = s.MonthlySummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		a.Categories, err = s.CategorySummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		a.TopExpenses, err = s.TopExpenses(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		a.Stats, err = s.OverallStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Analysis{}, err
	}

	slog.DebugContext(ctx, "Ledger analysis computed",
		applog.FieldOperation, applog.OpAnalyze,
		applog.FieldDuration, time.Since(start).Milliseconds(),
		"months", len(a.Monthly),
		"categories", len(a.Categories),
		"top_expenses", len(a.TopExpenses),
		"transactions", a.Stats.TransactionCount)

	return a, nil
}
