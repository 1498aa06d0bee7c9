package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

func TestMemoryStoreInsertAndScan(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	inserts := []core.Transaction{
		{Date: core.NewDate(2024, 1, 5), Amount: decimal.NewFromInt(3000), Category: "Salary"},
		{Date: core.NewDate(2024, 2, 1), Amount: decimal.NewFromInt(-1200), Category: "Rent"},
		{Date: core.NewDate(2024, 1, 5), Amount: decimal.NewFromInt(-20), Category: "Dining Out"},
	}
	for i, tx := range inserts {
		id, err := s.Insert(ctx, tx)
		if err != nil || id != int64(i+1) {
			t.Fatalf("unexpected insert: id=%d err=%v", id, err)
		}
	}

	got, err := s.ScanAll(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	wantIDs := []int64{2, 3, 1}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d rows, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("row %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}

	// Returned slice is a copy.
	got[0].Category = "mutated"
	again, _ := s.ScanAll(ctx)
	if again[0].Category != "Rent" {
		t.Fatalf("store state leaked through ScanAll")
	}
}

func TestMemoryStoreRejectsZeroDate(t *testing.T) {
	s := New(nil)
	_, err := s.Insert(context.Background(), core.Transaction{Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	// No files -> defaults
	s := NewFromFiles(dir)
	cats, _ := s.ListCategories(context.Background())
	if len(cats) != len(core.DefaultCategories()) {
		t.Fatalf("expected defaults when files missing, got %v", cats)
	}

	content := "# name,type\nSalary,income\nRent,expense\nRent,expense\nPets\nBad,liability\n\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background())
	want := []core.Category{
		{Name: "Salary", Type: core.IncomeCategory},
		{Name: "Rent", Type: core.ExpenseCategory},
		{Name: "Pets", Type: core.ExpenseCategory},
	}
	if len(cats) != len(want) {
		t.Fatalf("unexpected cats: %v", cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("cat %d: expected %v, got %v", i, want[i], cats[i])
		}
	}
}
