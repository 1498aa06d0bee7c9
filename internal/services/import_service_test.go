package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/storage/memory"
)

// flakyWriter fails inserts for one category.
type flakyWriter struct {
	failCategory string
	inserted     []core.Transaction
}

func (w *flakyWriter) Insert(_ context.Context, t core.Transaction) (int64, error) {
	if t.Category == w.failCategory {
		return 0, core.ErrStore
	}
	w.inserted = append(w.inserted, t)
	return int64(len(w.inserted)), nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestImportFileValidRows(t *testing.T) {
	store := memory.New(core.DefaultCategories())
	svc := NewImportService(store, store)

	path := writeCSV(t, "date,amount,category,description\n"+
		"2024-01-05,3000,Salary,January pay\n"+
		"2024-01-10,-50,Groceries,\"Market, weekly\"\n"+
		"2024-02-01,-1200,Rent,Flat\n")

	res, err := svc.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 3 || res.Failed != 0 || len(res.UnknownCategories) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	txs, _ := store.ScanAll(context.Background())
	if len(txs) != 3 || txs[1].Description != "Market, weekly" {
		t.Fatalf("unexpected ledger %+v", txs)
	}
}

func TestImportMissingHeaderIsFatal(t *testing.T) {
	store := memory.New(nil)
	svc := NewImportService(store, nil)

	path := writeCSV(t, "date,amount,category\n2024-01-05,3000,Salary\n")
	res, err := svc.ImportFile(context.Background(), path)
	if !errors.Is(err, core.ErrSchema) || !errors.Is(err, core.ErrMissingHeader) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if !strings.Contains(err.Error(), "description") {
		t.Fatalf("error should name the missing header: %v", err)
	}
	if res.Total() != 0 {
		t.Fatalf("no rows may be processed, got %+v", res)
	}
	txs, _ := store.ScanAll(context.Background())
	if len(txs) != 0 {
		t.Fatalf("expected zero rows inserted, got %d", len(txs))
	}
}

func TestImportEmptyFileIsSchemaError(t *testing.T) {
	svc := NewImportService(memory.New(nil), nil)
	_, err := svc.Import(context.Background(), strings.NewReader(""))
	if !errors.Is(err, core.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestImportInvalidAmountSkipsRow(t *testing.T) {
	store := memory.New(nil)
	svc := NewImportService(store, nil)

	path := writeCSV(t, "date,amount,category,description\n"+
		"2024-01-05,3000,Salary,pay\n"+
		"2024-01-06,abc,Groceries,bad\n"+
		"2024-01-07,-20,Groceries,ok\n")

	res, err := svc.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Failed != 1 || res.Succeeded != res.Total()-1 || res.Total() != 3 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0].Row != 3 || !errors.Is(res.Errors[0], core.ErrInvalidAmount) {
		t.Fatalf("unexpected row errors %+v", res.Errors)
	}
}

func TestImportRejectsOutOfRangeAmounts(t *testing.T) {
	store := memory.New(nil)
	svc := NewImportService(store, nil)

	input := "date,amount,category,description\n" +
		"2024-01-05,1e99999999,Salary,huge\n" +
		"2024-01-06,1e-99999999,Other,tiny\n" +
		"2024-01-07,\"1,234\",Groceries,thousands\n" +
		"2024-01-08,-20,Groceries,ok\n"

	res, err := svc.Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 1 || res.Failed != 3 {
		t.Fatalf("unexpected counts %+v", res)
	}
	for i, row := range []int{2, 3, 4} {
		if res.Errors[i].Row != row || !errors.Is(res.Errors[i], core.ErrInvalidAmount) {
			t.Fatalf("expected invalid amount on row %d, got %+v", row, res.Errors[i])
		}
	}
	txs, _ := store.ScanAll(context.Background())
	if len(txs) != 1 || !txs[0].Amount.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("unexpected ledger %+v", txs)
	}
}

func TestImportCountsInvalidDatesAndStoreErrors(t *testing.T) {
	w := &flakyWriter{failCategory: "Broken"}
	svc := NewImportService(w, nil)

	input := "\ufeffdescription, amount ,date,category,extra\n" +
		"pay,3000,2024-01-05,Salary,x\n" +
		"late,-5,2024/01/06,Other,x\n" +
		"boom,-9,2024-01-07,Broken,x\n" +
		"short,-1\n" +
		"ok,-2,2024-01-08,Other\n"

	res, err := svc.Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 2 || res.Failed != 3 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if !errors.Is(res.Errors[0], core.ErrInvalidDate) || res.Errors[0].Row != 3 {
		t.Fatalf("expected invalid date on row 3, got %+v", res.Errors[0])
	}
	if !errors.Is(res.Errors[1], core.ErrStore) || res.Errors[1].Row != 4 {
		t.Fatalf("expected store error on row 4, got %+v", res.Errors[1])
	}
	if res.Errors[2].Row != 5 || !errors.Is(res.Errors[2], core.ErrValidation) {
		t.Fatalf("expected validation error on short row 5, got %+v", res.Errors[2])
	}
	if len(w.inserted) != 2 || w.inserted[1].Description != "ok" {
		t.Fatalf("unexpected inserts %+v", w.inserted)
	}
}

func TestImportReportsUnknownCategories(t *testing.T) {
	store := memory.New(core.DefaultCategories())
	svc := NewImportService(store, store)

	input := "date,amount,category,description\n" +
		"2024-01-05,-10,Grocerys,typo\n" +
		"2024-01-06,-10,Grocerys,typo again\n" +
		"2024-01-07,-10,Groceries,fine\n" +
		"2024-01-08,-10,Pets,new\n"

	res, err := svc.Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 4 {
		t.Fatalf("unknown categories must still be imported, got %+v", res)
	}
	if len(res.UnknownCategories) != 2 || res.UnknownCategories[0] != "Grocerys" || res.UnknownCategories[1] != "Pets" {
		t.Fatalf("unexpected unknown categories %v", res.UnknownCategories)
	}
}

func TestImportFileNotFound(t *testing.T) {
	svc := NewImportService(memory.New(nil), nil)
	_, err := svc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportStopsOnCancelledContext(t *testing.T) {
	svc := NewImportService(memory.New(nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, strings.NewReader("date,amount,category,description\n2024-01-01,1,Salary,x\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
