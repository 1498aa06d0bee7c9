package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
	applog "finledger/internal/log"
)

// RequiredHeaders lists the columns an import file must declare.
var RequiredHeaders = []string{"date", "amount", "category", "description"}

// RowError records why a single data row was skipped.
type RowError struct {
	Row int // 1-based line number; the header is row 1
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ImportResult summarises a batch import.
type ImportResult struct {
	Succeeded         int
	Failed            int
	Errors            []RowError
	UnknownCategories []string // Accepted, but absent from the category list
}

// Total returns the number of data rows read.
func (r ImportResult) Total() int {
	return r.Succeeded + r.Failed
}

// ImportService loads delimited transaction files into the ledger.
type ImportService struct {
	writer     ledger.TransactionWriter
	categories ledger.CategoryReader
}

// NewImportService creates an importer. categories may be nil, in which case
// unknown categories are not reported.
func NewImportService(writer ledger.TransactionWriter, categories ledger.CategoryReader) *ImportService {
	return &ImportService{
		writer:     writer,
		categories: categories,
	}
}

// ImportFile imports the CSV file at path.
func (s *ImportService) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImportResult{}, fmt.Errorf("%w: input file %q", core.ErrNotFound, path)
		}
		return ImportResult{}, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	slog.InfoContext(ctx, "Importing transactions", applog.FieldPath, path)
	return s.Import(ctx, f)
}

// Import reads CSV rows from r. A missing required header aborts before any
// row is stored; invalid rows are skipped and counted.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult
	start := time.Now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, fmt.Errorf("%w: %w: %s", core.ErrSchema, core.ErrMissingHeader, strings.Join(RequiredHeaders, ", "))
	}
	if err != nil {
		return result, fmt.Errorf("%w: read header: %w", core.ErrSchema, err)
	}
	columns, err := indexHeader(header)
	if err != nil {
		return result, err
	}

	known := s.knownCategories(ctx)
	unknown := map[string]bool{}

	row := 1
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			result.fail(ctx, row, err)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("read row %d: %w", row, err)
		}

		field := func(name string) string {
			i := columns[name]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}

		t, err := core.NewTransaction(field("date"), field("amount"),
			strings.TrimSpace(field("category")), strings.TrimSpace(field("description")))
		if err != nil {
			result.fail(ctx, row, err)
			continue
		}

		if _, err := s.writer.Insert(ctx, t); err != nil {
			result.fail(ctx, row, err)
			continue
		}
		result.Succeeded++

		if known != nil && !known[t.Category] && !unknown[t.Category] {
			unknown[t.Category] = true
			result.UnknownCategories = append(result.UnknownCategories, t.Category)
			slog.WarnContext(ctx, "Transaction uses unknown category", applog.FieldRow, row, applog.FieldCategory, t.Category)
		}
	}

	slog.InfoContext(ctx, "Import complete",
		applog.FieldOperation, applog.OpImport,
		applog.FieldDuration, time.Since(start).Milliseconds(),
		applog.FieldSucceeded, result.Succeeded,
		applog.FieldFailed, result.Failed,
		"unknown_categories", len(result.UnknownCategories))

	return result, nil
}

func (r *ImportResult) fail(ctx context.Context, row int, err error) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Row: row, Err: err})
	slog.WarnContext(ctx, "Skipping row", applog.FieldRow, row, applog.FieldError, err)
}

// indexHeader maps each required column to its position.
func indexHeader(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	columns := make(map[string]int, len(RequiredHeaders))
	var missing []string
	for _, name := range RequiredHeaders {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %w: %s", core.ErrSchema, core.ErrMissingHeader, strings.Join(missing, ", "))
	}
	return columns, nil
}

func (s *ImportService) knownCategories(ctx context.Context) map[string]bool {
	if s.categories == nil {
		return nil
	}
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Category list unavailable, skipping unknown category check", applog.FieldError, err)
		return nil
	}
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.Name] = true
	}
	return known
}
