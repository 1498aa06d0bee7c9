package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	cats   []core.Category
	items  []core.Transaction
}

func New(cats []core.Category) *Store {
	return &Store{cats: dedupeCategories(cats)}
}

// NewFromFiles seeds the category list from base/seed_categories.txt, one
// "name,type" pair per line. Missing files fall back to the defaults.
func NewFromFiles(base string) *Store {
	cats := readCategories(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = core.DefaultCategories()
	}
	return New(cats)
}

// Insert stores the transaction and assigns the next sequential id.
func (s *Store) Insert(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	s.items = append(s.items, t)
	return t.ID, nil
}

// ScanAll returns a copy of the ledger, newest date first.
func (s *Store) ScanAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction(nil), s.items...)
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) Close() error { return nil }

func readCategories(path string) []core.Category {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Category
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, kind, found := strings.Cut(line, ",")
		c := core.Category{Name: strings.TrimSpace(name), Type: core.ExpenseCategory}
		if found {
			c.Type = core.CategoryType(strings.ToLower(strings.TrimSpace(kind)))
		}
		if c.Validate() != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func dedupeCategories(in []core.Category) []core.Category {
	seen := map[string]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	// First occurrence wins; input order is preserved.
	return out
}

var _ ledger.Store = (*Store)(nil)
