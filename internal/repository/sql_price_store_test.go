package repository

import (
	"context"
	"path/filepath"
	"testing"

	"IndexScope/internal/domain/models"
	pkgsqlite "IndexScope/pkg/sqlite"
)

func newTestStore(t *testing.T) *SQLPriceStore {
	t.Helper()
	c, err := pkgsqlite.NewClient(pkgsqlite.WithPath(filepath.Join(t.TempDir(), "prices.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s, err := NewSQLiteStore(context.Background(), c, "stock_data")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func price(sym, date string, v float64) models.PriceRow {
	return models.PriceRow{Symbol: sym, Date: date, Open: v, High: v + 2, Low: v - 2, Close: v, AdjClose: v}
}

func TestSQLPriceStore_EmptyBeforeLoad(t *testing.T) {
	s := newTestStore(t)
	syms, err := s.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(syms) != 0 {
		t.Fatalf("expected no symbols, got %v", syms)
	}
}

func TestSQLPriceStore_ReplaceAndQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	err := s.Replace(ctx, []models.PriceRow{
		price("NYSE", "2020-01-03", 12),
		price("GSPC", "2020-01-01", 100),
		price("NYSE", "2020-01-01", 10),
		price("NYSE", "2020-01-02", 11),
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	syms, err := s.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(syms) != 2 || syms[0] != "GSPC" || syms[1] != "NYSE" {
		t.Fatalf("expected sorted [GSPC NYSE], got %v", syms)
	}

	got, err := s.LoadSeries(ctx, "NYSE")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []models.AverageRow{{Date: "2020-01-01", Average: 10}, {Date: "2020-01-02", Average: 11}, {Date: "2020-01-03", Average: 12}}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSQLPriceStore_UnknownSymbolIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Replace(ctx, []models.PriceRow{price("NYSE", "2020-01-01", 1)}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := s.LoadSeries(ctx, "NOPE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestSQLPriceStore_ReplaceDiscardsPreviousRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Replace(ctx, []models.PriceRow{price("OLD", "2019-01-01", 1)}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := s.Replace(ctx, []models.PriceRow{price("NEW", "2020-01-01", 2)}); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	syms, _ := s.ListSymbols(ctx)
	if len(syms) != 1 || syms[0] != "NEW" {
		t.Fatalf("expected only NEW, got %v", syms)
	}
}

func TestNewSQLPriceStore_RejectsBadTable(t *testing.T) {
	c, err := pkgsqlite.NewClient(pkgsqlite.WithPath(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer c.Close()
	if _, err := NewSQLPriceStore(context.Background(), c.DB(), "prices; DROP TABLE x", SQLiteDialect); err == nil {
		t.Fatal("expected an invalid table name error")
	}
}
