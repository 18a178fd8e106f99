package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const nyseCSV = `Index, Date, Open, High, Low, Close, Adj Close, Volume
NYSE, 2020-01-01, 10, 10, 10, 10, 10, 100
NYSE, 2020-01-02, 11, 11, 11, 11, 11, 100
NYSE, 2020-01-03, 12, 12, 12, 12, 12, 100
`

func TestDecodePrices_TrimsAndIgnoresExtraColumns(t *testing.T) {
	rows, dropped, err := DecodePrices(strings.NewReader(nyseCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 0 || len(rows) != 3 {
		t.Fatalf("expected 3 rows and none dropped, got %d rows, %d dropped", len(rows), dropped)
	}
	if rows[1].Symbol != "NYSE" || rows[1].Date != "2020-01-02" || rows[1].AdjClose != 11 {
		t.Fatalf("unexpected row %+v", rows[1])
	}
}

func TestDecodePrices_DropsIncompleteRows(t *testing.T) {
	in := `Index,Date,Open,High,Low,Close,Adj Close
GSPC,2020-01-01,1,2,3,4,5
GSPC,2020-01-02,null,2,3,4,5
GSPC,2020-01-03,NaN,2,3,4,5
GSPC,2020-01-04,,2,3,4,5
GSPC,not-a-date,1,2,3,4,5
,2020-01-06,1,2,3,4,5
GSPC,2020-01-07,abc,2,3,4,5
GSPC,2020-01-08,1,2,3
GSPC,2020-01-09,2,3,4,5,6
`
	rows, dropped, err := DecodePrices(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || dropped != 7 {
		t.Fatalf("expected 2 rows and 7 dropped, got %d and %d", len(rows), dropped)
	}
	if rows[0].Average() != 3 || rows[1].Average() != 4 {
		t.Fatalf("unexpected averages %v, %v", rows[0].Average(), rows[1].Average())
	}
}

func TestDecodePrices_MissingColumn(t *testing.T) {
	_, _, err := DecodePrices(strings.NewReader("Index,Date,Open,High,Low,Close\nNYSE,2020-01-01,1,1,1,1\n"))
	if err == nil || !strings.Contains(err.Error(), "Adj Close") {
		t.Fatalf("expected a missing column error naming Adj Close, got %v", err)
	}
}

func TestDecodePrices_NoUsableRows(t *testing.T) {
	_, dropped, err := DecodePrices(strings.NewReader("Index,Date,Open,High,Low,Close,Adj Close\nNYSE,2020-01-01,null,1,1,1,1\n"))
	if !errors.Is(err, ErrNoUsableRows) || dropped != 1 {
		t.Fatalf("expected ErrNoUsableRows with 1 dropped, got %v (%d)", err, dropped)
	}
	if _, _, err := DecodePrices(strings.NewReader("Index,Date,Open,High,Low,Close,Adj Close\n")); !errors.Is(err, ErrNoUsableRows) {
		t.Fatalf("header-only input: expected ErrNoUsableRows, got %v", err)
	}
	if _, _, err := DecodePrices(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestCSVSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexData.csv")
	if err := os.WriteFile(path, []byte(nyseCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	src := NewCSVSource(path)
	rows, _, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if src.Name() != "csv:"+path {
		t.Fatalf("unexpected name %q", src.Name())
	}

	if _, _, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
