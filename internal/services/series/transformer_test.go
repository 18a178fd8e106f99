package series

import (
	"errors"
	"testing"
	"time"

	"IndexScope/internal/domain/models"
)

func rows(dates ...string) []models.AverageRow {
	out := make([]models.AverageRow, len(dates))
	for i, d := range dates {
		out[i] = models.AverageRow{Date: d, Average: float64(100 + i)}
	}
	return out
}

func TestTransform_OrdinalsStartAtZero(t *testing.T) {
	s, err := Transform("NYSE", rows("2020-01-01", "2020-01-02", "2020-01-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", s.Len())
	}
	for i, p := range s.Points {
		if p.Ordinal != i {
			t.Errorf("point %d: expected ordinal %d, got %d", i, i, p.Ordinal)
		}
	}
	if !s.Start.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", s.Start)
	}
}

func TestTransform_BoundariesAndLeapYears(t *testing.T) {
	s, err := Transform("GSPC", rows(
		"2019-12-30", // 0
		"2020-01-02", // 3
		"2020-02-28", // 60
		"2020-02-29", // 61
		"2020-03-01", // 62
		"2021-01-01", // 368
		"2021-03-01", // 427
		"2024-02-29", // 1522
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 3, 60, 61, 62, 368, 427, 1522}
	for i, p := range s.Points {
		if p.Ordinal != want[i] {
			t.Errorf("%s: expected ordinal %d, got %d", p.Date, want[i], p.Ordinal)
		}
	}
}

func TestTransform_NonNegativeNonDecreasing(t *testing.T) {
	s, err := Transform("N225", rows("2001-05-01", "2001-05-01", "2001-05-04", "2002-05-04", "2010-12-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prev := 0
	for _, p := range s.Points {
		if p.Ordinal < 0 || p.Ordinal < prev {
			t.Fatalf("ordinal sequence broken at %s: %d after %d", p.Date, p.Ordinal, prev)
		}
		prev = p.Ordinal
	}
}

func TestTransform_DropsInvalidDates(t *testing.T) {
	in := rows("not-a-date", "2020-01-05", "", "2020-01-07", "2020-13-01")
	s, err := Transform("HSI", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 valid points, got %d", s.Len())
	}
	if s.Points[0].Ordinal != 0 || s.Points[1].Ordinal != 2 {
		t.Errorf("unexpected ordinals %d, %d", s.Points[0].Ordinal, s.Points[1].Ordinal)
	}
	if s.Points[0].Average != 101 {
		t.Errorf("expected average of the first valid row, got %v", s.Points[0].Average)
	}
}

func TestTransform_Empty(t *testing.T) {
	if _, err := Transform("X", nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
	if _, err := Transform("X", rows("bogus")); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestTransform_Deterministic(t *testing.T) {
	in := rows("2020-01-01", "2020-03-15", "2020-07-04")
	a, _ := Transform("NYSE", in)
	b, _ := Transform("NYSE", in)
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d differs between runs", i)
		}
	}
}

func TestOrdinal_FutureDate(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := Ordinal(start, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)); got != 365 {
		t.Fatalf("expected 365, got %d", got)
	}
}

func TestOrdinal_CenturiesAhead(t *testing.T) {
	start := time.Date(1965, 1, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		d    time.Time
		want int
	}{
		{time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), 85828},
		{time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC), 122352},
		{time.Date(2400, 1, 1, 0, 0, 0, 0, time.UTC), 158876},
	}
	for _, tt := range tests {
		if got := Ordinal(start, tt.d); got != tt.want {
			t.Errorf("Ordinal(%s) = %d, want %d", tt.d.Format("2006-01-02"), got, tt.want)
		}
	}
}
