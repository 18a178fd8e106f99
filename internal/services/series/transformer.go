// Package series turns date-ordered average prices into an ordinal-indexed series.
package series

import (
	"errors"
	"sort"
	"time"

	"IndexScope/internal/domain/models"
	"IndexScope/pkg/util"
)

// ErrEmptySeries is returned when no row carries a valid date.
var ErrEmptySeries = errors.New("series: no valid rows")

// Transform parses row dates, drops rows whose date does not parse, and numbers
// each remaining row by the days elapsed since the first one. Rows are expected
// in ascending date order; out-of-order input is sorted (stable) by date.
func Transform(symbol string, rows []models.AverageRow) (models.Series, error) {
	points := make([]models.SeriesPoint, 0, len(rows))
	for _, r := range rows {
		t, ok := util.ParseDay(r.Date)
		if !ok {
			continue
		}
		points = append(points, models.SeriesPoint{
			Date:    util.FormatDay(t),
			Average: r.Average,
			Time:    t,
		})
	}
	if len(points) == 0 {
		return models.Series{Symbol: symbol}, ErrEmptySeries
	}

	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) }) {
		sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	}

	start := points[0].Time
	for i := range points {
		points[i].Ordinal = Ordinal(start, points[i].Time)
	}
	return models.Series{Symbol: symbol, Start: start, Points: points}, nil
}

// Ordinal returns the whole-day offset of d from start.
func Ordinal(start, d time.Time) int {
	return util.DaysBetween(start, d)
}
