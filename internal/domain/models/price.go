package models

import "time"

// PriceRow is one daily OHLC record for an index, as stored.
type PriceRow struct {
	Symbol   string
	Date     string // YYYY-MM-DD
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
}

// Average is the unweighted mean of the five price fields.
func (r PriceRow) Average() float64 {
	return (r.Open + r.High + r.Low + r.Close + r.AdjClose) / 5
}

// AverageRow is a query-layer result: a date and its average price.
type AverageRow struct {
	Date    string
	Average float64
}

// SeriesPoint is one observed day of a series.
type SeriesPoint struct {
	Date    string    `json:"date"`
	Average float64   `json:"average"`
	Ordinal int       `json:"ordinal"` // days since the series start
	Time    time.Time `json:"-"`
}

// Series is an ordered, ordinal-indexed price history for one symbol.
type Series struct {
	Symbol string
	Start  time.Time
	Points []SeriesPoint
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Points) }

// Last returns the most recent point. ok is false for an empty series.
func (s Series) Last() (p SeriesPoint, ok bool) {
	if len(s.Points) == 0 {
		return SeriesPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Ordinals returns the x values of the series.
func (s Series) Ordinals() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = float64(p.Ordinal)
	}
	return out
}

// Averages returns the y values of the series.
func (s Series) Averages() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Average
	}
	return out
}

// Dates returns the date strings of the series.
func (s Series) Dates() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}
