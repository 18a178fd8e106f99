// Package chart draws price lines to PNG with go-chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 576

	// maxYearLabels caps the number of year labels on the x axis.
	maxYearLabels = 10

	historicalName = "Current Data"
	projectedName  = "Projection"
	xAxisName      = "Date Observed (Year)"
)

// ErrNoData is returned when the historical line is empty.
var ErrNoData = errors.New("chart: nothing to draw")

// Line is one plotted series: x ordinals, y prices and the date of every point.
type Line struct {
	Ordinals []float64
	Prices   []float64
	Dates    []string
}

func (l Line) Len() int { return len(l.Ordinals) }

// Request describes a chart. Projected and Target are empty for a history-only chart.
type Request struct {
	Symbol     string
	Historical Line
	Projected  *Line
	Target     string
}

// Title returns the chart title for the request.
func (r Request) Title() string {
	if r.Projected != nil && r.Projected.Len() > 0 {
		target := r.Target
		if len(target) > 10 {
			target = target[:10]
		}
		return fmt.Sprintf("Price of %s Stock over Time (Projected to %s)", r.Symbol, target)
	}
	return fmt.Sprintf("Price of %s Stock over Time", r.Symbol)
}

// Renderer turns chart requests into PNG images. It keeps no state between calls.
type Renderer struct {
	width  int
	height int
}

// NewRenderer returns a Renderer producing width x height images. Zero means default.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// Render draws the request at the renderer's default size.
func (r *Renderer) Render(req Request) ([]byte, error) {
	return r.RenderSize(req, r.width, r.height)
}

// RenderSize draws the request at the given size and returns PNG bytes from a fresh buffer.
func (r *Renderer) RenderSize(req Request, width, height int) ([]byte, error) {
	if err := validateLine(req.Historical); err != nil {
		return nil, err
	}
	if width <= 0 {
		width = r.width
	}
	if height <= 0 {
		height = r.height
	}

	series := []gochart.Series{
		lineSeries(historicalName, req.Historical, gochart.ColorBlue),
	}
	xs := append([]float64(nil), req.Historical.Ordinals...)
	ys := append([]float64(nil), req.Historical.Prices...)
	dates := append([]string(nil), req.Historical.Dates...)

	if req.Projected != nil && req.Projected.Len() > 0 {
		if err := validateLine(*req.Projected); err != nil {
			return nil, fmt.Errorf("projected line: %w", err)
		}
		series = append(series, lineSeries(projectedName, *req.Projected, gochart.ColorOrange))
		xs = append(xs, req.Projected.Ordinals...)
		ys = append(ys, req.Projected.Prices...)
		dates = append(dates, req.Projected.Dates...)
	}

	xMin, xMax := padRange(minMax(xs))
	yMin, yMax := padRange(minMax(ys))
	labels := TickLabels(dates)
	positions := TickPositions(xMin, xMax, len(labels))
	ticks := make([]gochart.Tick, len(labels))
	for i := range labels {
		ticks[i] = gochart.Tick{Value: positions[i], Label: labels[i]}
	}

	ch := gochart.Chart{
		Title:      req.Title(),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  xAxisName,
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  "Average Price of " + req.Symbol,
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// TickLabels returns a leading blank label followed by the year of up to ten
// evenly spaced dates, taken at indices i*n/k with k = min(n, 10).
func TickLabels(dates []string) []string {
	n := len(dates)
	k := n
	if k > maxYearLabels {
		k = maxYearLabels
	}
	labels := make([]string, 0, k+1)
	labels = append(labels, "")
	for i := 0; i < k; i++ {
		d := dates[i*n/k]
		if len(d) > 4 {
			d = d[:4]
		}
		labels = append(labels, d)
	}
	return labels
}

// TickPositions spreads count tick positions evenly from min to max inclusive.
func TickPositions(min, max float64, count int) []float64 {
	switch {
	case count <= 0:
		return nil
	case count == 1:
		return []float64{min}
	}
	out := make([]float64, count)
	step := (max - min) / float64(count-1)
	for j := range out {
		out[j] = min + float64(j)*step
	}
	out[count-1] = max
	return out
}

func validateLine(l Line) error {
	if l.Len() == 0 {
		return ErrNoData
	}
	if len(l.Prices) != l.Len() {
		return fmt.Errorf("chart: %d ordinals but %d prices", l.Len(), len(l.Prices))
	}
	for _, v := range l.Prices {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("chart: non-finite price %v", v)
		}
	}
	return nil
}

// lineSeries builds a go-chart series; a single point is widened to a flat segment
// so the line is still visible.
func lineSeries(name string, l Line, col drawing.Color) gochart.ContinuousSeries {
	xs, ys := l.Ordinals, l.Prices
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}
	return gochart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
		},
	}
}

func minMax(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// padRange widens a range by 2% each side, or by one unit when it is flat.
func padRange(lo, hi float64) (float64, float64) {
	if hi-lo == 0 {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.02
	return lo - pad, hi + pad
}
