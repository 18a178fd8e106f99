package models

import "time"

// ProjectedPoint is one predicted day.
type ProjectedPoint struct {
	Date    string    `json:"date"`
	Price   float64   `json:"price"`
	Ordinal int       `json:"ordinal"`
	Time    time.Time `json:"-"`
}

// Projection holds the predicted days after a series' last observation.
type Projection struct {
	Symbol string
	Target time.Time
	Points []ProjectedPoint
}

// Ordinals returns the x values of the projection.
func (p Projection) Ordinals() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = float64(pt.Ordinal)
	}
	return out
}

// Prices returns the predicted y values.
func (p Projection) Prices() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.Price
	}
	return out
}

// Dates returns the date strings of the projection.
func (p Projection) Dates() []string {
	out := make([]string, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.Date
	}
	return out
}

// ProjectionComputed is published after a successful projection.
type ProjectionComputed struct {
	Symbol     string    `json:"symbol"`
	Target     string    `json:"target"`
	Points     int       `json:"points"`
	FirstPrice float64   `json:"first_price"`
	LastPrice  float64   `json:"last_price"`
	ComputedAt time.Time `json:"computed_at"`
}
