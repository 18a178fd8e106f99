package models

// Query parameters of the JSON API, bound and validated by pkg/http.

type SeriesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32"`
}

type ProjectionRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32"`
	To     string `query:"to" json:"to" validate:"required,datetime=2006-01-02"`
}

type ChartRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
	Width  int    `query:"width" json:"width" default:"0" validate:"gte=0,lte=4096"`
	Height int    `query:"height" json:"height" default:"0" validate:"gte=0,lte=4096"`
}

// SeriesResponse is the API view of a series.
type SeriesResponse struct {
	Symbol string        `json:"symbol"`
	Start  string        `json:"start"`
	Count  int           `json:"count"`
	Points []SeriesPoint `json:"points"`
}

// ProjectionResponse is the API view of a projection.
type ProjectionResponse struct {
	Symbol string           `json:"symbol"`
	Target string           `json:"target"`
	Count  int              `json:"count"`
	Points []ProjectedPoint `json:"points"`
}
