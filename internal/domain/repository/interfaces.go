package repository

import (
	"context"

	"IndexScope/internal/domain/models"
)

// PriceStore provides access to the daily price table.
type PriceStore interface {
	// ListSymbols returns the distinct index symbols, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
	// LoadSeries returns date-ordered average prices for symbol; empty when unknown.
	LoadSeries(ctx context.Context, symbol string) ([]models.AverageRow, error)
	// Replace drops the current rows and loads rows in their place.
	Replace(ctx context.Context, rows []models.PriceRow) error
	Health(ctx context.Context) error // ping
	Close() error
}

// PriceSource yields the rows a store is rebuilt from. dropped counts input
// records that were skipped as incomplete or malformed.
type PriceSource interface {
	Name() string
	Load(ctx context.Context) (rows []models.PriceRow, dropped int, err error)
}

// Publisher emits domain events.
type Publisher interface {
	PublishProjection(ctx context.Context, evt *models.ProjectionComputed) error
	Close() error
}

type Metrics interface {
	RecordSeriesLoad(symbol string, points int, err error)
	RecordProjection(symbol string, points int, err error)
	RecordRender(kind string, seconds float64, err error)
	RecordViewError(kind string)
	RecordStoreLoad(rows, dropped int, seconds float64)
}
