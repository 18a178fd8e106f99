package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	domrepo "IndexScope/internal/domain/repository"
	applogger "IndexScope/pkg/logger"
)

// LoadResult summarises one store rebuild.
type LoadResult struct {
	Source   string
	Rows     int
	Dropped  int
	Duration time.Duration
}

// StoreLoader rebuilds the price store from a source. Loads are serialised so
// a scheduled reload never overlaps a manual one.
type StoreLoader struct {
	source  domrepo.PriceSource
	store   domrepo.PriceStore
	metrics domrepo.Metrics
	l       *applogger.Logger
	mu      sync.Mutex
}

func NewStoreLoader(source domrepo.PriceSource, store domrepo.PriceStore, metrics domrepo.Metrics, l *applogger.Logger) *StoreLoader {
	if l == nil {
		l = applogger.Nop()
	}
	return &StoreLoader{source: source, store: store, metrics: metrics, l: l}
}

// Load reads every row from the source and replaces the store contents with
// them. On error the previous contents stay in place.
func (sl *StoreLoader) Load(ctx context.Context) (*LoadResult, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	start := time.Now()
	rows, dropped, err := sl.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sl.source.Name(), err)
	}
	if err := sl.store.Replace(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace store: %w", err)
	}

	res := &LoadResult{
		Source:   sl.source.Name(),
		Rows:     len(rows),
		Dropped:  dropped,
		Duration: time.Since(start),
	}
	sl.metrics.RecordStoreLoad(res.Rows, res.Dropped, res.Duration.Seconds())
	sl.l.Info("price store loaded",
		applogger.String("source", res.Source),
		applogger.Int("rows", res.Rows),
		applogger.Int("dropped", res.Dropped),
		applogger.Duration("duration_ms", res.Duration),
	)
	return res, nil
}
