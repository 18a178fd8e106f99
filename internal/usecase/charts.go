package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"IndexScope/internal/domain/models"
	domrepo "IndexScope/internal/domain/repository"
	"IndexScope/internal/services/chart"
	"IndexScope/internal/services/projection"
	"IndexScope/internal/services/series"
	applogger "IndexScope/pkg/logger"
	"IndexScope/pkg/util"
)

// ChartsUseCase turns stored prices into series, projections and chart images.
type ChartsUseCase struct {
	store    domrepo.PriceStore
	model    *projection.Model
	renderer *chart.Renderer
	pub      domrepo.Publisher
	metrics  domrepo.Metrics
	l        *applogger.Logger
	now      func() time.Time
}

func NewChartsUseCase(
	store domrepo.PriceStore,
	model *projection.Model,
	renderer *chart.Renderer,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *ChartsUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &ChartsUseCase{
		store:    store,
		model:    model,
		renderer: renderer,
		pub:      pub,
		metrics:  metrics,
		l:        l,
		now:      time.Now,
	}
}

// VisualizeResult is the historical chart for one index.
type VisualizeResult struct {
	Symbol string
	Series models.Series
	Image  []byte
}

// ProjectResult is the historical plus projected chart for one index.
type ProjectResult struct {
	Symbol     string
	Target     string
	Series     models.Series
	Projection models.Projection
	Image      []byte
}

// Symbols lists the index symbols available for selection.
func (uc *ChartsUseCase) Symbols(ctx context.Context) ([]string, error) {
	symbols, err := uc.store.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return symbols, nil
}

// Series loads the ordinal-indexed average price history of symbol.
func (uc *ChartsUseCase) Series(ctx context.Context, symbol string) (models.Series, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.Series{}, ErrNoSelection
	}

	rows, err := uc.store.LoadSeries(ctx, symbol)
	if err != nil {
		uc.metrics.RecordSeriesLoad(symbol, 0, err)
		return models.Series{}, fmt.Errorf("load series %s: %w", symbol, err)
	}

	s, err := series.Transform(symbol, rows)
	if errors.Is(err, series.ErrEmptySeries) {
		uc.metrics.RecordSeriesLoad(symbol, 0, ErrNoData)
		return models.Series{}, ErrNoData
	}
	if err != nil {
		uc.metrics.RecordSeriesLoad(symbol, 0, err)
		return models.Series{}, fmt.Errorf("transform series %s: %w", symbol, err)
	}
	if dropped := len(rows) - s.Len(); dropped > 0 {
		uc.l.Warn("series rows with invalid dates dropped",
			applogger.String("symbol", symbol),
			applogger.Int("dropped", dropped),
		)
	}

	uc.metrics.RecordSeriesLoad(symbol, s.Len(), nil)
	return s, nil
}

// Visualize renders the historical chart of symbol.
func (uc *ChartsUseCase) Visualize(ctx context.Context, symbol string) (*VisualizeResult, error) {
	s, err := uc.Series(ctx, symbol)
	if err != nil {
		return nil, err
	}

	img, err := uc.render("history", chart.Request{
		Symbol:     s.Symbol,
		Historical: historicalLine(s),
	}, 0, 0)
	if err != nil {
		return nil, err
	}
	return &VisualizeResult{Symbol: s.Symbol, Series: s, Image: img}, nil
}

// ParseTarget reads a YYYY-MM-DD projection date as entered in a form.
func ParseTarget(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrNoDate
	}
	t, ok := util.ParseDay(raw)
	if !ok {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// Projection fits the model on symbol's history and predicts every day up to
// target. A successful projection is published as a ProjectionComputed event;
// publish failures are logged only.
func (uc *ChartsUseCase) Projection(ctx context.Context, symbol string, target time.Time) (models.Series, models.Projection, error) {
	s, err := uc.Series(ctx, symbol)
	if err != nil {
		return models.Series{}, models.Projection{}, err
	}

	p, err := uc.model.Project(s, target)
	if err != nil {
		uc.metrics.RecordProjection(s.Symbol, 0, err)
		switch {
		case errors.Is(err, projection.ErrRangeTooLong):
			return s, models.Projection{}, fmt.Errorf("%w: %v", ErrTooFar, err)
		case errors.Is(err, projection.ErrInvalidRange):
			return s, models.Projection{}, ErrNotFuture
		}
		return s, models.Projection{}, fmt.Errorf("project %s: %w", s.Symbol, err)
	}
	uc.metrics.RecordProjection(s.Symbol, len(p.Points), nil)
	uc.publish(ctx, p)
	return s, p, nil
}

// Project validates the raw target date, projects symbol to it and renders the
// combined chart.
func (uc *ChartsUseCase) Project(ctx context.Context, symbol, rawTarget string) (*ProjectResult, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, ErrNoSelection
	}
	target, err := ParseTarget(rawTarget)
	if err != nil {
		return nil, err
	}

	s, p, err := uc.Projection(ctx, symbol, target)
	if err != nil {
		return nil, err
	}

	targetDay := util.FormatDay(p.Target)
	proj := projectedLine(p)
	img, err := uc.render("projection", chart.Request{
		Symbol:     s.Symbol,
		Historical: historicalLine(s),
		Projected:  &proj,
		Target:     targetDay,
	}, 0, 0)
	if err != nil {
		return nil, err
	}
	return &ProjectResult{
		Symbol:     s.Symbol,
		Target:     targetDay,
		Series:     s,
		Projection: p,
		Image:      img,
	}, nil
}

// Chart renders symbol at the requested size, with a projection when
// rawTarget is set. Zero sizes use the renderer's defaults.
func (uc *ChartsUseCase) Chart(ctx context.Context, symbol, rawTarget string, width, height int) ([]byte, error) {
	if strings.TrimSpace(rawTarget) == "" {
		s, err := uc.Series(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return uc.render("history", chart.Request{Symbol: s.Symbol, Historical: historicalLine(s)}, width, height)
	}

	target, err := ParseTarget(rawTarget)
	if err != nil {
		return nil, err
	}
	s, p, err := uc.Projection(ctx, symbol, target)
	if err != nil {
		return nil, err
	}
	proj := projectedLine(p)
	return uc.render("projection", chart.Request{
		Symbol:     s.Symbol,
		Historical: historicalLine(s),
		Projected:  &proj,
		Target:     util.FormatDay(p.Target),
	}, width, height)
}

func (uc *ChartsUseCase) render(kind string, req chart.Request, width, height int) ([]byte, error) {
	start := time.Now()
	img, err := uc.renderer.RenderSize(req, width, height)
	uc.metrics.RecordRender(kind, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("render %s chart for %s: %w", kind, req.Symbol, err)
	}
	return img, nil
}

func (uc *ChartsUseCase) publish(ctx context.Context, p models.Projection) {
	if uc.pub == nil || len(p.Points) == 0 {
		return
	}
	evt := &models.ProjectionComputed{
		Symbol:     p.Symbol,
		Target:     util.FormatDay(p.Target),
		Points:     len(p.Points),
		FirstPrice: p.Points[0].Price,
		LastPrice:  p.Points[len(p.Points)-1].Price,
		ComputedAt: uc.now().UTC(),
	}
	if err := uc.pub.PublishProjection(ctx, evt); err != nil {
		uc.l.Warn("publish projection event failed",
			applogger.String("symbol", p.Symbol),
			applogger.Error(err),
		)
	}
}

func historicalLine(s models.Series) chart.Line {
	return chart.Line{Ordinals: s.Ordinals(), Prices: s.Averages(), Dates: s.Dates()}
}

func projectedLine(p models.Projection) chart.Line {
	return chart.Line{Ordinals: p.Ordinals(), Prices: p.Prices(), Dates: p.Dates()}
}
