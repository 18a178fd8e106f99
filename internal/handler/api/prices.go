package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "IndexScope/internal/domain/models"
	"IndexScope/internal/usecase"
	xhttp "IndexScope/pkg/http"
	"IndexScope/pkg/http/middleware"
	xlogger "IndexScope/pkg/logger"
	"IndexScope/pkg/util"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// PricesHandler serves the read-only JSON API over series, projections and charts.
type PricesHandler struct {
	logger *xlogger.Logger
	charts *usecase.ChartsUseCase
	health HealthChecker
	mw     []echo.MiddlewareFunc
}

// NewPricesHandler creates the handler; mw runs on every /api/v1 route after CORS.
func NewPricesHandler(logger *xlogger.Logger, charts *usecase.ChartsUseCase, health HealthChecker, mw ...echo.MiddlewareFunc) *PricesHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PricesHandler{logger: logger, charts: charts, health: health, mw: mw}
}

func (h *PricesHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	mw := append([]echo.MiddlewareFunc{middleware.CORS(middleware.DefaultCORSConfig())}, h.mw...)
	g := e.Group("/api/v1", mw...)
	g.GET("/symbols", h.Symbols)
	g.GET("/series", h.Series)
	g.GET("/projection", h.Projection)
	g.GET("/chart", h.Chart)
}

func (h *PricesHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.health.Health(ctx); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, "store unavailable")
	}
	return xhttp.SuccessResponse(c, "ok")
}

func (h *PricesHandler) Symbols(c echo.Context) error {
	symbols, err := h.charts.Symbols(c.Request().Context())
	if err != nil {
		return h.fail(c, "symbols", "", err)
	}
	return xhttp.ListResponse(c, symbols, int64(len(symbols)))
}

func (h *PricesHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	s, err := h.charts.Series(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "series", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, models.SeriesResponse{
		Symbol: s.Symbol,
		Start:  util.FormatDay(s.Start),
		Count:  s.Len(),
		Points: s.Points,
	})
}

func (h *PricesHandler) Projection(c echo.Context) error {
	req := &models.ProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	target, err := usecase.ParseTarget(req.To)
	if err != nil {
		return h.fail(c, "projection", req.Symbol, err)
	}

	_, p, err := h.charts.Projection(c.Request().Context(), req.Symbol, target)
	if err != nil {
		return h.fail(c, "projection", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, models.ProjectionResponse{
		Symbol: p.Symbol,
		Target: util.FormatDay(p.Target),
		Count:  len(p.Points),
		Points: p.Points,
	})
}

func (h *PricesHandler) Chart(c echo.Context) error {
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	img, err := h.charts.Chart(c.Request().Context(), req.Symbol, req.To, req.Width, req.Height)
	if err != nil {
		return h.fail(c, "chart", req.Symbol, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return c.Blob(http.StatusOK, "image/png", img)
}

// fail maps usecase errors onto AppError statuses.
func (h *PricesHandler) fail(c echo.Context, op, symbol string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", symbol).WithParam("symbol", symbol))
	case errors.Is(err, usecase.ErrNoSelection):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol", "symbol is required"))
	case errors.Is(err, usecase.ErrNoDate), errors.Is(err, usecase.ErrBadDate):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("to", "to must be a date formatted as 2006-01-02"))
	case errors.Is(err, usecase.ErrNotFuture):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("to", "invalid projection range: to must be after the last observed date"))
	case errors.Is(err, usecase.ErrTooFar):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("to", "invalid projection range: to is too far past the last observed date"))
	}
	h.logger.Error(op+" usecase error", xlogger.String("symbol", symbol), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("Something went wrong").WithError(err))
}
