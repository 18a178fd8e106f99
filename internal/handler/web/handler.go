package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domrepo "IndexScope/internal/domain/repository"
	"IndexScope/internal/usecase"
	applogger "IndexScope/pkg/logger"
	"IndexScope/pkg/session"
)

const (
	pathHome      = "/"
	pathVisualize = "/action/visualize"
	pathProject   = "/action/project"
	pathGoHome    = "/action/go_home"
)

// Handler serves the browser pages: index picker, chart and projection.
type Handler struct {
	logger   *applogger.Logger
	charts   *usecase.ChartsUseCase
	sessions *session.Manager
	metrics  domrepo.Metrics
}

func NewHandler(logger *applogger.Logger, charts *usecase.ChartsUseCase, sessions *session.Manager, metrics domrepo.Metrics) *Handler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Handler{logger: logger, charts: charts, sessions: sessions, metrics: metrics}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	withSession := h.sessions.Middleware()
	both := []string{http.MethodGet, http.MethodPost}

	for _, p := range []string{pathHome, "/index", "/home"} {
		e.GET(p, h.Home, withSession)
	}
	e.Match(both, pathVisualize, h.Visualize, withSession)
	e.Match(both, pathProject, h.Project, withSession)
	e.Match(both, pathGoHome, h.GoHome)
}

// Home clears the selection and lists the indexes.
func (h *Handler) Home(c echo.Context) error {
	s := session.FromContext(c)
	s.ClearIndex()
	msg := s.PopError()

	symbols, err := h.charts.Symbols(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index.html", IndexPage{Error: msg, Symbols: symbols})
}

// Visualize shows the historical chart of the submitted or remembered index.
func (h *Handler) Visualize(c echo.Context) error {
	s := session.FromContext(c)
	if form, err := c.FormParams(); err == nil {
		if _, ok := form["index"]; ok {
			s.SetIndex(form.Get("index"))
		}
	}

	res, err := h.charts.Visualize(c.Request().Context(), s.Index)
	if err != nil {
		return h.fail(c, s, err, usecase.PageVisualize)
	}
	return c.Render(http.StatusOK, "plot.html", PlotPage{
		Error: s.PopError(),
		Text:  "- " + res.Symbol,
		Image: pngDataURL(res.Image),
	})
}

// Project shows the chart extended by a projection to the submitted date.
func (h *Handler) Project(c echo.Context) error {
	s := session.FromContext(c)

	res, err := h.charts.Project(c.Request().Context(), s.Index, c.FormValue("project"))
	if err != nil {
		return h.fail(c, s, err, usecase.PageProject)
	}
	return c.Render(http.StatusOK, "plot.html", PlotPage{
		Error: s.PopError(),
		Text:  "- " + res.Symbol + " (Projected to " + res.Target + ")",
		Image: pngDataURL(res.Image),
	})
}

func (h *Handler) GoHome(c echo.Context) error {
	return c.Redirect(http.StatusFound, pathHome)
}

// fail turns a user-correctable error into a one-shot message plus redirect.
// Anything else goes to the echo error handler as a 500.
func (h *Handler) fail(c echo.Context, s *session.Session, err error, op usecase.Page) error {
	ve := usecase.AsViewError(err, op, s.Index)
	if ve == nil {
		h.logger.Error("web action failed",
			applogger.String("action", string(op)),
			applogger.String("index", s.Index),
			applogger.Error(err),
		)
		return err
	}

	h.metrics.RecordViewError(ve.KindName())
	s.Flash(ve.Message)
	if ve.Redirect == usecase.PageVisualize {
		return c.Redirect(http.StatusFound, pathVisualize)
	}
	return c.Redirect(http.StatusFound, pathHome)
}
