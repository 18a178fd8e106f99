package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"IndexScope/internal/domain/repository"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	seriesLoads   *prometheus.CounterVec
	seriesPoints  *prometheus.GaugeVec
	projections   *prometheus.CounterVec
	projPoints    *prometheus.HistogramVec
	renderLatency *prometheus.HistogramVec
	viewErrors    *prometheus.CounterVec
	storeRows     *prometheus.GaugeVec
	storeLoadSecs prometheus.Gauge
	storeLoads    prometheus.Counter
}

// New creates a recorder and registers its collectors on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		seriesLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indexscope_series_loads_total",
			Help: "Series queries by symbol and result",
		}, []string{"symbol", "result"}),
		seriesPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "indexscope_series_points",
			Help: "Points in the last loaded series of a symbol",
		}, []string{"symbol"}),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indexscope_projections_total",
			Help: "Projections computed by symbol and result",
		}, []string{"symbol", "result"}),
		projPoints: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indexscope_projection_days",
			Help:    "Projected days per request",
			Buckets: []float64{1, 7, 30, 90, 365, 730, 1825, 3650},
		}, []string{"symbol"}),
		renderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indexscope_chart_render_seconds",
			Help:    "Chart render duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "result"}),
		viewErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indexscope_view_errors_total",
			Help: "User-facing errors by kind",
		}, []string{"kind"}),
		storeRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "indexscope_store_rows",
			Help: "Rows kept and dropped by the last store load",
		}, []string{"state"}),
		storeLoadSecs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "indexscope_store_load_seconds",
			Help: "Duration of the last store load",
		}),
		storeLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexscope_store_loads_total",
			Help: "Completed store loads",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			r.seriesLoads, r.seriesPoints, r.projections, r.projPoints,
			r.renderLatency, r.viewErrors, r.storeRows, r.storeLoadSecs, r.storeLoads,
		)
	}
	return r
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (r *Recorder) RecordSeriesLoad(symbol string, points int, err error) {
	r.seriesLoads.WithLabelValues(symbol, result(err)).Inc()
	if err == nil {
		r.seriesPoints.WithLabelValues(symbol).Set(float64(points))
	}
}

func (r *Recorder) RecordProjection(symbol string, points int, err error) {
	r.projections.WithLabelValues(symbol, result(err)).Inc()
	if err == nil {
		r.projPoints.WithLabelValues(symbol).Observe(float64(points))
	}
}

func (r *Recorder) RecordRender(kind string, seconds float64, err error) {
	r.renderLatency.WithLabelValues(kind, result(err)).Observe(seconds)
}

func (r *Recorder) RecordViewError(kind string) {
	r.viewErrors.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordStoreLoad(rows, dropped int, seconds float64) {
	r.storeRows.WithLabelValues("kept").Set(float64(rows))
	r.storeRows.WithLabelValues("dropped").Set(float64(dropped))
	r.storeLoadSecs.Set(seconds)
	r.storeLoads.Inc()
}

var _ repository.Metrics = (*Recorder)(nil)

// Noop discards every observation.
type Noop struct{}

func (Noop) RecordSeriesLoad(string, int, error) {}
func (Noop) RecordProjection(string, int, error) {}
func (Noop) RecordRender(string, float64, error) {}
func (Noop) RecordViewError(string) {}
func (Noop) RecordStoreLoad(int, int, float64) {}

var _ repository.Metrics = Noop{}
