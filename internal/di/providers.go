package di

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"IndexScope/internal/domain/repository"
	"IndexScope/internal/handler/api"
	"IndexScope/internal/handler/web"
	internalrepo "IndexScope/internal/repository"
	"IndexScope/internal/services/chart"
	"IndexScope/internal/services/projection"
	"IndexScope/internal/usecase"
	"IndexScope/pkg/cache"
	pkgch "IndexScope/pkg/clickhouse"
	"IndexScope/pkg/config"
	xhttp "IndexScope/pkg/http"
	"IndexScope/pkg/http/middleware"
	pkgkafka "IndexScope/pkg/kafka"
	applogger "IndexScope/pkg/logger"
	"IndexScope/pkg/metrics"
	"IndexScope/pkg/server"
	"IndexScope/pkg/session"
	pkgsqlite "IndexScope/pkg/sqlite"
)

const connectTimeout = 10 * time.Second

// ProvideRegistry creates the Prometheus registry every collector registers on.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the domain metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithMetrics(pkgkafka.NewProducerMetrics(reg)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger creates the application logger. With Kafka enabled and the
// collector switched on, repeated warnings and errors are shipped as digests
// to the log topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if producer == nil || !cfg.Log.Collector.Enabled {
		return l, func() {}, nil
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   cfg.Log.Collector.Interval,
		CountThreshold: cfg.Log.Collector.Threshold,
		Levels:         cfg.Log.Collector.Levels,
		Topic:          cfg.Kafka.LogTopic,
		Publisher:      producer,
	})
	return l, l.RemoveCollector, nil
}

// ProvidePublisher publishes projection events to Kafka when enabled.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.Publisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePriceStore opens the configured store backend and ensures its table exists.
func ProvidePriceStore(cfg *config.Config, l *applogger.Logger) (repository.PriceStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var (
		store *internalrepo.SQLPriceStore
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverClickHouse:
		var client *pkgch.Client
		client, err = pkgch.NewClient(ctx,
			pkgch.WithHost(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxOpenConns/2),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store, err = internalrepo.NewClickHouseStore(ctx, client, cfg.Store.Table)
	default:
		var client *pkgsqlite.Client
		client, err = pkgsqlite.NewClient(pkgsqlite.WithPath(cfg.Store.SQLitePath))
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite client: %w", err)
		}
		store, err = internalrepo.NewSQLiteStore(ctx, client, cfg.Store.Table)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("price store: %w", err)
	}
	store.SetLogger(l)
	l.Info("price store ready",
		applogger.String("driver", cfg.Store.Driver),
		applogger.String("table", cfg.Store.Table),
	)
	return store, func() { _ = store.Close() }, nil
}

// ProvidePriceSource reads prices from the configured CSV file.
func ProvidePriceSource(cfg *config.Config) repository.PriceSource {
	return internalrepo.NewCSVSource(cfg.Store.CSVPath)
}

// ProvideReloader schedules store reloads from store.reload_cron.
func ProvideReloader(cfg *config.Config, loader *usecase.StoreLoader, l *applogger.Logger) (*usecase.Reloader, error) {
	r := usecase.NewReloader(loader, 0, l)
	if err := r.Schedule(cfg.Store.ReloadCron); err != nil {
		return nil, err
	}
	return r, nil
}

// ProvideProjectionModel builds the ridge model from projection.degree and projection.alpha.
func ProvideProjectionModel(cfg *config.Config) *projection.Model {
	return projection.NewModel(
		projection.WithDegree(cfg.Projection.Degree),
		projection.WithAlpha(cfg.Projection.Alpha),
		projection.WithMaxDays(cfg.Projection.MaxDays),
	)
}

// ProvideChartRenderer builds the renderer at chart.width x chart.height.
func ProvideChartRenderer(cfg *config.Config) *chart.Renderer {
	return chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height)
}

// ProvideSessionStore creates the cache that holds browser sessions.
func ProvideSessionStore(cfg *config.Config) (cache.Service, func(), error) {
	var store cache.Service
	switch cfg.Session.Backend {
	case config.SessionRedis, config.SessionLayered:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx,
			cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
			cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
			cache.WithRedisPool(cfg.Redis.PoolSize, 2, 30*time.Second),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		store = rc
		if cfg.Session.Backend == config.SessionLayered {
			store = cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Session.MaxEntries))
		}
	default:
		store = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Session.MaxEntries))
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideSessionManager creates the cookie-addressed session manager.
func ProvideSessionManager(cfg *config.Config, store cache.Service, l *applogger.Logger) *session.Manager {
	return session.NewManager(store,
		session.WithTTL(cfg.Session.TTL),
		session.WithCookieName(cfg.Session.CookieName),
		session.WithSecureCookie(cfg.Session.Secure),
		session.WithLogger(l),
	)
}

// ProvideAPIHandler creates the JSON API handler, rate limited per client IP
// when server.rate_limit_rps is set. The store doubles as health check.
func ProvideAPIHandler(cfg *config.Config, l *applogger.Logger, charts *usecase.ChartsUseCase, store repository.PriceStore) *api.PricesHandler {
	var mw []echo.MiddlewareFunc
	if cfg.Server.RateLimitRPS > 0 {
		mw = append(mw, middleware.RateLimit(middleware.NewLimiter(cfg.Server.RateLimitBurst, cfg.Server.RateLimitRPS)))
	}
	return api.NewPricesHandler(l, charts, store, mw...)
}

// ProvideHTTPServer assembles the Echo server with the page and API handlers.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	pages *web.Handler,
	apiHandler *api.PricesHandler,
) (*xhttp.Server, error) {
	templates, err := web.NewTemplates()
	if err != nil {
		return nil, err
	}
	opts := []xhttp.ServerOption{
		xhttp.WithAddr(cfg.Server.Host, cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithRenderer(templates),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer([]xhttp.Handler{pages, apiHandler}, opts...), nil
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	loader *usecase.StoreLoader,
	reloader *usecase.Reloader,
	srv *xhttp.Server,
) *server.App {
	return server.New(cfg, l, loader, reloader, srv)
}
