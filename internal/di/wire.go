//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"IndexScope/internal/handler/web"
	"IndexScope/internal/usecase"
	"IndexScope/pkg/config"
	"IndexScope/pkg/server"
)

var infraSet = wire.NewSet(
	ProvideRegistry,
	ProvideMetrics,
	ProvideKafkaProducer,
	ProvideLogger,
	ProvidePriceStore,
	ProvidePriceSource,
)

var loaderSet = wire.NewSet(
	infraSet,
	usecase.NewStoreLoader,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		loaderSet,
		ProvidePublisher,
		ProvideReloader,

		// Services and use cases
		ProvideProjectionModel,
		ProvideChartRenderer,
		usecase.NewChartsUseCase,

		// Sessions
		ProvideSessionStore,
		ProvideSessionManager,

		// HTTP
		web.NewHandler,
		ProvideAPIHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeLoader wires only what a one-off store rebuild needs.
func InitializeLoader(cfg *config.Config) (*usecase.StoreLoader, func(), error) {
	wire.Build(loaderSet)
	return nil, nil, nil
}
