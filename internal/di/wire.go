//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FinChart/pkg/config"
	"FinChart/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideSeriesBackend,
		ProvideSceneCache,
		ProvidePredictor,
		ProvideRenderPublisher,

		// Use cases
		ProvideChartUseCase,
		ProvideSessionUseCase,
		ProvideIngestHandler,

		// Transport and background jobs
		ProvideHTTPHandlers,
		ProvideHTTPServer,
		ProvideKafkaConsumer,
		ProvideScheduler,

		ProvideApp,
	)
	return nil, nil, nil
}
