package bootstrap

import (
	"time"

	"page-marker/internal/browser"
	"page-marker/internal/config"
	"page-marker/internal/console"
	"page-marker/internal/usecase"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func NewApp() *fx.App {
	return fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),

		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			browser.New,

			usecase.NewUsecase,

			console.NewInterface,
		),

		fx.Invoke(
			func(*sdktrace.TracerProvider) {},
			runConsole,
		),

		fx.StartTimeout(2*time.Minute),
	)
}
