package browser

import (
	"context"
	"testing"

	"page-marker/internal/config"
	"page-marker/pkg/apperr"
	"page-marker/pkg/logg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRodManager_OperationsTracedBeforeLaunch(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	core, logs := observer.New(zapcore.DebugLevel)

	m := NewRodManager(Params{
		Config: &config.Config{BrowserConfig: &config.BrowserConfig{Engine: config.EngineRod}},
		Logger: zap.New(core),
	})
	m.tracer = provider.Tracer("test")

	ctx := context.Background()
	calls := map[string]func() error{
		"GoBack": func() error { return m.GoBack(ctx) },
		"URL": func() error {
			_, err := m.URL(ctx)
			return err
		},
		"PressKey": func() error { return m.PressKey(ctx, "Enter") },
		"Screenshot": func() error {
			_, err := m.Screenshot(ctx)
			return err
		},
	}

	for op, call := range calls {
		err := call()
		require.Error(t, err, op)
		assert.Equal(t, apperr.CodeBrowserNotReady, apperr.CodeOf(err), op)
	}

	ended := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range recorder.Ended() {
		ended[span.Name()] = span
	}

	for op := range calls {
		span, ok := ended[op]
		require.True(t, ok, "no span for %s", op)
		assert.Equal(t, codes.Error, span.Status().Code, op)

		failed := logs.FilterMessage("Span failed").FilterField(zap.String(logg.Operation, op))
		assert.Equal(t, 1, failed.Len(), op)
	}
}
