package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"page-marker/internal/config"
	"page-marker/internal/entity"
	"page-marker/internal/pagebridge"
	"page-marker/pkg/apperr"
	"page-marker/pkg/logg"
	"page-marker/pkg/tracing"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	browserManagerName = "BrowserManager"
	browserTracer      = "browser.manager"
	actionTimeout      = 5000
)

// Manager drives a Chromium page through playwright.
type Manager struct {
	config         *config.Config
	logger         *zap.Logger
	tracer         trace.Tracer
	playwright     *playwright.Playwright
	browser        playwright.Browser
	browserContext playwright.BrowserContext
	page           playwright.Page
	ready          bool
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewManager(params Params) *Manager {
	return &Manager{
		config: params.Config,
		logger: params.Logger.With(zap.String(logg.Layer, browserManagerName), zap.String(logg.Engine, config.EnginePlaywright)),
		tracer: otel.Tracer(browserTracer),
		ready:  false,
	}
}

func (m *Manager) Launch(ctx context.Context) (err error) {
	const op = "Launch"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Launching browser...")
	step.AddEvent("installing playwright")

	err = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_install_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	step.AddEvent("starting playwright")

	pw, err := playwright.Run()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_start_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.playwright = pw

	if m.config.BrowserConfig.UserDataDir != "" {
		return m.launchPersistent(ctx)
	}

	return m.launchNew(ctx)
}

func (m *Manager) viewport() *playwright.Size {
	return &playwright.Size{
		Width:  m.config.BrowserConfig.ViewportWidth,
		Height: m.config.BrowserConfig.ViewportHeight,
	}
}

func (m *Manager) launchPersistent(ctx context.Context) (err error) {
	const op = "launchPersistent"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	userDataDir := m.config.BrowserConfig.UserDataDir

	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "mkdir_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	browserContext, err := m.playwright.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:          playwright.Bool(m.config.BrowserConfig.Headless),
		SlowMo:            playwright.Float(float64(m.config.BrowserConfig.SlowMo)),
		Viewport:          m.viewport(),
		JavaScriptEnabled: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "launch_persistent_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	m.browserContext = browserContext

	if pages := browserContext.Pages(); len(pages) > 0 {
		m.page = pages[0]
		logger.Info("Using existing page")
	} else {
		page, err := browserContext.NewPage()
		if err != nil {
			return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "new_page_failed",
				apperr.MetaStage:  apperr.StageBrowser,
			})
		}
		m.page = page
	}

	m.ready = true
	logger.Info("Browser launched successfully")

	return nil
}

func (m *Manager) launchNew(ctx context.Context) (err error) {
	const op = "launchNew"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.config.BrowserConfig.Headless),
		SlowMo:   playwright.Float(float64(m.config.BrowserConfig.SlowMo)),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "browser_launch_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browser = browser

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          m.viewport(),
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "context_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browserContext = browserContext

	page, err := browserContext.NewPage()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "page_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.page = page

	m.ready = true
	logger.Info("Browser launched successfully")

	return nil
}

func (m *Manager) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Closing browser...")
	m.ready = false

	var errs error
	if m.browserContext != nil {
		errs = multierr.Append(errs, m.browserContext.Close())
	}

	if m.browser != nil {
		errs = multierr.Append(errs, m.browser.Close())
	}

	if m.playwright != nil {
		errs = multierr.Append(errs, m.playwright.Stop())
	}

	if errs != nil {
		return apperr.Wrap(op, apperr.CodeInternal, errs, map[string]any{
			apperr.MetaReason: "close_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	logger.Info("Browser closed")

	return nil
}

func (m *Manager) ensurePageActive() error {
	if m.browserContext == nil {
		return fmt.Errorf("browser context is nil")
	}

	if m.page != nil && !m.page.IsClosed() {
		return nil
	}

	m.logger.Info("Page closed, reconnecting to active page...")

	for _, p := range m.browserContext.Pages() {
		if !p.IsClosed() {
			m.page = p

			return nil
		}
	}

	page, err := m.browserContext.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %w", err)
	}
	m.page = page

	return nil
}

func (m *Manager) checkReady(op string) error {
	if !m.ready {
		return apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	if err := m.ensurePageActive(); err != nil {
		return apperr.Wrap(op, apperr.CodeBrowserNotReady, err, map[string]any{
			apperr.MetaReason: "page_not_active",
		})
	}

	return nil
}

func (m *Manager) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if err := m.checkReady(op); err != nil {
		return err
	}

	_, err = m.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(m.config.BrowserConfig.Timeout)),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "goto_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	step.AddEvent("navigation completed")

	return nil
}

func (m *Manager) GoBack(ctx context.Context) (err error) {
	const op = "GoBack"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err := m.checkReady(op); err != nil {
		return err
	}

	if _, err = m.page.GoBack(); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "go_back_failed",
			apperr.MetaStage:  apperr.StageNavigation,
		})
	}

	return nil
}

func (m *Manager) URL(_ context.Context) (string, error) {
	const op = "URL"

	if err := m.checkReady(op); err != nil {
		return "", err
	}

	return m.page.URL(), nil
}

func (m *Manager) Evaluate(ctx context.Context, script string, arg any) (result any, err error) {
	const op = "Evaluate"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := m.checkReady(op); err != nil {
		return nil, err
	}

	if arg == nil {
		result, err = m.page.Evaluate(script)
	} else {
		result, err = m.page.Evaluate(script, arg)
	}

	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "evaluate_failed",
		})
	}

	return result, nil
}

// resolveNode returns the element handle behind ref. The caller disposes it.
func (m *Manager) resolveNode(op string, ref entity.NodeRef) (playwright.ElementHandle, error) {
	handle, err := m.page.EvaluateHandle(pagebridge.ResolveNodeScript, map[string]any{
		"generation": ref.Generation,
		"index":      ref.Index,
	})
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "resolve_node_failed",
		})
	}

	el := handle.AsElement()
	if el == nil {
		_ = handle.Dispose()

		return nil, apperr.NotFoundError(op, fmt.Errorf("node %d of snapshot %d is gone", ref.Index, ref.Generation))
	}

	return el, nil
}

func (m *Manager) ClickNode(ctx context.Context, ref entity.NodeRef) (err error) {
	const op = "ClickNode"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Index, ref.Index))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.Int("node", ref.Index))
	defer func() {
		step.End(err)
	}()

	if err := m.checkReady(op); err != nil {
		return err
	}

	el, err := m.resolveNode(op, ref)
	if err != nil {
		return err
	}
	defer el.Dispose()

	if err = el.Click(playwright.ElementHandleClickOptions{Timeout: playwright.Float(actionTimeout)}); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "click_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	time.Sleep(300 * time.Millisecond)
	step.AddEvent("click completed")

	return nil
}

func (m *Manager) FillNode(ctx context.Context, ref entity.NodeRef, value string) (err error) {
	const op = "FillNode"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Index, ref.Index))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.Int("node", ref.Index))
	defer func() {
		step.End(err)
	}()

	if err := m.checkReady(op); err != nil {
		return err
	}

	el, err := m.resolveNode(op, ref)
	if err != nil {
		return err
	}
	defer el.Dispose()

	if err = el.Click(playwright.ElementHandleClickOptions{Timeout: playwright.Float(actionTimeout)}); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "focus_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	if err = el.Fill(value, playwright.ElementHandleFillOptions{Timeout: playwright.Float(actionTimeout)}); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "fill_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	step.AddEvent("fill completed")

	return nil
}

func (m *Manager) PressKey(ctx context.Context, key string) (err error) {
	const op = "PressKey"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("key", key))
	defer func() {
		step.End(err)
	}()

	if err := m.checkReady(op); err != nil {
		return err
	}

	if err = m.page.Keyboard().Press(key); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "key_press_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	return nil
}

func (m *Manager) Screenshot(ctx context.Context) (data []byte, err error) {
	const op = "Screenshot"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err := m.checkReady(op); err != nil {
		return nil, err
	}

	data, err = m.page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "screenshot_failed",
			apperr.MetaStage:  apperr.StageScreenshot,
		})
	}

	return data, nil
}

func (m *Manager) IsReady() bool {
	return m.ready
}
