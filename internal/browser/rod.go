package browser

import (
	"context"
	"fmt"
	"time"

	"page-marker/internal/config"
	"page-marker/internal/entity"
	"page-marker/internal/pagebridge"
	"page-marker/pkg/apperr"
	"page-marker/pkg/logg"
	"page-marker/pkg/tracing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const rodManagerName = "RodManager"

// rodKeys maps the key names used by PressKey to rod key codes.
var rodKeys = map[string]input.Key{
	"Enter":     input.Enter,
	"Tab":       input.Tab,
	"Escape":    input.Escape,
	"Backspace": input.Backspace,
}

// RodManager drives a Chrome page over CDP with go-rod.
type RodManager struct {
	config   *config.Config
	logger   *zap.Logger
	tracer   trace.Tracer
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	ready    bool
}

func NewRodManager(params Params) *RodManager {
	return &RodManager{
		config: params.Config,
		logger: params.Logger.With(zap.String(logg.Layer, rodManagerName), zap.String(logg.Engine, config.EngineRod)),
		tracer: otel.Tracer(browserTracer),
	}
}

func (m *RodManager) timeout() time.Duration {
	return time.Duration(m.config.BrowserConfig.Timeout) * time.Millisecond
}

func (m *RodManager) Launch(ctx context.Context) (err error) {
	const op = "Launch"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	logger.Info("Launching browser...")

	l := launcher.New().
		Headless(m.config.BrowserConfig.Headless).
		Set("disable-blink-features", "AutomationControlled")
	if dir := m.config.BrowserConfig.UserDataDir; dir != "" {
		l = l.UserDataDir(dir)
	}

	// Not bound to ctx: the browser must outlive the startup context.
	controlURL, err := l.Launch()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "chrome_launch_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.launcher = l

	step.AddEvent("connecting over cdp")

	b := rod.New().
		ControlURL(controlURL).
		SlowMotion(time.Duration(m.config.BrowserConfig.SlowMo) * time.Millisecond)
	if err = b.Connect(); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "cdp_connect_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browser = b

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "page_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.config.BrowserConfig.ViewportWidth,
		Height:            m.config.BrowserConfig.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "set_viewport_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.page = page

	m.ready = true
	logger.Info("Browser launched successfully")

	return nil
}

func (m *RodManager) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	m.ready = false

	var errs error
	if m.browser != nil {
		errs = multierr.Append(errs, m.browser.Close())
	}

	if m.launcher != nil {
		m.launcher.Kill()
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

// pageFor binds the page to ctx and the configured timeout.
func (m *RodManager) pageFor(ctx context.Context, op string) (*rod.Page, error) {
	if !m.ready || m.page == nil {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	return m.page.Context(ctx).Timeout(m.timeout()), nil
}

func (m *RodManager) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return err
	}

	if err = page.Navigate(url); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "navigate_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	if err = page.WaitLoad(); err != nil {
		return apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
			apperr.MetaReason: "wait_load_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	step.AddEvent("navigation completed")

	return nil
}

func (m *RodManager) GoBack(ctx context.Context) (err error) {
	const op = "GoBack"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return err
	}

	if err = page.NavigateBack(); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "go_back_failed",
			apperr.MetaStage:  apperr.StageNavigation,
		})
	}

	return nil
}

func (m *RodManager) URL(ctx context.Context) (url string, err error) {
	const op = "URL"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return "", err
	}

	info, err := page.Info()
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "page_info_failed",
		})
	}

	return info.URL, nil
}

func (m *RodManager) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	const op = "Evaluate"

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return nil, err
	}

	var args []interface{}
	if arg != nil {
		args = append(args, arg)
	}

	obj, err := page.Eval(script, args...)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "evaluate_failed",
		})
	}

	return obj.Value.Val(), nil
}

func (m *RodManager) resolveNode(page *rod.Page, op string, ref entity.NodeRef) (*rod.Element, error) {
	obj, err := page.Evaluate(rod.Eval(pagebridge.ResolveNodeScript, map[string]any{
		"generation": ref.Generation,
		"index":      ref.Index,
	}).ByObject())
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "resolve_node_failed",
		})
	}

	if obj.ObjectID == "" {
		return nil, apperr.NotFoundError(op, fmt.Errorf("node %d of snapshot %d is gone", ref.Index, ref.Generation))
	}

	el, err := page.ElementFromObject(obj)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "element_from_object_failed",
		})
	}

	return el, nil
}

func (m *RodManager) ClickNode(ctx context.Context, ref entity.NodeRef) (err error) {
	const op = "ClickNode"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Index, ref.Index))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.Int("node", ref.Index))
	defer func() {
		step.End(err)
	}()

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return err
	}

	el, err := m.resolveNode(page, op, ref)
	if err != nil {
		return err
	}

	if err = el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "click_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	return nil
}

func (m *RodManager) FillNode(ctx context.Context, ref entity.NodeRef, value string) (err error) {
	const op = "FillNode"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Index, ref.Index))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.Int("node", ref.Index))
	defer func() {
		step.End(err)
	}()

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return err
	}

	el, err := m.resolveNode(page, op, ref)
	if err != nil {
		return err
	}

	if err = el.SelectAllText(); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "select_text_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	if err = el.Input(value); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "input_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	return nil
}

func (m *RodManager) PressKey(ctx context.Context, key string) (err error) {
	const op = "PressKey"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("key", key))
	defer func() {
		step.End(err)
	}()

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return err
	}

	k, ok := rodKeys[key]
	if !ok {
		return apperr.InvalidReqError(op, "key", fmt.Errorf("unsupported key %q", key))
	}

	if err = page.Keyboard.Type(k); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "key_press_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	return nil
}

func (m *RodManager) Screenshot(ctx context.Context) (data []byte, err error) {
	const op = "Screenshot"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	page, err := m.pageFor(ctx, op)
	if err != nil {
		return nil, err
	}

	data, err = page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "screenshot_failed",
			apperr.MetaStage:  apperr.StageScreenshot,
		})
	}

	return data, nil
}

func (m *RodManager) IsReady() bool {
	return m.ready
}
