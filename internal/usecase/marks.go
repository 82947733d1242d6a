package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"page-marker/internal/canvas"
	"page-marker/internal/config"
	"page-marker/internal/entity"
	"page-marker/internal/marker"
	"page-marker/internal/pagebridge"
	"page-marker/internal/ports"
	"page-marker/pkg/apperr"
	"page-marker/pkg/logg"
	"page-marker/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	markServiceName = "MarkService"
	markTracer      = "usecase.marks"
)

// MarkService owns the marking session of the single browser page. All operations are
// serialised; the descriptors of the last mark pass are what index-based actions act on.
type MarkService struct {
	mu      sync.Mutex
	config  *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	browser ports.BrowserManager
	colors  marker.ColorSource
	doc     *pagebridge.Document
	marker  *marker.Marker
	session *marker.Session
	last    *entity.MarkResult
	now     func() time.Time
}

type MarkServiceParams struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Browser ports.BrowserManager
}

func NewMarkService(params MarkServiceParams) *MarkService {
	colors := marker.NewRandomColors(params.Config.MarkerConfig.ColorSeed)
	doc := pagebridge.NewDocument(params.Browser)

	return &MarkService{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, markServiceName)),
		tracer:  otel.Tracer(markTracer),
		browser: params.Browser,
		colors:  colors,
		doc:     doc,
		marker: marker.New(marker.Params{
			Query:   doc,
			Host:    doc,
			Colors:  colors,
			Logger:  params.Logger,
			MinArea: params.Config.MarkerConfig.MinArea,
		}),
		session: marker.NewSession(),
		now:     time.Now,
	}
}

// Start launches the browser and opens the start page.
func (s *MarkService) Start(ctx context.Context) (err error) {
	const op = "Start"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.browser.Launch(ctx); err != nil {
		return err
	}

	return s.navigate(ctx, op, s.config.BrowserConfig.StartURL)
}

// Stop closes the browser. Page overlays go with it.
func (s *MarkService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = nil

	return s.browser.Close(ctx)
}

// Mark highlights every interactable element of the page and returns their descriptors.
func (s *MarkService) Mark(ctx context.Context) (resp *entity.MarkResult, err error) {
	const op = "Mark"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.browser.IsReady() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	s.last = nil

	descriptors, err := s.marker.Mark(ctx, s.session)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "mark_failed",
			apperr.MetaStage:  apperr.StageMark,
		})
	}

	step.AddEvent("page marked")

	resp = s.newResult(ctx, entity.MarkTargetPage, s.session.ID, descriptors)
	s.last = resp

	step.SetAttributes(attribute.Int("elements", len(resp.Elements)), attribute.Int("labels", resp.Labels))
	step.Logger().Info("Page marked",
		zap.String(logg.SessionID, s.session.ID.String()),
		zap.String(logg.MarkID, resp.ID.String()),
		zap.Int("elements", len(resp.Elements)),
		zap.Int("labels", resp.Labels))

	return resp, nil
}

// Unmark removes the page overlays and forgets the last descriptors.
func (s *MarkService) Unmark(ctx context.Context) (err error) {
	const op = "Unmark"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = nil

	if err = s.marker.Unmark(ctx, s.session); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "unmark_failed",
			apperr.MetaStage:  apperr.StageOverlay,
		})
	}

	return nil
}

// Annotate runs a mark pass whose overlays are drawn onto a screenshot rather than into
// the page, and saves the image to path (a generated name in the screenshot dir if empty).
func (s *MarkService) Annotate(ctx context.Context, path string) (resp *entity.MarkResult, err error) {
	const op = "Annotate"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.browser.IsReady() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	s.last = nil

	// The screenshot must not contain page overlays.
	if err = s.marker.Unmark(ctx, s.session); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "unmark_failed",
			apperr.MetaStage:  apperr.StageOverlay,
		})
	}

	shot, err := s.browser.Screenshot(ctx)
	if err != nil {
		return nil, err
	}

	cv, err := canvas.New(shot,
		float64(s.config.BrowserConfig.ViewportWidth),
		float64(s.config.BrowserConfig.ViewportHeight))
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "decode_screenshot_failed",
			apperr.MetaStage:  apperr.StageScreenshot,
		})
	}

	session := marker.NewSession()
	m := marker.New(marker.Params{
		Query:   s.doc,
		Host:    cv,
		Colors:  s.colors,
		Logger:  s.logger,
		MinArea: s.config.MarkerConfig.MinArea,
	})

	descriptors, err := m.Mark(ctx, session)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "mark_failed",
			apperr.MetaStage:  apperr.StageMark,
		})
	}

	step.AddEvent("screenshot annotated")

	data, err := cv.EncodePNG()
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "encode_failed",
			apperr.MetaStage:  apperr.StageScreenshot,
		})
	}

	path, err = s.save(op, path, "annotated", data)
	if err != nil {
		return nil, err
	}

	resp = s.newResult(ctx, entity.MarkTargetScreenshot, session.ID, descriptors)
	resp.Screenshot = data
	resp.ScreenshotPath = path
	s.last = resp

	step.Logger().Info("Screenshot annotated",
		zap.String(logg.MarkID, resp.ID.String()),
		zap.String("path", path),
		zap.Int("elements", len(resp.Elements)))

	return resp, nil
}

// Elements returns the descriptors of the last mark pass, nil when the page is not marked.
func (s *MarkService) Elements() []entity.MarkedElement {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return nil
	}

	out := make([]entity.MarkedElement, len(s.last.Elements))
	copy(out, s.last.Elements)

	return out
}

func (s *MarkService) newResult(ctx context.Context, target entity.MarkTarget, sessionID uuid.UUID, descriptors []marker.Descriptor) *entity.MarkResult {
	url, err := s.browser.URL(ctx)
	if err != nil {
		s.logger.Warn("Failed to read page url", zap.Error(err))
	}

	result := &entity.MarkResult{
		ID:        uuid.New(),
		SessionID: sessionID,
		Target:    target,
		URL:       url,
		Elements:  make([]entity.MarkedElement, 0, len(descriptors)),
		CreatedAt: s.now(),
	}

	labels := make(map[int]struct{})
	for _, d := range descriptors {
		labels[d.Index] = struct{}{}

		el := entity.MarkedElement{
			Index:     d.Index,
			Type:      d.Type,
			Text:      d.Text,
			AriaLabel: d.AriaLabel,
			Box: entity.BoundingBox{
				X:      d.Rect.Left,
				Y:      d.Rect.Top,
				Width:  d.Rect.Width,
				Height: d.Rect.Height,
			},
		}
		if n, ok := d.Element.(*pagebridge.Node); ok {
			el.Node = n.Ref()
		}

		result.Elements = append(result.Elements, el)
	}
	result.Labels = len(labels)

	return result
}

// save writes a PNG to path, or to a timestamped file in the screenshot dir.
func (s *MarkService) save(op, path, prefix string, data []byte) (string, error) {
	if path == "" {
		name := fmt.Sprintf("%s-%s.png", prefix, s.now().Format("20060102-150405.000"))
		path = filepath.Join(s.config.MarkerConfig.ScreenshotDir, name)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "create_dir_failed",
				apperr.MetaStage:  apperr.StageScreenshot,
			})
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "write_file_failed",
			apperr.MetaStage:  apperr.StageScreenshot,
		})
	}

	return path, nil
}

// invalidate drops the current mark after an action that may have changed the page.
// The session is replaced since the next mark may run on a new document.
func (s *MarkService) invalidate(ctx context.Context, logger *zap.Logger) {
	s.last = nil

	if s.session.Overlays() > 0 {
		if err := s.marker.Unmark(ctx, s.session); err != nil {
			logger.Warn("Failed to remove overlays", zap.Error(err))
		}
	}

	s.session = marker.NewSession()
}
