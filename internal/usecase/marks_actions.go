package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"page-marker/internal/entity"
	"page-marker/internal/pagebridge"
	"page-marker/pkg/apperr"
	"page-marker/pkg/logg"
	"page-marker/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// NoElement selects the window instead of a marked element in Scroll.
const NoElement = -1

// element returns the first descriptor carrying the given overlay number.
func (s *MarkService) element(op string, index int) (entity.MarkedElement, error) {
	if s.last == nil {
		return entity.MarkedElement{}, apperr.WrapErrorWithReason(op, apperr.CodeNotMarked, "page_not_marked")
	}

	for _, el := range s.last.Elements {
		if el.Index == index {
			return el, nil
		}
	}

	return entity.MarkedElement{}, apperr.Wrap(op, apperr.CodeNotFound,
		fmt.Errorf("index %d out of bounds, only %d available", index, s.last.Labels),
		map[string]any{
			apperr.MetaReason: "index_out_of_bounds",
			apperr.MetaIndex:  index,
			apperr.MetaLabels: s.last.Labels,
		})
}

func (s *MarkService) done(action entity.ActionType, index int, message string) *entity.ActionResult {
	return &entity.ActionResult{
		Action:    action,
		Index:     index,
		Success:   true,
		Message:   message,
		Timestamp: s.now(),
	}
}

// Open navigates to url. A missing scheme defaults to https.
func (s *MarkService) Open(ctx context.Context, url string) (resp *entity.ActionResult, err error) {
	const op = "Open"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.InvalidReqError(op, "url", errors.New("url cannot be empty"))
	}

	if !strings.Contains(url, "://") {
		url = "https://" + url
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.navigate(ctx, op, url); err != nil {
		return nil, err
	}

	return s.done(entity.ActionTypeOpen, NoElement, url), nil
}

func (s *MarkService) navigate(ctx context.Context, op, url string) error {
	s.invalidate(ctx, s.logger.With(zap.String(logg.Operation, op)))

	if err := s.browser.Navigate(ctx, url); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "navigation_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	return nil
}

// Click clicks the element labelled index in the last mark pass.
func (s *MarkService) Click(ctx context.Context, index int) (resp *entity.ActionResult, err error) {
	const op = "Click"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Index, index))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.Int("index", index))
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.element(op, index)
	if err != nil {
		return nil, err
	}

	if err = s.browser.ClickNode(ctx, el.Node); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "click_failed",
			apperr.MetaStage:  apperr.StageInteraction,
			apperr.MetaIndex:  index,
		})
	}

	s.invalidate(ctx, logger)
	logger.Info("Element clicked", zap.String("type", el.Type))

	return s.done(entity.ActionTypeClick, index, el.Type), nil
}

// Type replaces the content of the element labelled index with text and presses Enter.
func (s *MarkService) Type(ctx context.Context, index int, text string) (resp *entity.ActionResult, err error) {
	const op = "Type"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Index, index))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.Int("index", index))
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.element(op, index)
	if err != nil {
		return nil, err
	}

	if err = s.browser.FillNode(ctx, el.Node, text); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "fill_failed",
			apperr.MetaStage:  apperr.StageInteraction,
			apperr.MetaIndex:  index,
		})
	}

	step.AddEvent("text filled")

	if err = s.browser.PressKey(ctx, "Enter"); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "submit_failed",
			apperr.MetaStage:  apperr.StageInteraction,
			apperr.MetaIndex:  index,
		})
	}

	s.invalidate(ctx, logger)

	return s.done(entity.ActionTypeType, index, text), nil
}

// Scroll scrolls the window, or the element labelled index unless it is NoElement, by
// one scroll step in dir.
func (s *MarkService) Scroll(ctx context.Context, dir entity.ScrollDirection, index int) (resp *entity.ActionResult, err error) {
	const op = "Scroll"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Index, index))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("direction", string(dir)), attribute.Int("index", index))
	defer func() {
		step.End(err)
	}()

	dy := s.config.MarkerConfig.ScrollStep
	switch dir {
	case entity.ScrollDown:
	case entity.ScrollUp:
		dy = -dy
	default:
		return nil, apperr.InvalidReqError(op, "direction", fmt.Errorf("direction must be up or down, got %q", dir))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	arg := map[string]any{"generation": 0, "index": NoElement, "dy": dy}
	if index != NoElement {
		el, err := s.element(op, index)
		if err != nil {
			return nil, err
		}
		arg["generation"] = el.Node.Generation
		arg["index"] = el.Node.Index
	}

	if _, err = s.browser.Evaluate(ctx, pagebridge.ScrollScript, arg); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "scroll_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	s.invalidate(ctx, logger)

	return s.done(entity.ActionTypeScroll, index, string(dir)), nil
}

// Wait pauses for the configured wait duration or until ctx is done.
func (s *MarkService) Wait(ctx context.Context) (*entity.ActionResult, error) {
	const op = "Wait"

	timer := time.NewTimer(s.config.MarkerConfig.Wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		err := ctx.Err()
		code := apperr.CodeCancelledByUser
		if errors.Is(err, context.DeadlineExceeded) {
			code = apperr.CodeTimeout
		}

		return nil, apperr.Wrap(op, code, err, map[string]any{
			apperr.MetaReason: "wait_interrupted",
		})
	case <-timer.C:
	}

	return s.done(entity.ActionTypeWait, NoElement, s.config.MarkerConfig.Wait.String()), nil
}

func (s *MarkService) GoBack(ctx context.Context) (resp *entity.ActionResult, err error) {
	const op = "GoBack"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate(ctx, logger)

	if err = s.browser.GoBack(ctx); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "go_back_failed",
			apperr.MetaStage:  apperr.StageNavigation,
		})
	}

	return s.done(entity.ActionTypeGoBack, NoElement, ""), nil
}

// Restart returns to the start page.
func (s *MarkService) Restart(ctx context.Context) (resp *entity.ActionResult, err error) {
	const op = "Restart"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	url := s.config.BrowserConfig.StartURL
	if err = s.navigate(ctx, op, url); err != nil {
		return nil, err
	}

	return s.done(entity.ActionTypeRestart, NoElement, url), nil
}

// Screenshot saves the page as it currently looks, overlays included, and returns the path.
func (s *MarkService) Screenshot(ctx context.Context, path string) (saved string, err error) {
	const op = "Screenshot"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}

	return s.save(op, path, "page", data)
}
