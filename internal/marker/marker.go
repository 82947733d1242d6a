// Package marker finds the interactable controls of a rendered page, draws numbered
// overlays over them and returns descriptors ordered by overlay number.
package marker

import (
	"context"
	"fmt"
	"strconv"

	"page-marker/pkg/logg"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const markerName = "Marker"

// scrollbarCSS is installed once per session before the first overlays are drawn.
const scrollbarCSS = `
::-webkit-scrollbar {
    width: 10px;
}
::-webkit-scrollbar-track {
    background: #27272a;
}
::-webkit-scrollbar-thumb {
    background: #888;
    border-radius: 0.375rem;
}
::-webkit-scrollbar-thumb:hover {
    background: #555;
}
`

// Marker runs mark and unmark passes against one document.
type Marker struct {
	query   RenderQuery
	host    OverlayHost
	colors  ColorSource
	logger  *zap.Logger
	minArea float64
}

type Params struct {
	Query  RenderQuery
	Host   OverlayHost
	Colors ColorSource
	Logger *zap.Logger
	// MinArea defaults to MinArea when zero.
	MinArea float64
}

func New(params Params) *Marker {
	m := &Marker{
		query:   params.Query,
		host:    params.Host,
		colors:  params.Colors,
		logger:  params.Logger,
		minArea: params.MinArea,
	}

	if m.colors == nil {
		m.colors = NewRandomColors(0)
	}

	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	if m.minArea <= 0 {
		m.minArea = MinArea
	}

	m.logger = m.logger.With(zap.String(logg.Layer, markerName))

	return m
}

// Mark clears previous overlays, scans the document, draws one numbered box per kept
// rectangle of every surviving candidate and returns the descriptors in label order.
// On failure no overlay created by this pass is left behind.
func (m *Marker) Mark(ctx context.Context, s *Session) (descriptors []Descriptor, err error) {
	const op = "Mark"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.SessionID, s.ID.String()))

	defer func() {
		if err != nil {
			s.state = StateClean
		}
	}()

	if err := m.Unmark(ctx, s); err != nil {
		return nil, fmt.Errorf("unmark: %w", err)
	}

	if err := m.ensureStyles(ctx, s); err != nil {
		return nil, fmt.Errorf("install styles: %w", err)
	}

	candidates, err := m.scan(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	s.state = StateDeduping
	survivors := Dedup(candidates, m.query)

	if err := m.render(ctx, s, survivors); err != nil {
		if rbErr := m.Unmark(ctx, s); rbErr != nil {
			logger.Warn("Failed to roll back partial overlays", zap.Error(rbErr))
		}

		return nil, fmt.Errorf("render: %w", err)
	}

	descriptors = BuildResults(survivors)
	s.state = StateMarked

	logger.Debug("Page marked",
		zap.Int("candidates", len(candidates)),
		zap.Int("survivors", len(survivors)),
		zap.Int("overlays", s.Overlays()),
		zap.Int("descriptors", len(descriptors)))

	return descriptors, nil
}

// Unmark removes every overlay tracked by s. The registry is empty afterwards even if
// some removals failed; those failures are returned together.
func (m *Marker) Unmark(ctx context.Context, s *Session) error {
	nodes := s.drain()
	s.state = StateClean

	var errs error
	for _, node := range nodes {
		errs = multierr.Append(errs, m.host.RemoveOverlay(ctx, node))
	}

	return errs
}

func (m *Marker) ensureStyles(ctx context.Context, s *Session) error {
	if s.styleInstalled {
		return nil
	}

	if err := m.host.InstallStylesheet(ctx, scrollbarCSS); err != nil {
		return err
	}

	s.styleInstalled = true

	return nil
}

func (m *Marker) scan(ctx context.Context, s *Session) ([]Candidate, error) {
	s.state = StateScanning

	elements, err := m.query.EnumerateElements(ctx)
	if err != nil {
		return nil, err
	}

	s.state = StateFiltering

	var candidates []Candidate
	for _, el := range elements {
		if !Include(el, m.query) {
			continue
		}

		rects, area := ComputeRects(el, m.query)
		if area < m.minArea {
			continue
		}

		candidates = append(candidates, Candidate{
			Element:   el,
			Type:      normalizeTag(el.TagName()),
			Text:      normalizeText(el.TextContent()),
			AriaLabel: ariaLabel(el),
			Rects:     rects,
			Area:      area,
		})
	}

	return candidates, nil
}

func (m *Marker) render(ctx context.Context, s *Session, candidates []Candidate) error {
	s.state = StateRendering

	for index, c := range candidates {
		label := strconv.Itoa(index)

		for _, r := range c.Rects {
			node, err := m.host.AppendOverlay(ctx, OverlayBox{
				Index:  index,
				Label:  label,
				Left:   r.Left,
				Top:    r.Top,
				Width:  r.Width,
				Height: r.Height,
				Color:  m.colors.Color(),
			})
			if err != nil {
				return err
			}

			s.track(node)
		}
	}

	return nil
}
