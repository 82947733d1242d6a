package marker

import "context"

// ElementRef is an opaque reference to a node of the rendered tree.
// Implementations must be comparable; two refs denote the same node iff they are equal.
type ElementRef interface {
	TagName() string
	TextContent() string
	Attribute(name string) (string, bool)
	HasClickHandler() bool
}

// Rect is a bounding rectangle in viewport coordinates as reported by the render engine.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the point used for the occlusion hit-test.
func (r Rect) Center() (float64, float64) {
	return r.Left + r.Width/2, r.Top + r.Height/2
}

// RenderQuery exposes the geometry and hit-testing of a rendered document.
type RenderQuery interface {
	// EnumerateElements returns every element of the document in tree order.
	// Later calls on the same RenderQuery answer from that snapshot.
	EnumerateElements(ctx context.Context) ([]ElementRef, error)
	ClientRects(el ElementRef) []Rect
	// ElementAtPoint returns the topmost element at (x, y), or nil.
	ElementAtPoint(x, y float64) ElementRef
	ComputedCursor(el ElementRef) string
	// Contains reports whether inner is outer or one of its descendants.
	Contains(outer, inner ElementRef) bool
	Viewport() (width, height float64)
}

// OverlayNode is a handle to a rendered marker owned by a Session.
type OverlayNode interface{}

// OverlayBox describes one highlight box and its numeric label.
type OverlayBox struct {
	Index  int
	Label  string
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Color  string
}

// OverlayHost creates and destroys overlay nodes.
type OverlayHost interface {
	InstallStylesheet(ctx context.Context, css string) error
	AppendOverlay(ctx context.Context, box OverlayBox) (OverlayNode, error)
	RemoveOverlay(ctx context.Context, node OverlayNode) error
}
