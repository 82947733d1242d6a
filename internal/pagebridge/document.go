// Package pagebridge adapts a live browser page to the marker capability interfaces.
// Each mark pass costs one snapshot evaluation plus one evaluation per overlay.
package pagebridge

import (
	"context"
	"fmt"

	"page-marker/internal/marker"
)

// Evaluator runs a JavaScript function expression in the page with one JSON argument
// (nil for none) and returns its JSON-decoded result.
type Evaluator interface {
	Evaluate(ctx context.Context, script string, arg any) (any, error)
}

// Document implements marker.RenderQuery and marker.OverlayHost over an Evaluator.
// Geometry queries answer from the snapshot taken by the last EnumerateElements call.
type Document struct {
	eval Evaluator
	snap *Snapshot
}

var (
	_ marker.RenderQuery = (*Document)(nil)
	_ marker.OverlayHost = (*Document)(nil)
)

func NewDocument(eval Evaluator) *Document {
	return &Document{eval: eval, snap: &Snapshot{}}
}

// Snapshot returns the last captured snapshot.
func (d *Document) Snapshot() *Snapshot {
	return d.snap
}

func (d *Document) EnumerateElements(ctx context.Context) ([]marker.ElementRef, error) {
	result, err := d.eval.Evaluate(ctx, snapshotScript, nil)
	if err != nil {
		return nil, fmt.Errorf("evaluate snapshot: %w", err)
	}

	snap, err := decodeSnapshot(result)
	if err != nil {
		return nil, err
	}
	d.snap = snap

	refs := make([]marker.ElementRef, len(snap.Nodes))
	for i, n := range snap.Nodes {
		refs[i] = n
	}

	return refs, nil
}

func (d *Document) ClientRects(el marker.ElementRef) []marker.Rect {
	n, ok := el.(*Node)
	if !ok {
		return nil
	}

	return n.rects
}

func (d *Document) ElementAtPoint(x, y float64) marker.ElementRef {
	n := d.snap.elementAt(x, y)
	if n == nil {
		return nil
	}

	return n
}

func (d *Document) ComputedCursor(el marker.ElementRef) string {
	n, ok := el.(*Node)
	if !ok {
		return ""
	}

	return n.cursor
}

func (d *Document) Contains(outer, inner marker.ElementRef) bool {
	o, ok := outer.(*Node)
	if !ok {
		return false
	}

	i, ok := inner.(*Node)
	if !ok {
		return false
	}

	return contains(o, i)
}

func (d *Document) Viewport() (float64, float64) {
	return d.snap.Width, d.snap.Height
}

func (d *Document) InstallStylesheet(ctx context.Context, css string) error {
	if _, err := d.eval.Evaluate(ctx, installStyleScript, css); err != nil {
		return fmt.Errorf("evaluate install stylesheet: %w", err)
	}

	return nil
}

// overlayID is the page-side id of an overlay element.
type overlayID int

func (d *Document) AppendOverlay(ctx context.Context, box marker.OverlayBox) (marker.OverlayNode, error) {
	result, err := d.eval.Evaluate(ctx, appendOverlayScript, map[string]any{
		"label":  box.Label,
		"left":   box.Left,
		"top":    box.Top,
		"width":  box.Width,
		"height": box.Height,
		"color":  box.Color,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate append overlay: %w", err)
	}

	return overlayID(int(toFloat(result))), nil
}

func (d *Document) RemoveOverlay(ctx context.Context, node marker.OverlayNode) error {
	id, ok := node.(overlayID)
	if !ok {
		return fmt.Errorf("unexpected overlay node %T", node)
	}

	if _, err := d.eval.Evaluate(ctx, removeOverlayScript, int(id)); err != nil {
		return fmt.Errorf("evaluate remove overlay: %w", err)
	}

	return nil
}
