package marker

import (
	"context"
	"errors"
	"fmt"
)

type fakeNode struct {
	tag     string
	text    string
	attrs   map[string]string
	onclick bool
	cursor  string
	z       int
	rects   []Rect
	parent  *fakeNode
	order   int
}

func (n *fakeNode) TagName() string     { return n.tag }
func (n *fakeNode) TextContent() string { return n.text }
func (n *fakeNode) HasClickHandler() bool {
	return n.onclick
}

func (n *fakeNode) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// fakeDocument is an in-memory RenderQuery. The topmost element at a point is the one
// with the highest z, ties broken by later tree order.
type fakeDocument struct {
	nodes   []*fakeNode
	vw, vh  float64
	enumErr error
	scans   int
}

func newFakeDocument(vw, vh float64) *fakeDocument {
	return &fakeDocument{vw: vw, vh: vh}
}

func (d *fakeDocument) add(parent *fakeNode, n *fakeNode) *fakeNode {
	n.parent = parent
	n.order = len(d.nodes)
	if parent != nil && n.z < parent.z {
		n.z = parent.z
	}
	d.nodes = append(d.nodes, n)

	return n
}

func (d *fakeDocument) EnumerateElements(context.Context) ([]ElementRef, error) {
	d.scans++
	if d.enumErr != nil {
		return nil, d.enumErr
	}

	out := make([]ElementRef, len(d.nodes))
	for i, n := range d.nodes {
		out[i] = n
	}

	return out, nil
}

func (d *fakeDocument) ClientRects(el ElementRef) []Rect {
	return el.(*fakeNode).rects
}

func (d *fakeDocument) ElementAtPoint(x, y float64) ElementRef {
	if x < 0 || y < 0 || x > d.vw || y > d.vh {
		return nil
	}

	var top *fakeNode
	for _, n := range d.nodes {
		for _, r := range n.rects {
			if x < r.Left || x > r.Right() || y < r.Top || y > r.Bottom() {
				continue
			}

			if top == nil || n.z > top.z || (n.z == top.z && n.order > top.order) {
				top = n
			}
		}
	}

	if top == nil {
		return nil
	}

	return top
}

func (d *fakeDocument) ComputedCursor(el ElementRef) string {
	return el.(*fakeNode).cursor
}

func (d *fakeDocument) Contains(outer, inner ElementRef) bool {
	o, _ := outer.(*fakeNode)
	for n, _ := inner.(*fakeNode); n != nil; n = n.parent {
		if n == o {
			return true
		}
	}

	return false
}

func (d *fakeDocument) Viewport() (float64, float64) {
	return d.vw, d.vh
}

type fakeOverlay struct {
	id  int
	box OverlayBox
}

type fakeHost struct {
	live        map[int]OverlayBox
	stylesheets []string
	next        int
	appends     int
	failAfter   int
	removeErr   error
}

func newFakeHost() *fakeHost {
	return &fakeHost{live: map[int]OverlayBox{}, failAfter: -1}
}

func (h *fakeHost) InstallStylesheet(_ context.Context, css string) error {
	h.stylesheets = append(h.stylesheets, css)
	return nil
}

func (h *fakeHost) AppendOverlay(_ context.Context, box OverlayBox) (OverlayNode, error) {
	if h.failAfter >= 0 && h.appends >= h.failAfter {
		return nil, errors.New("append refused")
	}
	h.appends++
	h.next++
	h.live[h.next] = box

	return &fakeOverlay{id: h.next, box: box}, nil
}

func (h *fakeHost) RemoveOverlay(_ context.Context, node OverlayNode) error {
	o, ok := node.(*fakeOverlay)
	if !ok {
		return fmt.Errorf("unexpected node %T", node)
	}
	delete(h.live, o.id)

	return h.removeErr
}

type fixedColors string

func (c fixedColors) Color() string { return string(c) }
