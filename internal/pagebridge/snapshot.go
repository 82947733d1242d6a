package pagebridge

import (
	"errors"

	"page-marker/internal/entity"
	"page-marker/internal/marker"
)

var errUnexpectedResult = errors.New("unexpected snapshot result")

// Node is one element of a snapshot.
type Node struct {
	generation int
	index      int
	parent     *Node

	tag       string
	text      string
	ariaLabel string
	hasAria   bool
	onclick   bool
	cursor    string
	rects     []marker.Rect
}

func (n *Node) TagName() string       { return n.tag }
func (n *Node) TextContent() string   { return n.text }
func (n *Node) HasClickHandler() bool { return n.onclick }

func (n *Node) Attribute(name string) (string, bool) {
	if name == "aria-label" {
		return n.ariaLabel, n.hasAria
	}

	return "", false
}

// Ref identifies the element on the page for later actions.
func (n *Node) Ref() entity.NodeRef {
	return entity.NodeRef{Generation: n.generation, Index: n.index}
}

type point struct {
	x, y float64
}

// Snapshot is the decoded result of one snapshot evaluation. Hit-tests were resolved
// page-side at every rect center, so ElementAtPoint answers only for those points.
type Snapshot struct {
	Generation int
	Width      float64
	Height     float64
	Nodes      []*Node

	hits map[point]*Node
}

func decodeSnapshot(result interface{}) (*Snapshot, error) {
	root, ok := result.(map[string]interface{})
	if !ok {
		return nil, errUnexpectedResult
	}

	viewport := getMap(root, "viewport")
	items := getSlice(root, "elements")
	if viewport == nil || items == nil {
		return nil, errUnexpectedResult
	}

	snap := &Snapshot{
		Generation: getInt(root, "generation", 0),
		Width:      getFloat(viewport, "width"),
		Height:     getFloat(viewport, "height"),
		Nodes:      make([]*Node, len(items)),
		hits:       make(map[point]*Node),
	}

	for i := range items {
		snap.Nodes[i] = &Node{generation: snap.Generation, index: i}
	}

	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		n := snap.Nodes[i]
		n.tag = getString(m, "tag")
		n.text = getString(m, "text")
		n.ariaLabel, n.hasAria = getOptionalString(m, "ariaLabel")
		n.onclick = getBool(m, "onclick")
		n.cursor = getString(m, "cursor")
		n.parent = snap.node(getInt(m, "parent", -1))

		for _, raw := range getSlice(m, "rects") {
			rm, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}

			r := marker.Rect{
				Left:   getFloat(rm, "left"),
				Top:    getFloat(rm, "top"),
				Width:  getFloat(rm, "width"),
				Height: getFloat(rm, "height"),
			}
			n.rects = append(n.rects, r)

			if hit := snap.node(getInt(rm, "hit", -1)); hit != nil {
				x, y := r.Center()
				snap.hits[point{x, y}] = hit
			}
		}
	}

	return snap, nil
}

func (s *Snapshot) node(i int) *Node {
	if i < 0 || i >= len(s.Nodes) {
		return nil
	}

	return s.Nodes[i]
}

func (s *Snapshot) elementAt(x, y float64) *Node {
	return s.hits[point{x, y}]
}

// contains mirrors DOM Node.contains: a node contains itself.
func contains(outer, inner *Node) bool {
	for n := inner; n != nil; n = n.parent {
		if n == outer {
			return true
		}
	}

	return false
}
