package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want ClippedRect
	}{
		{
			name: "inside",
			rect: Rect{Left: 10, Top: 10, Width: 100, Height: 30},
			want: ClippedRect{Left: 10, Top: 10, Right: 110, Bottom: 40, Width: 100, Height: 30},
		},
		{
			name: "overflows top left",
			rect: Rect{Left: -10, Top: -20, Width: 50, Height: 50},
			want: ClippedRect{Left: 0, Top: 0, Right: 40, Bottom: 30, Width: 40, Height: 30},
		},
		{
			name: "overflows bottom right",
			rect: Rect{Left: 180, Top: 90, Width: 50, Height: 50},
			want: ClippedRect{Left: 180, Top: 90, Right: 200, Bottom: 100, Width: 20, Height: 10},
		},
		{
			name: "outside is degenerate",
			rect: Rect{Left: 300, Top: 10, Width: 50, Height: 50},
			want: ClippedRect{Left: 300, Top: 10, Right: 200, Bottom: 60, Width: 0, Height: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clip(tt.rect, 200, 100)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Area(), 0.0)
		})
	}
}

func TestComputeRects_KeepsRectWhenDescendantIsOnTop(t *testing.T) {
	doc := newFakeDocument(400, 300)
	link := doc.add(nil, &fakeNode{tag: "A", rects: []Rect{{10, 10, 100, 20}}})
	doc.add(link, &fakeNode{tag: "IMG", rects: []Rect{{10, 10, 100, 20}}})

	rects, area := ComputeRects(link, doc)
	assert.Len(t, rects, 1)
	assert.Equal(t, 2000.0, area)
}

func TestComputeRects_DropsOccludedRectOnly(t *testing.T) {
	doc := newFakeDocument(400, 300)
	link := doc.add(nil, &fakeNode{tag: "A", rects: []Rect{{10, 10, 100, 20}, {10, 40, 50, 20}}})
	doc.add(nil, &fakeNode{tag: "DIV", z: 5, rects: []Rect{{0, 35, 400, 40}}})

	rects, area := ComputeRects(link, doc)
	assert.Equal(t, []ClippedRect{{Left: 10, Top: 10, Right: 110, Bottom: 30, Width: 100, Height: 20}}, rects)
	assert.Equal(t, 2000.0, area)
}

func TestComputeRects_CenterOutsideViewport(t *testing.T) {
	doc := newFakeDocument(400, 300)
	button := doc.add(nil, &fakeNode{tag: "BUTTON", rects: []Rect{{500, 10, 100, 20}}})

	rects, area := ComputeRects(button, doc)
	assert.Empty(t, rects)
	assert.Zero(t, area)
}
