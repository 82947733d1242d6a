package marker

import "math"

// MinArea is the smallest visible area, in square pixels, a candidate may have.
const MinArea = 20.0

// ClippedRect is a kept rectangle clipped to the viewport.
type ClippedRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area is zero for degenerate rectangles.
func (r ClippedRect) Area() float64 {
	return r.Width * r.Height
}

// Clip bounds r to [0, vw] x [0, vh].
func Clip(r Rect, vw, vh float64) ClippedRect {
	c := ClippedRect{
		Left:   math.Max(0, r.Left),
		Top:    math.Max(0, r.Top),
		Right:  math.Min(vw, r.Right()),
		Bottom: math.Min(vh, r.Bottom()),
	}
	c.Width = math.Max(0, c.Right-c.Left)
	c.Height = math.Max(0, c.Bottom-c.Top)

	return c
}

// Candidate is an element that passed the interactability policy and visibility filtering.
type Candidate struct {
	Element   ElementRef
	Type      string
	Text      string
	AriaLabel string
	Rects     []ClippedRect
	Area      float64
}

// Descriptor is one entry of the result sequence, emitted per kept rectangle.
type Descriptor struct {
	// Index is the candidate position and the number drawn on its overlay.
	Index     int         `json:"index"`
	Type      string      `json:"type"`
	Text      string      `json:"text"`
	AriaLabel string      `json:"ariaLabel"`
	Element   ElementRef  `json:"-"`
	Rect      ClippedRect `json:"rect"`
}
