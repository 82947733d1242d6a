package marker

// ComputeRects returns the clipped rectangles of el that are not occluded, and their
// summed area. A rectangle is kept when the topmost element at its center is el or a
// descendant of el.
func ComputeRects(el ElementRef, query RenderQuery) ([]ClippedRect, float64) {
	vw, vh := query.Viewport()

	var (
		rects []ClippedRect
		area  float64
	)

	for _, r := range query.ClientRects(el) {
		hit := query.ElementAtPoint(r.Center())
		if hit == nil || !query.Contains(el, hit) {
			continue
		}

		c := Clip(r, vw, vh)
		rects = append(rects, c)
		area += c.Area()
	}

	return rects, area
}
