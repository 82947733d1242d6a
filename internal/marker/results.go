package marker

// BuildResults flattens candidates into one descriptor per kept rectangle, in candidate
// order then rectangle order. Index matches the label drawn by the renderer.
func BuildResults(candidates []Candidate) []Descriptor {
	n := 0
	for _, c := range candidates {
		n += len(c.Rects)
	}

	out := make([]Descriptor, 0, n)

	for index, c := range candidates {
		for _, r := range c.Rects {
			out = append(out, Descriptor{
				Index:     index,
				Type:      c.Type,
				Text:      c.Text,
				AriaLabel: c.AriaLabel,
				Element:   c.Element,
				Rect:      r,
			})
		}
	}

	return out
}
