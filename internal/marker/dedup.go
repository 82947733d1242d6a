package marker

// Dedup drops every candidate whose element contains the element of another candidate,
// so only the innermost member of a containment chain survives. Order is preserved.
// Candidates that merely overlap are kept independently.
func Dedup(candidates []Candidate, query RenderQuery) []Candidate {
	out := make([]Candidate, 0, len(candidates))

	for i, x := range candidates {
		nested := false

		for j, y := range candidates {
			if i == j || x.Element == y.Element {
				continue
			}

			if query.Contains(x.Element, y.Element) {
				nested = true

				break
			}
		}

		if !nested {
			out = append(out, x)
		}
	}

	return out
}
