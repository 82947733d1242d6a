package marker

import (
	"sort"
	"strings"
)

var interactiveTags = map[string]bool{
	"input":    true,
	"textarea": true,
	"select":   true,
	"button":   true,
	"a":        true,
	"iframe":   true,
	"video":    true,
}

// Include reports whether el looks interactable. It favors recall over precision.
func Include(el ElementRef, query RenderQuery) bool {
	if interactiveTags[normalizeTag(el.TagName())] {
		return true
	}

	if el.HasClickHandler() {
		return true
	}

	return query.ComputedCursor(el) == "pointer"
}

func normalizeTag(tag string) string {
	return strings.ToLower(tag)
}

// normalizeText trims s and collapses every whitespace run into a single space.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ariaLabel(el ElementRef) string {
	v, ok := el.Attribute("aria-label")
	if !ok {
		return ""
	}

	return v
}

// InteractiveTags lists the lowercase tag names that are always candidates.
func InteractiveTags() []string {
	tags := make([]string, 0, len(interactiveTags))
	for tag := range interactiveTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}
