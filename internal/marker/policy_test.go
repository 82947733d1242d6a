package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInclude(t *testing.T) {
	doc := newFakeDocument(100, 100)

	tests := []struct {
		name string
		node *fakeNode
		want bool
	}{
		{"input", &fakeNode{tag: "INPUT"}, true},
		{"textarea", &fakeNode{tag: "TEXTAREA"}, true},
		{"select", &fakeNode{tag: "SELECT"}, true},
		{"button", &fakeNode{tag: "BUTTON"}, true},
		{"anchor", &fakeNode{tag: "A"}, true},
		{"iframe", &fakeNode{tag: "IFRAME"}, true},
		{"video", &fakeNode{tag: "VIDEO"}, true},
		{"lowercase tag", &fakeNode{tag: "button"}, true},
		{"click handler", &fakeNode{tag: "DIV", onclick: true}, true},
		{"pointer cursor", &fakeNode{tag: "SPAN", cursor: "pointer"}, true},
		{"text cursor", &fakeNode{tag: "SPAN", cursor: "text"}, false},
		{"plain div", &fakeNode{tag: "DIV", cursor: "auto"}, false},
		{"label", &fakeNode{tag: "LABEL"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Include(tt.node, doc))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "", normalizeText(" \n\t "))
	assert.Equal(t, "Add to cart", normalizeText("\n   Add   to\tcart\n"))
	assert.Equal(t, "a b", normalizeText("a\nb"))
}

func TestAriaLabelFallback(t *testing.T) {
	assert.Equal(t, "", ariaLabel(&fakeNode{tag: "BUTTON"}))
	assert.Equal(t, "Close", ariaLabel(&fakeNode{tag: "BUTTON", attrs: map[string]string{"aria-label": "Close"}}))
}
