package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomColors_SeedIsReproducible(t *testing.T) {
	a := NewRandomColors(7)
	b := NewRandomColors(7)

	for i := 0; i < 16; i++ {
		ca, cb := a.Color(), b.Color()
		assert.Equal(t, ca, cb)
		assert.Regexp(t, `^#[0-9A-F]{6}$`, ca)
	}
}

func TestBuildResults_Empty(t *testing.T) {
	assert.Empty(t, BuildResults(nil))
}
