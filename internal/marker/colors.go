package marker

import (
	"math/rand"
	"time"
)

const hexDigits = "0123456789ABCDEF"

// ColorSource picks overlay border colors.
type ColorSource interface {
	Color() string
}

// RandomColors yields uniformly random "#RRGGBB" colors. The same seed yields the
// same sequence.
type RandomColors struct {
	rng *rand.Rand
}

// NewRandomColors seeds from the clock when seed is 0.
func NewRandomColors(seed int64) *RandomColors {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomColors{rng: rand.New(rand.NewSource(seed))}
}

func (c *RandomColors) Color() string {
	b := make([]byte, 7)
	b[0] = '#'

	for i := 1; i < len(b); i++ {
		b[i] = hexDigits[c.rng.Intn(len(hexDigits))]
	}

	return string(b)
}
