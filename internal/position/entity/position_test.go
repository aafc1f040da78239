package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInRange(t *testing.T) {
	assert.True(t, InRange(-10))
	assert.True(t, InRange(10))
	assert.True(t, InRange(0))
	assert.False(t, InRange(10.01))
	assert.False(t, InRange(-10.01))
	assert.False(t, InRange(math.NaN()))
	assert.False(t, InRange(math.Inf(1)))
}

func TestQuadrantOf(t *testing.T) {
	tests := []struct {
		x, y float64
		want Quadrant
	}{
		{1, 1, AuthoritarianRight},
		{-1, 1, AuthoritarianLeft},
		{1, -1, LibertarianRight},
		{-1, -1, LibertarianLeft},
		{0, 0, LibertarianLeft},
		{0, 5, LibertarianLeft},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QuadrantOf(tt.x, tt.y), "(%v,%v)", tt.x, tt.y)
	}
}

func TestIntensityOf(t *testing.T) {
	i, d := IntensityOf(3, 4)
	assert.Equal(t, Strong, i)
	assert.InDelta(t, 5.0, d, 1e-9)

	i, _ = IntensityOf(1, 1)
	assert.Equal(t, Moderate, i)

	i, _ = IntensityOf(-10, 10)
	assert.Equal(t, Extreme, i)
}
