package position

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butecodosdevs/buteco-core/internal/position/entity"
)

func TestRenderChart(t *testing.T) {
	points := []entity.GraphPoint{
		{DiscordID: "1", Name: "Alice", X: 5, Y: 5},
		{DiscordID: "2", Name: "Bruno", X: -5, Y: 5},
		{DiscordID: "3", Name: "Carla", X: 5, Y: -5},
		{DiscordID: "4", Name: "Davi", X: -10, Y: -10},
		{DiscordID: "5", Name: "Eva", X: 0, Y: 0},
	}
	img, err := RenderChart(points)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, chartWidth, cfg.Width)
	assert.Equal(t, chartHeight, cfg.Height)
}

func TestRenderChartSingleQuadrant(t *testing.T) {
	img, err := RenderChart([]entity.GraphPoint{{DiscordID: "1", Name: "Alice", X: 1, Y: 1}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}

func TestRenderChartEmpty(t *testing.T) {
	img, err := RenderChart(nil)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
}

func TestPointLabel(t *testing.T) {
	tests := []struct {
		p    entity.GraphPoint
		want string
	}{
		{entity.GraphPoint{Name: "Alice", X: 1, Y: 1}, "Alice (Moderado)"},
		{entity.GraphPoint{Name: "Bruno", X: 3, Y: 4}, "Bruno (Forte)"},
		{entity.GraphPoint{Name: "Carla", X: -10, Y: 10}, "Carla (Extremo)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pointLabel(tt.p))
	}
}
