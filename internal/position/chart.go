package position

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/butecodosdevs/buteco-core/internal/position/entity"
)

const (
	chartWidth  = 1200
	chartHeight = 1200
)

var (
	chartBackground = drawing.ColorFromHex("ffffff")
	chartAxis       = drawing.ColorFromHex("555555")
	chartText       = drawing.ColorFromHex("222222")

	quadrantColors = map[entity.Quadrant]drawing.Color{
		entity.AuthoritarianRight: drawing.ColorFromHex("3498db"),
		entity.AuthoritarianLeft:  drawing.ColorFromHex("e74c3c"),
		entity.LibertarianRight:   drawing.ColorFromHex("f1c40f"),
		entity.LibertarianLeft:    drawing.ColorFromHex("2ecc71"),
	}
)

// RenderChart draws the political compass as a PNG, one coloured series per
// quadrant and each point labelled with its owner's name and intensity.
func RenderChart(points []entity.GraphPoint) ([]byte, error) {
	if len(points) == 0 {
		return renderEmptyChart()
	}

	xs := make(map[entity.Quadrant][]float64)
	ys := make(map[entity.Quadrant][]float64)
	labels := make([]chart.Value2, 0, len(points))
	for _, p := range points {
		q := p.Quadrant()
		xs[q] = append(xs[q], p.X)
		ys[q] = append(ys[q], p.Y)
		labels = append(labels, chart.Value2{XValue: p.X, YValue: p.Y, Label: pointLabel(p)})
	}

	series := make([]chart.Series, 0, len(entity.Quadrants)+1)
	for _, q := range entity.Quadrants {
		if len(xs[q]) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name: string(q),
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    8,
				DotColor:    quadrantColors[q],
			},
			XValues: xs[q],
			YValues: ys[q],
		})
	}
	series = append(series, chart.AnnotationSeries{
		Style: chart.Style{
			FontColor:   chartText,
			FontSize:    9,
			StrokeColor: chartAxis,
		},
		Annotations: labels,
	})

	graph := chart.Chart{
		Title:  fmt.Sprintf("Bússola Política (%d)", len(points)),
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis: chart.XAxis{
			Name:           "Esquerda ← → Direita",
			Range:          &chart.ContinuousRange{Min: entity.MinCoordinate, Max: entity.MaxCoordinate},
			Ticks:          axisTicks(),
			GridLines:      []chart.GridLine{{Value: 0}},
			GridMajorStyle: chart.Style{StrokeColor: chartAxis, StrokeWidth: 1},
			Style:          chart.Style{FontColor: chartText},
		},
		YAxis: chart.YAxis{
			Name:           "Libertário ↓ ↑ Autoritário",
			Range:          &chart.ContinuousRange{Min: entity.MinCoordinate, Max: entity.MaxCoordinate},
			Ticks:          axisTicks(),
			GridLines:      []chart.GridLine{{Value: 0}},
			GridMajorStyle: chart.Style{StrokeColor: chartAxis, StrokeWidth: 1},
			Style:          chart.Style{FontColor: chartText},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// pointLabel reads e.g. "Alice (Forte)".
func pointLabel(p entity.GraphPoint) string {
	intensity, _ := entity.IntensityOf(p.X, p.Y)
	return fmt.Sprintf("%s (%s)", p.Name, intensity)
}

func axisTicks() []chart.Tick {
	ticks := make([]chart.Tick, 0, 11)
	for v := entity.MinCoordinate; v <= entity.MaxCoordinate; v += 2 {
		ticks = append(ticks, chart.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}
	return ticks
}

// renderEmptyChart draws the placeholder straight on a renderer since
// chart.Chart refuses to render without a series.
func renderEmptyChart() ([]byte, error) {
	const (
		msg    = "Nenhuma posição política foi definida ainda"
		width  = 600
		height = 200
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load chart font: %w", err)
	}

	r.SetFillColor(chartBackground)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(chartText)
	r.SetFontSize(14.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buf := bytes.NewBuffer(nil)
	if err := r.Save(buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
