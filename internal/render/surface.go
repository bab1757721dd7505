package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/plot"
)

// ErrNothingToPlot is returned when no series has a point to draw
var ErrNothingToPlot = errors.New("render: no points to plot")

// ErrDestroyed is returned when a destroyed surface is used
var ErrDestroyed = errors.New("render: surface destroyed")

// baseDotWidth is the marker radius in pixels before the outline width is added
const baseDotWidth = 4.0

// Surface is a server-side plot surface backed by go-chart. It keeps the last
// rendered series and applies marker style patches to them, so the PNG always
// reflects the current selection.
type Surface struct {
	mu        sync.Mutex
	layout    models.PlotLayout
	series    []models.PlotSeries
	renders   int
	destroyed bool
}

// NewSurface creates an empty surface
func NewSurface() *Surface {
	return &Surface{layout: plot.Layout()}
}

// Render replaces the plotted series
func (s *Surface) Render(series []models.PlotSeries, layout models.PlotLayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrDestroyed
	}
	s.series = plot.Clone(series)
	s.layout = layout
	s.renders++
	return nil
}

// ApplyMarkerStyle patches the outline width of a single marker
func (s *Surface) ApplyMarkerStyle(series, point int, width float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed || series < 0 || series >= len(s.series) {
		return
	}
	if point < 0 || point >= len(s.series[series].Points) {
		return
	}
	s.series[series].Points[point].Style = width
}

// Destroy releases the plotted data; later calls are no-ops
func (s *Surface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = nil
	s.destroyed = true
}

// Renders returns how many full renders the surface received
func (s *Surface) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Width returns the current marker width of a point
func (s *Surface) Width(series, point int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if series < 0 || series >= len(s.series) || point < 0 || point >= len(s.series[series].Points) {
		return models.StyleBaseline
	}
	return s.series[series].Points[point].Style
}

// WritePNG draws the current state of the surface as a PNG
func (s *Surface) WritePNG(w io.Writer) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	ch, err := buildChart(s.series, s.layout)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// PNG renders series straight to w without keeping a surface around
func PNG(w io.Writer, series []models.PlotSeries, layout models.PlotLayout) error {
	s := NewSurface()
	if err := s.Render(series, layout); err != nil {
		return err
	}
	return s.WritePNG(w)
}

func buildChart(series []models.PlotSeries, layout models.PlotLayout) (chart.Chart, error) {
	var drawn []chart.Series
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		drawn = append(drawn, timeSeries(s))
	}
	if len(drawn) == 0 {
		return chart.Chart{}, ErrNothingToPlot
	}

	ch := chart.Chart{
		Width:      layout.Width,
		Height:     layout.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 12, Bottom: 12}},
		XAxis: chart.XAxis{
			Name:           layout.XAxisTitle,
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: layout.YAxisTitle,
		},
		Series: drawn,
	}
	if layout.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch, nil
}

func timeSeries(s models.PlotSeries) chart.TimeSeries {
	xs := s.X()
	ys := s.Y()
	widths := s.Widths()
	// go-chart cannot derive a range from a single x value
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(time.Second))
		ys = append(ys, ys[0])
		widths = append(widths, widths[0])
	}

	color := drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#"))
	return chart.TimeSeries{
		Name:    s.Name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    baseDotWidth,
			DotColor:    color,
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				if index < 0 || index >= len(widths) {
					return baseDotWidth
				}
				return baseDotWidth + 2*widths[index]
			},
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				if index >= 0 && index < len(widths) && widths[index] >= models.StyleSelected {
					return drawing.ColorBlack
				}
				return color
			},
		},
	}
}
