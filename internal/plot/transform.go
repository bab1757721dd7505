package plot

import (
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// Layout defaults
const (
	DefaultWidth      = 1280
	DefaultHeight     = 500
	DefaultMarkerSize = 10
	XAxisTitle        = "Date"
	YAxisTitle        = "Flux"
	FluxUnit          = "mJy"
	MarkerLineColor   = "#FFF"
)

// ColorCycle is the fixed series color cycle, indexed by series position
var ColorCycle = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// timeLayouts are tried in order; catalog timestamps sometimes omit the zone
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp. Timestamps without a zone are taken as UTC.
func ParseTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// ColorFor returns the series color for position i
func ColorFor(i int) string {
	if i < 0 {
		i = -i
	}
	return ColorCycle[i%len(ColorCycle)]
}

// Layout returns the fixed plot layout
func Layout() models.PlotLayout {
	colors := make([]string, len(ColorCycle))
	copy(colors, ColorCycle)
	return models.PlotLayout{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		XAxisTitle:  XAxisTitle,
		YAxisTitle:  YAxisTitle,
		ShowLegend:  true,
		ColorCycle:  colors,
		MarkerSize:  DefaultMarkerSize,
		MarkerColor: MarkerLineColor,
	}
}

// Transform restructures a light curve into one series per band, in band order.
// With hideFlagged set, observations carrying any quality flag are left out of
// every derived sequence. The result depends only on its inputs.
func Transform(data *models.LightcurveData, hideFlagged bool) []models.PlotSeries {
	if data == nil {
		return nil
	}

	series := make([]models.PlotSeries, len(data.Bands))
	for i := range data.Bands {
		series[i] = transformBand(&data.Bands[i], i, hideFlagged)
	}
	return series
}

func transformBand(band *models.LightcurveBand, index int, hideFlagged bool) models.PlotSeries {
	s := models.PlotSeries{
		Name:     band.Label(),
		BandName: band.Band.Name,
		Color:    ColorFor(index),
		Points:   make([]models.TaggedPoint, 0, band.Len()),
	}

	for i, raw := range band.Time {
		if hideFlagged && band.IsFlagged(i) {
			s.Dropped++
			continue
		}
		// a short parallel array is a malformed payload; skip rather than panic
		if i >= len(band.ID) || i >= len(band.IFlux) || i >= len(band.IUncertainty) {
			s.Dropped++
			continue
		}
		t, err := ParseTime(raw)
		if err != nil {
			s.Dropped++
			continue
		}

		var flags []string
		if f := band.FlagsAt(i); len(f) > 0 {
			flags = append(flags, f...)
		}

		s.Points = append(s.Points, models.TaggedPoint{
			ID:          band.ID[i],
			Time:        t,
			RawTime:     raw,
			Flux:        band.IFlux[i],
			Uncertainty: band.IUncertainty[i],
			Flags:       flags,
			Style:       models.StyleBaseline,
		})
	}

	return s
}
