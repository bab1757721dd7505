package plot

import (
	"sort"
	"strings"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// NoFlagsText is shown for observations without quality flags
const NoFlagsText = "n/a"

// FlagsText joins flags for display
func FlagsText(flags []string) string {
	if len(flags) == 0 {
		return NoFlagsText
	}
	return strings.Join(flags, ", ")
}

// TableRows flattens every observation of every band into table rows sorted by time.
// Flagged observations are always included; the hide toggle only affects the plot.
func TableRows(data *models.LightcurveData) []models.LightcurveTableRow {
	if data == nil {
		return nil
	}

	var rows []models.LightcurveTableRow
	for b := range data.Bands {
		band := &data.Bands[b]
		for i, id := range band.ID {
			if i >= len(band.Time) || i >= len(band.IFlux) || i >= len(band.IUncertainty) {
				break
			}
			var parsed int64
			if t, err := ParseTime(band.Time[i]); err == nil {
				parsed = t.UnixMilli()
			}
			flags := band.FlagsAt(i)
			if flags == nil {
				flags = []string{}
			}
			rows = append(rows, models.LightcurveTableRow{
				ID:           id,
				BandName:     band.Band.Name,
				Frequency:    band.Band.Frequency,
				Time:         band.Time[i],
				TimeParsed:   parsed,
				IFlux:        band.IFlux[i],
				IUncertainty: band.IUncertainty[i],
				Flags:        flags,
				FlagsText:    FlagsText(flags),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TimeParsed < rows[j].TimeParsed
	})
	return rows
}
