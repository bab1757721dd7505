package models

import (
	"fmt"
	"sort"
)

// Band identifies one instrument/frequency channel of observations
type Band struct {
	Name       string  `json:"name"`
	Telescope  string  `json:"telescope"`
	Instrument string  `json:"instrument"`
	Frequency  float64 `json:"frequency"` // GHz, sort key for display
}

// Extra is the per-observation annotation; nil when the catalog sent null
type Extra struct {
	Flags []string `json:"flags"`
}

// LightcurveBand holds parallel observation arrays for a single band.
// Index i across ID, Time, IFlux, IUncertainty and Extra describes one observation.
type LightcurveBand struct {
	Band         Band      `json:"band"`
	ID           []int64   `json:"id"`
	Time         []string  `json:"time"` // ISO-8601
	IFlux        []float64 `json:"i_flux"`
	IUncertainty []float64 `json:"i_uncertainty"`
	QFlux        []float64 `json:"q_flux,omitempty"`
	QUncertainty []float64 `json:"q_uncertainty,omitempty"`
	UFlux        []float64 `json:"u_flux,omitempty"`
	UUncertainty []float64 `json:"u_uncertainty,omitempty"`
	Extra        []*Extra  `json:"extra"`
}

// Len returns the number of observations in the band
func (b *LightcurveBand) Len() int {
	return len(b.Time)
}

// FlagsAt returns the quality flags of observation i, or nil when there is no annotation
func (b *LightcurveBand) FlagsAt(i int) []string {
	if i < 0 || i >= len(b.Extra) || b.Extra[i] == nil {
		return nil
	}
	return b.Extra[i].Flags
}

// IsFlagged reports whether observation i carries at least one quality flag
func (b *LightcurveBand) IsFlagged(i int) bool {
	return len(b.FlagsAt(i)) > 0
}

// Label is the legend text for the band
func (b *LightcurveBand) Label() string {
	return fmt.Sprintf("%s, %s, %s", b.Band.Name, b.Band.Telescope, b.Band.Instrument)
}

// Validate checks that the parallel arrays line up
func (b *LightcurveBand) Validate() error {
	n := len(b.Time)
	if len(b.ID) != n || len(b.IFlux) != n || len(b.IUncertainty) != n {
		return fmt.Errorf("band %q: parallel arrays differ in length (id=%d time=%d i_flux=%d i_uncertainty=%d)",
			b.Band.Name, len(b.ID), n, len(b.IFlux), len(b.IUncertainty))
	}
	// extra may be omitted entirely by older catalog versions
	if len(b.Extra) != 0 && len(b.Extra) != n {
		return fmt.Errorf("band %q: extra has %d entries, want %d", b.Band.Name, len(b.Extra), n)
	}
	return nil
}

// LightcurveData is the payload of GET /lightcurves/{id}/all
type LightcurveData struct {
	Source Source           `json:"source"`
	Bands  []LightcurveBand `json:"bands"`
}

// SortBands orders bands by ascending frequency so render order matches legend order
func (d *LightcurveData) SortBands() {
	sort.SliceStable(d.Bands, func(i, j int) bool {
		return d.Bands[i].Band.Frequency < d.Bands[j].Band.Frequency
	})
}

// Validate checks every band
func (d *LightcurveData) Validate() error {
	for i := range d.Bands {
		if err := d.Bands[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BadgeStats summarizes the middle band for the source header
type BadgeStats struct {
	BandName   string  `json:"band_name"`
	MedianFlux float64 `json:"median_flux"`
	MaxFlux    float64 `json:"max_flux"`
}

// LightcurveTableRow is one flattened observation for the data table
type LightcurveTableRow struct {
	ID           int64    `json:"id"`
	BandName     string   `json:"band_name"`
	Frequency    float64  `json:"frequency"`
	Time         string   `json:"time"`
	TimeParsed   int64    `json:"time_parsed"` // Unix milliseconds, 0 if unparseable
	IFlux        float64  `json:"i_flux"`
	IUncertainty float64  `json:"i_uncertainty"`
	Flags        []string `json:"flags"`
	FlagsText    string   `json:"flags_text"`
}

// DataFile is a downloaded file ready to be sent as an attachment
type DataFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
