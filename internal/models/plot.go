package models

import "time"

// Marker outline widths
const (
	StyleBaseline = 0.0
	StyleHover    = 1.0
	StyleSelected = 2.0
)

// TaggedPoint is one plotted observation. ID is the catalog measurement id,
// carried so a filtered series never relies on positional correspondence.
type TaggedPoint struct {
	ID          int64     `json:"id"`
	Time        time.Time `json:"x"`
	RawTime     string    `json:"raw_time"`
	Flux        float64   `json:"y"`
	Uncertainty float64   `json:"error_y"`
	Flags       []string  `json:"flags,omitempty"`
	Style       float64   `json:"style"`
}

// PlotSeries is the plotting-ready projection of one band
type PlotSeries struct {
	Name     string        `json:"name"` // legend label
	BandName string        `json:"band_name"`
	Color    string        `json:"color"`
	Points   []TaggedPoint `json:"points"`
	Dropped  int           `json:"dropped"` // observations left out by the filter or unparseable
}

// X returns the time sequence
func (s *PlotSeries) X() []time.Time {
	xs := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.Time
	}
	return xs
}

// Y returns the flux sequence
func (s *PlotSeries) Y() []float64 {
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		ys[i] = p.Flux
	}
	return ys
}

// ErrorY returns the uncertainty sequence
func (s *PlotSeries) ErrorY() []float64 {
	es := make([]float64, len(s.Points))
	for i, p := range s.Points {
		es[i] = p.Uncertainty
	}
	return es
}

// Widths returns the marker outline widths
func (s *PlotSeries) Widths() []float64 {
	ws := make([]float64, len(s.Points))
	for i, p := range s.Points {
		ws[i] = p.Style
	}
	return ws
}

// PlotLayout is the fixed layout handed to a plot surface
type PlotLayout struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	XAxisTitle  string   `json:"xaxis_title"`
	YAxisTitle  string   `json:"yaxis_title"`
	ShowLegend  bool     `json:"showlegend"`
	ColorCycle  []string `json:"colorway"`
	MarkerSize  int      `json:"marker_size"`
	MarkerColor string   `json:"marker_line_color"`
}

// CutoutFormat is a file extension accepted by the cutout endpoint
type CutoutFormat string

const (
	CutoutPNG  CutoutFormat = "png"
	CutoutFITS CutoutFormat = "fits"
	CutoutHDF5 CutoutFormat = "hdf5"
)

// CutoutFormats lists the selectable cutout formats, in selector order
var CutoutFormats = []CutoutFormat{CutoutPNG, CutoutFITS, CutoutHDF5}

// Valid reports whether f is a supported cutout format
func (f CutoutFormat) Valid() bool {
	for _, c := range CutoutFormats {
		if c == f {
			return true
		}
	}
	return false
}

// DataFormat is a file extension accepted by the bulk download endpoint
type DataFormat string

const (
	DataCSV  DataFormat = "csv"
	DataHDF5 DataFormat = "hdf5"
)

// DataFormats lists the bulk download formats
var DataFormats = []DataFormat{DataCSV, DataHDF5}

// Valid reports whether f is a supported bulk data format
func (f DataFormat) Valid() bool {
	return f == DataCSV || f == DataHDF5
}

// Cutout is a fetched cutout image. NotFound is set instead of an error
// when the catalog answered with a non-2xx status.
type Cutout struct {
	PointID     int64
	Format      CutoutFormat
	ContentType string
	Data        []byte
	NotFound    bool
	StatusCode  int // upstream status, 0 when read from the cache
}

// ImageRef points to an image resource held by the blob store
type ImageRef struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// DownloadAction tells the browser what to save and under which name
type DownloadAction struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
