package interaction

import (
	"log"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// Surface is the only way the machine touches the plot. The plot host
// executes each command against its live surface.
type Surface interface {
	ApplyMarkerStyle(series, point int, width float64)
}

// ImageReleaser frees image resources that are no longer shown
type ImageReleaser interface {
	Revoke(token string)
}

// State of the marker interaction
type State int

const (
	Idle State = iota
	Selecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	default:
		return "unknown"
	}
}

// FetchRequest asks the caller to fetch the cutout of a freshly selected point
type FetchRequest struct {
	Key     models.SelectionKey
	PointID int64
	Format  models.CutoutFormat
}

// FetchResult is the outcome of a FetchRequest, delivered back through Resolve
type FetchResult struct {
	Key      models.SelectionKey
	Image    *models.ImageRef
	NotFound bool
	Err      error
}

// Tooltip is the content bound to the committed selection
type Tooltip struct {
	Key        models.SelectionKey
	Anchor     models.Anchor
	Point      models.TaggedPoint
	BandName   string
	Color      string
	ImageState models.TooltipImageState
	Image      *models.ImageRef
}

// Machine tracks hover and click selection across all series and computes the
// marker style changes to apply. It is not safe for concurrent use; a plot
// session drives it from a single goroutine.
type Machine struct {
	surface  Surface
	releaser ImageReleaser

	series     []models.PlotSeries
	state      State
	selection  *models.SelectionKey
	generation uint64
	tooltip    *Tooltip
}

// NewMachine creates an idle machine over series. The machine keeps the
// slice and records live marker widths in each point's Style field.
func NewMachine(surface Surface, releaser ImageReleaser, series []models.PlotSeries) *Machine {
	return &Machine{
		surface:  surface,
		releaser: releaser,
		series:   series,
	}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Series returns the series with their live marker widths
func (m *Machine) Series() []models.PlotSeries {
	return m.series
}

// Selection returns the committed selection, if any
func (m *Machine) Selection() (models.SelectionKey, bool) {
	if m.selection == nil {
		return models.SelectionKey{}, false
	}
	return *m.selection, true
}

// Tooltip returns the current tooltip or nil
func (m *Machine) Tooltip() *Tooltip {
	if m.tooltip == nil {
		return nil
	}
	t := *m.tooltip
	return &t
}

// Width returns the marker width of a point, or baseline for unknown points
func (m *Machine) Width(series, point int) float64 {
	if !m.valid(series, point) {
		return models.StyleBaseline
	}
	return m.series[series].Points[point].Style
}

// Hover highlights a point. The committed selection keeps its selected width.
func (m *Machine) Hover(series, point int) bool {
	if !m.valid(series, point) || m.isSelected(series, point) {
		return false
	}
	return m.setWidth(series, point, models.StyleHover)
}

// Unhover reverts a hovered point to baseline unless it is the committed selection
func (m *Machine) Unhover(series, point int) bool {
	if !m.valid(series, point) || m.isSelected(series, point) {
		return false
	}
	return m.setWidth(series, point, models.StyleBaseline)
}

// Click commits the selection to a point. The style change is applied before
// the fetch request is returned, so the surface shows the selection right away.
func (m *Machine) Click(series, point int, anchor models.Anchor) (FetchRequest, bool) {
	if !m.valid(series, point) {
		return FetchRequest{}, false
	}

	m.resetWidths(series, point)
	m.setWidth(series, point, models.StyleSelected)
	m.releaseTooltip()

	m.generation++
	key := models.SelectionKey{Series: series, Point: point, Generation: m.generation}
	m.selection = &key
	m.state = Selecting

	p := m.series[series].Points[point]
	m.tooltip = &Tooltip{
		Key:        key,
		Anchor:     anchor,
		Point:      p,
		BandName:   m.series[series].BandName,
		Color:      m.series[series].Color,
		ImageState: models.TooltipImagePending,
	}

	// the id travels with the point, so filtering never shifts it
	return FetchRequest{Key: key, PointID: p.ID, Format: models.CutoutPNG}, true
}

// Escape closes the tooltip from the keyboard
func (m *Machine) Escape() bool {
	return m.clear("escape")
}

// Close closes the tooltip from its close button
func (m *Machine) Close() bool {
	return m.clear("close")
}

// ViewChange closes the tooltip after a zoom, pan or relayout
func (m *Machine) ViewChange() bool {
	return m.clear("view-change")
}

// Resolve applies a fetch result if it still belongs to the committed selection.
// Stale results are dropped and their image released.
func (m *Machine) Resolve(res FetchResult) bool {
	if m.selection == nil || *m.selection != res.Key || m.tooltip == nil {
		if res.Err != nil {
			log.Printf("[interaction] dropping stale cutout error for %+v: %v", res.Key, res.Err)
		}
		m.release(res.Image)
		return false
	}

	m.release(m.tooltip.Image)
	m.tooltip.Image = nil

	switch {
	case res.Err != nil:
		log.Printf("[interaction] cutout fetch for point %d failed: %v", m.tooltip.Point.ID, res.Err)
		m.tooltip.ImageState = models.TooltipImageNotFound
		m.release(res.Image)
	case res.NotFound || res.Image == nil:
		m.tooltip.ImageState = models.TooltipImageNotFound
		m.release(res.Image)
	default:
		m.tooltip.ImageState = models.TooltipImageReady
		m.tooltip.Image = res.Image
	}
	return true
}

// Reset replaces the series after a re-render. The surface already shows
// baseline markers, so no style commands are issued.
func (m *Machine) Reset(series []models.PlotSeries) {
	m.releaseTooltip()
	m.selection = nil
	m.state = Idle
	m.series = series
}

// Release frees the tooltip image without touching styles; used on teardown
func (m *Machine) Release() {
	m.releaseTooltip()
	m.selection = nil
	m.state = Idle
}

func (m *Machine) clear(reason string) bool {
	if m.state != Selecting {
		return false
	}
	m.resetWidths(-1, -1)
	m.releaseTooltip()
	m.selection = nil
	m.state = Idle
	log.Printf("[interaction] selection cleared (%s)", reason)
	return true
}

// resetWidths sets every styled point except (keepSeries, keepPoint) to baseline
func (m *Machine) resetWidths(keepSeries, keepPoint int) {
	for s := range m.series {
		for p := range m.series[s].Points {
			if s == keepSeries && p == keepPoint {
				continue
			}
			m.setWidth(s, p, models.StyleBaseline)
		}
	}
}

func (m *Machine) setWidth(series, point int, width float64) bool {
	pt := &m.series[series].Points[point]
	if pt.Style == width {
		return false
	}
	pt.Style = width
	if m.surface != nil {
		m.surface.ApplyMarkerStyle(series, point, width)
	}
	return true
}

func (m *Machine) isSelected(series, point int) bool {
	return m.selection != nil && m.selection.Series == series && m.selection.Point == point
}

func (m *Machine) valid(series, point int) bool {
	return series >= 0 && series < len(m.series) && point >= 0 && point < len(m.series[series].Points)
}

func (m *Machine) releaseTooltip() {
	if m.tooltip == nil {
		return
	}
	m.release(m.tooltip.Image)
	m.tooltip = nil
}

func (m *Machine) release(img *models.ImageRef) {
	if img != nil && m.releaser != nil {
		m.releaser.Revoke(img.Token)
	}
}
