package host

import (
	"fmt"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/plot"
)

const (
	tooltipTimeLayout = "2006-01-02 15:04:05"
	closeTitle        = "Close (Esc)"
)

// Tooltip renders the open tooltip, or nil when none is open
func (h *Host) Tooltip() *models.TooltipView {
	if h.machine == nil {
		return nil
	}
	t := h.machine.Tooltip()
	if t == nil {
		return nil
	}

	view := &models.TooltipView{
		Key:         t.Key,
		Left:        t.Anchor.ClientX,
		Top:         t.Anchor.ClientY,
		PointID:     t.Point.ID,
		BandName:    t.BandName,
		SwatchColor: t.Color,
		Time:        FormatTime(t.Point),
		Flux:        FormatFlux(t.Point),
		ImageState:  t.ImageState,
		Flags:       plot.FlagsText(t.Point.Flags),
		CloseTitle:  closeTitle,
	}
	if t.ImageState == models.TooltipImageReady && t.Image != nil {
		view.ImageURL = t.Image.URL
		view.Formats = append([]models.CutoutFormat(nil), models.CutoutFormats...)
		view.SelectedFormat = h.format
		view.CanDownload = true
	}
	return view
}

// FormatTime renders the observation time in UTC
func FormatTime(p models.TaggedPoint) string {
	if p.Time.IsZero() {
		return p.RawTime
	}
	return p.Time.UTC().Format(tooltipTimeLayout) + " UTC"
}

// FormatFlux renders flux and uncertainty to three decimals
func FormatFlux(p models.TaggedPoint) string {
	return fmt.Sprintf("%.3f ± %.3f %s", p.Flux, p.Uncertainty, plot.FluxUnit)
}
