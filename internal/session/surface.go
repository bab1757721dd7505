package session

import (
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/plot"
)

// wsSurface mirrors the plot in the browser: every call becomes a command
// on the session's outbound queue
type wsSurface struct {
	send func(Message)
}

func (w *wsSurface) Render(series []models.PlotSeries, layout models.PlotLayout) error {
	l := layout
	w.send(Message{Type: TypeRender, Series: plot.Clone(series), Layout: &l})
	return nil
}

func (w *wsSurface) ApplyMarkerStyle(series, point int, width float64) {
	w.send(Message{Type: TypeRestyle, Restyle: &Restyle{Series: series, Point: point, Width: width}})
}

func (w *wsSurface) Destroy() {
	w.send(Message{Type: TypePurge})
}
