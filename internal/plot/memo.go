package plot

import (
	"sync"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// Memo caches the last Transform result. Transform is pure, so a hit on the
// same payload and flag can return the stored series.
type Memo struct {
	mu          sync.Mutex
	data        *models.LightcurveData
	hideFlagged bool
	series      []models.PlotSeries
	hits        int
}

// Get returns the series for data and hideFlagged, recomputing only when either changed.
// Callers receive their own copy so style edits never leak into the cache.
func (m *Memo) Get(data *models.LightcurveData, hideFlagged bool) []models.PlotSeries {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.series != nil && m.data == data && m.hideFlagged == hideFlagged {
		m.hits++
		return Clone(m.series)
	}

	m.data = data
	m.hideFlagged = hideFlagged
	m.series = Transform(data, hideFlagged)
	return Clone(m.series)
}

// Hits reports how many calls were served from the cache
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// Clone deep-copies series so the points can be restyled independently
func Clone(series []models.PlotSeries) []models.PlotSeries {
	if series == nil {
		return nil
	}
	out := make([]models.PlotSeries, len(series))
	for i, s := range series {
		out[i] = s
		out[i].Points = make([]models.TaggedPoint, len(s.Points))
		copy(out[i].Points, s.Points)
	}
	return out
}
