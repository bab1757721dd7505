package sky

import (
	"fmt"
	"sort"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// Sky viewer defaults
const (
	DefaultSurvey     = "P/2MASS/color"
	DefaultFOV        = 5.0 / 60.0
	DefaultCooFrame   = "ICRSd"
	DefaultProjection = "ZEA"
)

// Nearby ranks cone search hits around target by angular separation. The
// target itself and anything outside radius degrees are left out; ties are
// broken by source id so the order is stable.
func Nearby(target models.Source, candidates []models.Source, radius float64) []models.NearbySource {
	if radius <= 0 {
		radius = DefaultConeRadius
	}
	cone := Cone(target.RA, target.Dec, radius)

	out := make([]models.NearbySource, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == target.ID || !InCone(cone, c.RA, c.Dec) {
			continue
		}
		out = append(out, models.NearbySource{
			Source:           c,
			SeparationDeg:    Separation(target.RA, target.Dec, c.RA, c.Dec),
			PositionAngleDeg: PositionAngle(target.RA, target.Dec, c.RA, c.Dec),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SeparationDeg != out[j].SeparationDeg {
			return out[i].SeparationDeg < out[j].SeparationDeg
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Marker builds the viewer marker of a source
func Marker(s models.Source) models.SkyMarker {
	return models.SkyMarker{
		Name:  fmt.Sprintf("SO-%d", s.ID),
		RA:    s.RA,
		Dec:   s.Dec,
		Label: fmt.Sprintf("(%.3f,%.3f)", s.RA, s.Dec),
	}
}

// ViewerConfig builds the sky viewer options centered on target
func ViewerConfig(target models.Source, nearby []models.NearbySource) models.SkyViewerConfig {
	markers := make([]models.SkyMarker, 0, len(nearby)+1)
	markers = append(markers, Marker(target))
	for _, n := range nearby {
		markers = append(markers, Marker(n.Source))
	}
	return models.SkyViewerConfig{
		Survey:     DefaultSurvey,
		FOV:        DefaultFOV,
		CooFrame:   DefaultCooFrame,
		Projection: DefaultProjection,
		Target:     Marker(target),
		Markers:    markers,
	}
}
