package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// ErrEmptyBand is returned when a statistic needs at least one flux value
var ErrEmptyBand = errors.New("band has no flux values")

// ErrNoBands is returned when a statistic needs at least one band
var ErrNoBands = errors.New("light curve has no bands")

// MiddleIndex returns the middle index of a sequence of length n.
// For even n there is no true middle, so the lower of the two central indices is returned.
func MiddleIndex(n int) int {
	if n%2 != 0 {
		return n / 2
	}
	return n/2 - 1
}

// FindMidBand returns the band in the middle of an already frequency-sorted slice.
// bands must not be empty.
func FindMidBand(bands []models.LightcurveBand) models.LightcurveBand {
	if len(bands) == 1 {
		return bands[0]
	}
	return bands[MiddleIndex(len(bands))]
}

// MedianFlux calculates the median i_flux of a band without touching the band's slice
func MedianFlux(band models.LightcurveBand) float64 {
	n := len(band.IFlux)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return band.IFlux[0]
	}

	sorted := make([]float64, n)
	copy(sorted, band.IFlux)
	sort.Float64s(sorted)

	mid := MiddleIndex(n)
	if n%2 != 0 {
		return sorted[mid]
	}
	return (sorted[mid] + sorted[mid+1]) / 2
}

// MaxFlux returns the largest i_flux of a band
func MaxFlux(band models.LightcurveBand) (float64, error) {
	if len(band.IFlux) == 0 {
		return 0, ErrEmptyBand
	}
	hi := math.Inf(-1)
	for _, v := range band.IFlux {
		if v > hi {
			hi = v
		}
	}
	return hi, nil
}

// MinFlux returns the smallest i_flux of a band
func MinFlux(band models.LightcurveBand) (float64, error) {
	if len(band.IFlux) == 0 {
		return 0, ErrEmptyBand
	}
	lo := math.Inf(1)
	for _, v := range band.IFlux {
		if v < lo {
			lo = v
		}
	}
	return lo, nil
}

// Badge computes the header badge numbers from the middle band.
// bands must already be sorted by frequency.
func Badge(bands []models.LightcurveBand) (models.BadgeStats, error) {
	if len(bands) == 0 {
		return models.BadgeStats{}, ErrNoBands
	}
	mid := FindMidBand(bands)
	peak, err := MaxFlux(mid)
	if err != nil {
		return models.BadgeStats{}, err
	}
	return models.BadgeStats{
		BandName:   mid.Band.Name,
		MedianFlux: MedianFlux(mid),
		MaxFlux:    peak,
	}, nil
}
