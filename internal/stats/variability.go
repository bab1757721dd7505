package stats

import (
	"math"
	"sort"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// Variability summarizes the scatter of one band's flux
type Variability struct {
	WeightedMean float64 `json:"weighted_mean" yaml:"weighted_mean"`
	StdDev       float64 `json:"std_dev" yaml:"std_dev"`
	Q1           float64 `json:"q1" yaml:"q1"`
	Q3           float64 `json:"q3" yaml:"q3"`
	ReducedChi2  float64 `json:"reduced_chi2" yaml:"reduced_chi2"` // against a constant flux
	Outliers     []int64 `json:"outliers,omitempty" yaml:"outliers,omitempty"`
}

// WeightedMean calculates the inverse-variance weighted mean. Points with a
// non-positive uncertainty are weighted as 1.
func WeightedMean(values, uncertainties []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sumWeighted, sumWeights float64
	for i, v := range values {
		w := 1.0
		if i < len(uncertainties) && uncertainties[i] > 0 {
			w = 1 / (uncertainties[i] * uncertainties[i])
		}
		sumWeighted += v * w
		sumWeights += w
	}
	return sumWeighted / sumWeights
}

// StdDev calculates the sample standard deviation
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}

// Quantile calculates the q-th quantile (0 <= q <= 1) with linear interpolation
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	q = math.Max(0, math.Min(1, q))

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Variable computes the variability summary of a band. Outliers are the
// measurement ids outside Q1 - 1.5*IQR and Q3 + 1.5*IQR.
func Variable(band models.LightcurveBand) Variability {
	flux := band.IFlux
	if len(flux) == 0 {
		return Variability{}
	}

	v := Variability{
		WeightedMean: WeightedMean(flux, band.IUncertainty),
		StdDev:       StdDev(flux),
		Q1:           Quantile(flux, 0.25),
		Q3:           Quantile(flux, 0.75),
	}

	iqr := v.Q3 - v.Q1
	lowerBound, upperBound := v.Q1-1.5*iqr, v.Q3+1.5*iqr
	for i, f := range flux {
		if (f < lowerBound || f > upperBound) && i < len(band.ID) {
			v.Outliers = append(v.Outliers, band.ID[i])
		}
	}

	if len(flux) > 1 {
		var chi2 float64
		dof := 0
		for i, f := range flux {
			if i >= len(band.IUncertainty) || band.IUncertainty[i] <= 0 {
				continue
			}
			d := (f - v.WeightedMean) / band.IUncertainty[i]
			chi2 += d * d
			dof++
		}
		if dof > 1 {
			v.ReducedChi2 = chi2 / float64(dof-1)
		}
	}
	return v
}
