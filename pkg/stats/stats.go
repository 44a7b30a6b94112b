// Package stats provides robust dispersion estimators for spectra that mix
// background noise with occasional bright signal channels. All functions
// ignore NaN samples, which is how the cube loader represents the source
// format's no-data sentinel.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MADScale converts a median absolute deviation into a consistent estimator
// of the standard deviation of normally distributed data (1 / 0.6745).
const MADScale = 1 / 0.6745

// finite returns a copy of xs with NaN and infinite samples removed.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Median returns the median of the finite values of xs, averaging the two
// middle order statistics for even counts. It returns NaN when xs contains
// no finite values.
func Median(xs []float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return (v[mid-1] + v[mid]) / 2
}

// MAD returns the median absolute deviation of the finite values of xs,
// scaled by MADScale so the result estimates a Gaussian sigma:
//
//	median(|x - median(xs)|) * MADScale
//
// It returns NaN when xs contains no finite values and is otherwise
// always >= 0.
func MAD(xs []float64) float64 {
	med := Median(xs)
	if math.IsNaN(med) {
		return math.NaN()
	}
	dev := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		dev = append(dev, math.Abs(x-med))
	}
	return Median(dev) * MADScale
}

// Mean returns the arithmetic mean of the finite values of xs, or NaN when
// there are none.
func Mean(xs []float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// Quantile returns the empirical p-quantile of the finite values of xs,
// with p in [0, 1]. It returns NaN when xs contains no finite values.
func Quantile(p float64, xs []float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	sort.Float64s(v)
	return stat.Quantile(p, stat.Empirical, v, nil)
}

// Range returns the smallest and largest finite values of xs, or NaN for
// both when there are none.
func Range(xs []float64) (min, max float64) {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(v), floats.Max(v)
}
