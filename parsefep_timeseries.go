package main

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Timeseries: statistical inefficiency and subsampling of correlated work samples
// //////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// Autocorrelation lags up to this value are always included in the
// inefficiency sum even if the correlation function has already crossed zero
const minCorrelationTime int = 3

// decorrelator reduces a correlated sample series to an effectively
// independent subset. Tests substitute deterministic stubs for this.
type decorrelator interface {
	// inefficiency estimates the statistical inefficiency g >= 1 of a series
	inefficiency(series []float64) (float64, error)
	// subsampleIndices returns the ascending indices of the decorrelated
	// subset of a series given its inefficiency
	subsampleIndices(series []float64, g float64) []int
}

// timeseriesAnalyzer is the default decorrelator. It computes the statistical
// inefficiency from the normalized fluctuation autocorrelation function,
// truncating the sum once the correlation function crosses zero, and
// subsamples with stride g.
type timeseriesAnalyzer struct{}

func (timeseriesAnalyzer) inefficiency(series []float64) (float64, error) {
	n := len(series)
	if n < 2 {
		return 0, fmt.Errorf("statistical inefficiency is undefined for a series of %d samples", n)
	}

	mean := stat.Mean(series, nil)

	// fluctuations about the mean and their biased variance
	dA := make([]float64, n)
	sigma2 := 0.0
	for i, v := range series {
		dA[i] = v - mean
		sigma2 += dA[i] * dA[i]
	}
	sigma2 /= float64(n)
	if sigma2 == 0 {
		return 0, errors.New("sample variance is zero - cannot compute statistical inefficiency")
	}

	g := 1.0
	for t := 1; t < n-1; t++ {
		// normalized autocorrelation at lag t
		c := 0.0
		for i := 0; i < n-t; i++ {
			c += dA[i] * dA[i+t]
		}
		c /= float64(n-t) * sigma2

		if c <= 0 && t > minCorrelationTime {
			break
		}
		g += 2.0 * c * (1.0 - float64(t)/float64(n))
	}

	// inefficiency can dip below one for anticorrelated data; clamp since
	// a value below one has no meaning as a subsampling stride
	if g < 1.0 {
		g = 1.0
	}
	return g, nil
}

func (timeseriesAnalyzer) subsampleIndices(series []float64, g float64) []int {
	n := len(series)
	if n == 0 {
		return nil
	}
	if g < 1.0 {
		g = 1.0
	}

	var indices []int
	last := -1
	for i := 0; ; i++ {
		idx := int(math.Round(float64(i) * g))
		if idx >= n {
			break
		}
		// rounding can repeat an index when g is close to 1
		if idx > last {
			indices = append(indices, idx)
			last = idx
		}
	}
	return indices
}

// decorrelate applies a decorrelator to one window's series and extracts the
// decorrelated samples. A series with fewer than two samples is rejected here
// rather than passed through, since a degenerate series would silently corrupt
// the estimate downstream.
func decorrelate(d decorrelator, series []float64) (float64, []float64, error) {
	if len(series) < 2 {
		return 0, nil, fmt.Errorf("degenerate series: %d samples, need at least 2", len(series))
	}

	g, err := d.inefficiency(series)
	if err != nil {
		return 0, nil, err
	}

	indices := d.subsampleIndices(series, g)
	if len(indices) == 0 {
		return 0, nil, errors.New("subsampling returned no indices")
	}

	subsampled := make([]float64, len(indices))
	for i, idx := range indices {
		subsampled[i] = series[idx]
	}
	return g, subsampled, nil
}
