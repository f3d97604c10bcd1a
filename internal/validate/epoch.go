package validate

import (
	"math"
	"math/rand"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
)

// #region epoch-test

// epochTest runs superposed epoch analysis: average the index over symmetric
// windows centered on each detected event and take the largest absolute
// point of the mean response. The null repeats the averaging around an equal
// count of randomly drawn non-overlapping fake event positions. Zero usable
// events skips the test rather than failing it.
func epochTest(index []float64, eventIdx []int, cfg config.Bundle) EpochResult {
	if len(index) < minSamples {
		return EpochResult{Status: StatusInsufficientData}
	}

	half := cfg.EpochHalfWindow
	usable := fullWindowEvents(eventIdx, half, len(index))
	if len(usable) == 0 {
		return EpochResult{Status: StatusSkipped}
	}

	peak := peakResponse(index, usable, half)

	null := nullDistribution(cfg.PermutationCount, cfg.PermutationSeed, func(rng *rand.Rand) float64 {
		fake := drawFakeEvents(rng, len(usable), half, len(index))
		return peakResponse(index, fake, half)
	})

	return EpochResult{
		Status:       StatusOK,
		EventCount:   len(usable),
		PeakResponse: peak,
		PValue:       pValue(null, peak),
	}
}

// #endregion epoch-test

// #region response

// fullWindowEvents keeps event indices whose whole window fits the series.
func fullWindowEvents(eventIdx []int, half, n int) []int {
	var out []int
	for _, i := range eventIdx {
		if i-half >= 0 && i+half < n {
			out = append(out, i)
		}
	}
	return out
}

// peakResponse averages the index across event-centered windows and returns
// the max absolute value of the mean response curve.
func peakResponse(index []float64, eventIdx []int, half int) float64 {
	width := 2*half + 1
	mean := make([]float64, width)
	for _, center := range eventIdx {
		for o := -half; o <= half; o++ {
			mean[o+half] += index[center+o]
		}
	}
	var peak float64
	for i := range mean {
		mean[i] /= float64(len(eventIdx))
		peak = math.Max(peak, math.Abs(mean[i]))
	}
	return peak
}

// drawFakeEvents samples count positions with full windows, rejecting
// overlaps with already accepted windows. If the series is too dense to
// place that many disjoint windows, the remainder is drawn unconstrained so
// a null statistic always exists.
func drawFakeEvents(rng *rand.Rand, count, half, n int) []int {
	span := n - 2*half
	accepted := make([]int, 0, count)

	const maxAttempts = 1000
	for attempt := 0; attempt < maxAttempts && len(accepted) < count; attempt++ {
		pos := half + rng.Intn(span)
		overlaps := false
		for _, a := range accepted {
			if abs(pos-a) <= 2*half {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, pos)
		}
	}
	for len(accepted) < count {
		accepted = append(accepted, half+rng.Intn(span))
	}
	return accepted
}

// #endregion response
