package validate

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
)

// minOverlap is the smallest sample overlap a single lag is evaluated on.
const minOverlap = 3

// #region lag-test

// lagTest sweeps Pearson correlation between x and y over lags in
// [-maxLag, +maxLag] and reports the max-|r| lag. Significance comes from
// block-shuffle permutations of x: each trial re-runs the whole sweep so the
// null accounts for picking the best lag.
func lagTest(x, y []float64, cfg config.Bundle) (LagResult, []LagPoint) {
	if len(x) < minSamples {
		return LagResult{Status: StatusInsufficientData}, nil
	}

	sweep := lagSweep(x, y, cfg.MaxLag)
	bestLag, bestR := bestOfSweep(sweep)

	null := nullDistribution(cfg.PermutationCount, cfg.PermutationSeed, func(rng *rand.Rand) float64 {
		shuffled := blockShuffle(x, cfg.BlockSize, rng)
		_, r := bestOfSweep(lagSweep(shuffled, y, cfg.MaxLag))
		return math.Abs(r)
	})

	return LagResult{
		Status:  StatusOK,
		BestLag: bestLag,
		BestR:   bestR,
		PValue:  pValue(null, math.Abs(bestR)),
	}, sweep
}

// #endregion lag-test

// #region sweep

// lagSweep computes r(x(t), y(t+lag)) for every lag with enough overlap.
func lagSweep(x, y []float64, maxLag int) []LagPoint {
	n := len(x)
	var sweep []LagPoint
	for lag := -maxLag; lag <= maxLag; lag++ {
		overlap := n - abs(lag)
		if overlap < minOverlap {
			continue
		}
		var xs, ys []float64
		if lag >= 0 {
			xs, ys = x[:overlap], y[lag:lag+overlap]
		} else {
			xs, ys = x[-lag:-lag+overlap], y[:overlap]
		}
		r := stat.Correlation(xs, ys, nil)
		if math.IsNaN(r) {
			r = 0
		}
		sweep = append(sweep, LagPoint{Lag: lag, R: r})
	}
	return sweep
}

// bestOfSweep returns the lag with the largest |r|.
func bestOfSweep(sweep []LagPoint) (lag int, r float64) {
	for _, p := range sweep {
		if math.Abs(p.R) > math.Abs(r) {
			lag, r = p.Lag, p.R
		}
	}
	return lag, r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// #endregion sweep
