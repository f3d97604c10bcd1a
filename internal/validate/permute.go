package validate

import (
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// #region block-shuffle

// blockShuffle returns values with contiguous blocks of blockSize reordered
// at random. Short-range autocorrelation inside a block survives; alignment
// against the partner series does not, which is exactly the null we want.
func blockShuffle(values []float64, blockSize int, rng *rand.Rand) []float64 {
	n := len(values)
	if blockSize < 1 {
		blockSize = 1
	}
	blockCount := (n + blockSize - 1) / blockSize
	order := rng.Perm(blockCount)

	out := make([]float64, 0, n)
	for _, b := range order {
		start := b * blockSize
		end := start + blockSize
		if end > n {
			end = n
		}
		out = append(out, values[start:end]...)
	}
	return out
}

// #endregion block-shuffle

// #region null-distribution

// nullDistribution runs trials independent resampling trials in a bounded
// worker pool and returns one statistic per trial. Trial seeds derive from
// the base seed so runs stay reproducible regardless of scheduling.
func nullDistribution(trials int, seed int64, trial func(rng *rand.Rand) float64) []float64 {
	out := make([]float64, trials)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < trials; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(i)))
			out[i] = trial(rng)
			return nil
		})
	}
	g.Wait() // trials never return errors

	return out
}

// pValue is the fraction of null statistics at least as extreme as observed.
func pValue(null []float64, observed float64) float64 {
	if len(null) == 0 {
		return 1
	}
	count := 0
	for _, v := range null {
		if v >= observed {
			count++
		}
	}
	return float64(count) / float64(len(null))
}

// #endregion null-distribution
