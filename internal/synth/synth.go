package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/danielpatrickdp/coherence-engine/internal/field"
	"github.com/danielpatrickdp/coherence-engine/internal/series"
	"github.com/danielpatrickdp/coherence-engine/internal/substrate"
)

// #region options

// Options parameterizes the synthetic substrate generator.
type Options struct {
	Bodies           int           // number of bodies per timestamp
	Steps            int           // number of timestamps
	Start            time.Time     // first timestamp
	Interval         time.Duration // grid spacing
	ConjunctionEvery int           // every Nth step sits at elongation 0, others at 90
}

// DefaultOptions matches the reference demo scenario: two bodies over 200
// steps with a conjunction every 20th step.
func DefaultOptions() Options {
	return Options{
		Bodies:           2,
		Steps:            200,
		Start:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:         time.Hour,
		ConjunctionEvery: 20,
	}
}

// #endregion options

// #region substrate

// Substrate builds a deterministic synthetic substrate table: elongation 90°
// everywhere except every ConjunctionEvery-th step, which sits at exact
// conjunction; distance constant at 1 AU.
func Substrate(opts Options) []substrate.Row {
	rows := make([]substrate.Row, 0, opts.Bodies*opts.Steps)
	for k := 0; k < opts.Steps; k++ {
		ts := opts.Start.Add(time.Duration(k) * opts.Interval)
		elongation := 90.0
		if opts.ConjunctionEvery > 0 && k%opts.ConjunctionEvery == 0 {
			elongation = 0.0
		}
		for b := 0; b < opts.Bodies; b++ {
			rows = append(rows, substrate.Row{
				Timestamp:     ts,
				BodyID:        fmt.Sprintf("body-%d", b+1),
				ElongationDeg: elongation,
				DistanceAU:    1.0,
			})
		}
	}
	return rows
}

// #endregion substrate

// #region index

// CoupledIndex derives an index series as a scaled lag-0 copy of the
// normalized field plus Gaussian noise, timestamped on the same grid. Useful
// for demos and for exercising the validator on a known-coupled pair.
func CoupledIndex(records []field.Record, scale, noiseScale float64, seed int64) []series.Point {
	rng := rand.New(rand.NewSource(seed))
	out := make([]series.Point, len(records))
	for i, r := range records {
		out[i] = series.Point{
			Timestamp: r.Timestamp,
			Value:     scale*r.FieldNorm + noiseScale*rng.NormFloat64(),
		}
	}
	return out
}

// #endregion index
