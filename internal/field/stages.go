package field

import (
	"math"

	"github.com/danielpatrickdp/coherence-engine/internal/series"
	"github.com/danielpatrickdp/coherence-engine/internal/substrate"
)

// distanceFloorAU clamps heliocentric distance before the inverse-square so
// a near-zero input cannot blow the forcing term up.
const distanceFloorAU = 1e-3

// #region geometric

// GeometricCoherence scores angular alignment for one timestamp: per body
// q = |cos ε|, which peaks at conjunction (0°) and opposition (180°) and
// vanishes at quadrature (90°), averaged across the bodies present.
// Callers guarantee at least one row per group.
func GeometricCoherence(g substrate.Group) float64 {
	var sum float64
	for _, r := range g.Rows {
		sum += math.Abs(math.Cos(r.ElongationDeg * math.Pi / 180.0))
	}
	return sum / float64(len(g.Rows))
}

// #endregion geometric

// #region forcing

// Forcing scores distance-based influence for one timestamp: per body
// 1/r² with the distance floored, averaged across the bodies present.
func Forcing(g substrate.Group) float64 {
	var sum float64
	for _, r := range g.Rows {
		d := r.DistanceAU
		if d < distanceFloorAU {
			d = distanceFloorAU
		}
		sum += 1.0 / (d * d)
	}
	return sum / float64(len(g.Rows))
}

// #endregion forcing

// #region modulation

// ModulateForcing scales the aggregated forcing series by an external proxy:
// H(t) ×= (0.5 + minmax(proxy)(t)). Whole-series operation; proxy must be
// aligned to the forcing grid. A nil proxy leaves forcing untouched.
func ModulateForcing(forcing, proxy []float64) []float64 {
	out := make([]float64, len(forcing))
	copy(out, forcing)
	if len(proxy) != len(forcing) {
		return out
	}
	norm := series.MinMaxNormalize(proxy)
	for i := range out {
		out[i] *= 0.5 + norm[i]
	}
	return out
}

// #endregion modulation
