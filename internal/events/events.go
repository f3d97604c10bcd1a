package events

import (
	"math"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
	"github.com/danielpatrickdp/coherence-engine/internal/substrate"
)

// #region types

// Flags marks a timestamp where at least one body sits near conjunction or
// opposition.
type Flags struct {
	Event         bool
	IsConjunction bool
	IsOpposition  bool
}

// Detector flags timestamps by angular proximity thresholds. Stateless.
type Detector struct {
	conjunctionDeg float64
	oppositionDeg  float64
}

// #endregion types

// #region detector

// NewDetector creates a detector from a normalized bundle.
func NewDetector(cfg config.Bundle) *Detector {
	return &Detector{
		conjunctionDeg: cfg.ConjunctionThresholdDeg,
		oppositionDeg:  cfg.OppositionThresholdDeg,
	}
}

// Detect evaluates every row in the group and OR-reduces the per-row flags.
func (d *Detector) Detect(g substrate.Group) Flags {
	var f Flags
	for _, r := range g.Rows {
		eps := foldAngle(r.ElongationDeg)
		if math.Min(eps, 360-eps) <= d.conjunctionDeg {
			f.IsConjunction = true
		}
		if math.Abs(eps-180) <= d.oppositionDeg {
			f.IsOpposition = true
		}
	}
	f.Event = f.IsConjunction || f.IsOpposition
	return f
}

// DetectAll runs Detect over an ordered group slice.
func (d *Detector) DetectAll(groups []substrate.Group) []Flags {
	out := make([]Flags, len(groups))
	for i, g := range groups {
		out[i] = d.Detect(g)
	}
	return out
}

// #endregion detector

// #region helpers

// foldAngle maps any angle into [0, 360).
func foldAngle(deg float64) float64 {
	eps := math.Mod(deg, 360)
	if eps < 0 {
		eps += 360
	}
	return eps
}

// #endregion helpers
