package field

import (
	"time"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
	"github.com/danielpatrickdp/coherence-engine/internal/series"
)

// #region types

// StepInput carries the per-timestamp stage aggregates into the composer.
// Substrate is the pluggable scalar proxy term; the pipeline feeds the
// geometric coherence back in by default but any aligned scalar works.
type StepInput struct {
	Timestamp time.Time
	Substrate float64
	Geometric float64
	Forcing   float64
}

// Record is one fully derived timestep. Built strictly sequentially; each
// record's raw field depends on the previous record's. Immutable once the
// pipeline finishes with it.
type Record struct {
	Timestamp          time.Time
	GeometricCoherence float64
	Forcing            float64
	FieldRaw           float64
	MemoryTerm         float64
	ObserverTerm       float64
	FieldNorm          float64
	EventFlag          bool
	IsConjunction      bool
	IsOpposition       bool
}

// #endregion types

// #region composer

// Composer folds the stage aggregates into the composite field. The memory
// and observer terms at step k read the field at step k-1, so evaluation is
// a sequential scan carrying (previous field, previous memory) forward.
type Composer struct {
	cfg config.Bundle
}

// NewComposer creates a composer over a normalized bundle.
func NewComposer(cfg config.Bundle) *Composer {
	return &Composer{cfg: cfg}
}

// Run evaluates the recurrence over the whole input grid and returns one
// record per timestamp. The first step uses only the stateless terms; its
// memory and observer entries record the degenerate boundary values.
func (c *Composer) Run(inputs []StepInput) []Record {
	records := make([]Record, 0, len(inputs))
	history := make([]float64, 0, len(inputs)) // raw field values, oldest first

	var prevField, prevMemory float64
	for k, in := range inputs {
		rec := Record{
			Timestamp:          in.Timestamp,
			GeometricCoherence: in.Geometric,
			Forcing:            in.Forcing,
		}

		if k == 0 {
			rec.FieldRaw = c.cfg.WeightSubstrate*in.Substrate +
				c.cfg.WeightGeometric*in.Geometric +
				c.cfg.WeightForcing*in.Forcing
			rec.MemoryTerm = rec.FieldRaw
			rec.ObserverTerm = c.cfg.ObserverScaleBeta * rec.FieldRaw
		} else {
			rec.MemoryTerm = c.memoryTerm(prevField, prevMemory, history)
			rec.ObserverTerm = c.cfg.ObserverScaleBeta * prevField
			rec.FieldRaw = c.cfg.WeightSubstrate*in.Substrate +
				c.cfg.WeightGeometric*in.Geometric +
				c.cfg.WeightForcing*in.Forcing +
				c.cfg.WeightMemory*rec.MemoryTerm +
				c.cfg.WeightObserver*rec.ObserverTerm
		}

		history = append(history, rec.FieldRaw)
		prevField = rec.FieldRaw
		prevMemory = rec.MemoryTerm
		records = append(records, rec)
	}
	return records
}

// memoryTerm computes the smoothed recollection of the field's own history
// for step k >= 1. history holds fields for steps [0, k).
func (c *Composer) memoryTerm(prevField, prevMemory float64, history []float64) float64 {
	if c.cfg.UseExponentialMemory {
		alpha := c.cfg.MemoryDecayAlpha
		return alpha*prevMemory + (1-alpha)*prevField
	}
	// Windowed policy: mean over the prior W steps, clipped to history.
	start := len(history) - c.cfg.MemoryWindow
	if start < 0 {
		start = 0
	}
	window := history[start:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// #endregion composer

// #region normalize

// Normalize fills FieldNorm with the min-max rescaled raw field. A constant
// field normalizes to all zeros via the epsilon-floored denominator.
func Normalize(records []Record) {
	raw := make([]float64, len(records))
	for i, r := range records {
		raw[i] = r.FieldRaw
	}
	norm := series.MinMaxNormalize(raw)
	for i := range records {
		records[i].FieldNorm = norm[i]
	}
}

// #endregion normalize
