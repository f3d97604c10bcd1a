package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
	"github.com/danielpatrickdp/coherence-engine/internal/events"
	"github.com/danielpatrickdp/coherence-engine/internal/field"
	"github.com/danielpatrickdp/coherence-engine/internal/series"
	"github.com/danielpatrickdp/coherence-engine/internal/substrate"
	"github.com/danielpatrickdp/coherence-engine/internal/validate"
)

// #region types

// Input bundles everything a run consumes. Substrate is mandatory; the solar
// proxy and index series are optional. SubstrateScalar overrides the
// substrate proxy term fed into the composer; when nil the geometric
// coherence of the group is reused, matching the reference behavior.
type Input struct {
	Substrate       *substrate.Table
	SolarProxy      []series.Point
	Index           []series.Point
	SubstrateScalar func(substrate.Group) float64
}

// Result is the terminal artifact of one run: the derived timeseries plus
// the validation outcome.
type Result struct {
	RunID     string
	CreatedAt time.Time
	Config    config.Bundle
	Records   []field.Record
	Outcome   validate.Outcome
}

// Pipeline sequences the stages over one immutable input set.
type Pipeline struct {
	cfg config.Bundle
}

// #endregion types

// #region constructor

// New creates a pipeline over a normalized bundle.
func New(cfg config.Bundle) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// #endregion constructor

// #region run

// Run executes the full batch sequence: stage aggregation, the sequential
// field recurrence, normalization, event detection, index alignment, and
// validation. Structural input problems are the only fatal errors; every
// statistical edge case degrades inside the report instead.
func (p *Pipeline) Run(in Input) (*Result, error) {
	if in.Substrate == nil || in.Substrate.Len() == 0 {
		return nil, fmt.Errorf("pipeline input: %w", substrate.ErrEmpty)
	}

	groups := in.Substrate.Groups()
	grid := in.Substrate.Timestamps()

	// Stateless per-timestamp stages.
	scalar := in.SubstrateScalar
	if scalar == nil {
		scalar = field.GeometricCoherence
	}
	geometric := make([]float64, len(groups))
	forcing := make([]float64, len(groups))
	substrateTerm := make([]float64, len(groups))
	for i, g := range groups {
		geometric[i] = field.GeometricCoherence(g)
		forcing[i] = field.Forcing(g)
		substrateTerm[i] = scalar(g)
	}

	if len(in.SolarProxy) > 0 {
		proxy := series.ForwardFill(in.SolarProxy, grid)
		forcing = field.ModulateForcing(forcing, proxy)
	}

	// Sequential recurrence, then whole-series normalization.
	inputs := make([]field.StepInput, len(groups))
	for i := range groups {
		inputs[i] = field.StepInput{
			Timestamp: grid[i],
			Substrate: substrateTerm[i],
			Geometric: geometric[i],
			Forcing:   forcing[i],
		}
	}
	records := field.NewComposer(p.cfg).Run(inputs)
	field.Normalize(records)

	// Event detection, merged onto the records.
	flags := events.NewDetector(p.cfg).DetectAll(groups)
	eventCount := 0
	for i, f := range flags {
		records[i].EventFlag = f.Event
		records[i].IsConjunction = f.IsConjunction
		records[i].IsOpposition = f.IsOpposition
		if f.Event {
			eventCount++
		}
	}
	log.Printf("[PIPELINE] composed %d timesteps, %d events flagged", len(records), eventCount)

	// Index alignment and validation.
	gamma, index, eventIdx := p.alignIndex(grid, records, in.Index)
	if in.Index == nil {
		log.Printf("[PIPELINE] no index series supplied; validation will report insufficient data")
	}
	outcome := validate.NewRunner(p.cfg).Run(gamma, index, eventIdx)

	return &Result{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Config:    p.cfg,
		Records:   records,
		Outcome:   outcome,
	}, nil
}

// #endregion run

// #region align

// alignIndex resamples the external index to the engine cadence, inner-joins
// it with the normalized field on timestamp, and translates event flags into
// positions on the joined grid.
func (p *Pipeline) alignIndex(grid []time.Time, records []field.Record, index []series.Point) (gamma, joined []float64, eventIdx []int) {
	if len(index) == 0 {
		return nil, nil, nil
	}
	resampled := series.MeanResample(index, p.cfg.SamplingInterval)
	byTS := make(map[time.Time]float64, len(resampled))
	for _, pt := range resampled {
		byTS[pt.Timestamp] = pt.Value
	}

	for i, ts := range grid {
		v, ok := byTS[ts.Truncate(p.cfg.SamplingInterval)]
		if !ok {
			continue
		}
		if records[i].EventFlag {
			eventIdx = append(eventIdx, len(gamma))
		}
		gamma = append(gamma, records[i].FieldNorm)
		joined = append(joined, v)
	}
	return gamma, joined, eventIdx
}

// #endregion align
