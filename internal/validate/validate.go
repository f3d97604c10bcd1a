package validate

import (
	"log"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
	"github.com/danielpatrickdp/coherence-engine/internal/series"
)

// #region runner

// Runner executes the three coupling tests over an aligned (field, index)
// pair and renders the aggregate verdict.
type Runner struct {
	cfg config.Bundle
}

// NewRunner creates a runner over a normalized bundle.
func NewRunner(cfg config.Bundle) *Runner {
	return &Runner{cfg: cfg}
}

// Run detrends and z-scores both series, runs the lag, spectral, and epoch
// tests, and assembles the report. gamma and index must already be aligned
// on the engine grid; eventIdx are positions into that grid. Statistical
// edge cases degrade per test; Run never fails.
func (r *Runner) Run(gamma, index []float64, eventIdx []int) Outcome {
	x := series.ZScore(series.Detrend(gamma))
	y := series.ZScore(series.Detrend(index))

	var out Outcome
	out.Report.SampleCount = len(x)

	out.Report.Lag, out.LagSweep = lagTest(x, y, r.cfg)
	out.Report.Spectral, out.Spectrum = spectralTest(x, y, r.cfg)
	out.Report.Epoch = epochTest(y, eventIdx, r.cfg)

	out.Report.Verdict = computeVerdict(out.Report)

	log.Printf("[VALIDATE] samples=%d lag(p=%.4f,%s) spectral(p=%.4f,%s) epoch(p=%.4f,%s) verdict=%s",
		out.Report.SampleCount,
		out.Report.Lag.PValue, out.Report.Lag.Status,
		out.Report.Spectral.PValue, out.Report.Spectral.Status,
		out.Report.Epoch.PValue, out.Report.Epoch.Status,
		out.Report.Verdict)

	return out
}

// #endregion runner

// #region verdict

// computeVerdict applies the 2-of-3 rule: two significant tests validate,
// one is marginal, zero is not significant. Tests that did not run never
// count as significant.
func computeVerdict(rep Report) Verdict {
	significant := 0
	if rep.Lag.Status == StatusOK && rep.Lag.PValue < alpha {
		significant++
	}
	if rep.Spectral.Status == StatusOK && rep.Spectral.PValue < alpha {
		significant++
	}
	if rep.Epoch.Status == StatusOK && rep.Epoch.PValue < alpha {
		significant++
	}
	switch {
	case significant >= 2:
		return VerdictValidated
	case significant == 1:
		return VerdictMarginal
	default:
		return VerdictNotSignificant
	}
}

// #endregion verdict
