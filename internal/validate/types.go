package validate

// #region status

// Status reports whether a test produced a usable p-value.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
	StatusSkipped          Status = "skipped"
)

// #endregion status

// #region verdict

// Verdict is the aggregate judgment over the three coupling tests.
type Verdict string

const (
	VerdictValidated      Verdict = "validated"       // >= 2 of 3 tests significant
	VerdictMarginal       Verdict = "marginal"        // exactly 1 significant
	VerdictNotSignificant Verdict = "not_significant" // 0 significant or nothing testable
)

// alpha is the per-test significance level.
const alpha = 0.05

// minSamples is the smallest overlapping pair count any test will run on.
const minSamples = 20

// #endregion verdict

// #region results

// LagResult is the lagged cross-correlation outcome.
type LagResult struct {
	Status  Status  `json:"status"`
	BestLag int     `json:"best_lag"`
	BestR   float64 `json:"best_r"`
	PValue  float64 `json:"p_value"`
}

// SpectralResult is the magnitude-squared coherence outcome.
type SpectralResult struct {
	Status        Status  `json:"status"`
	PeakCoherence float64 `json:"peak_coherence"`
	PValue        float64 `json:"p_value"`
}

// EpochResult is the superposed epoch analysis outcome.
type EpochResult struct {
	Status       Status  `json:"status"`
	EventCount   int     `json:"event_count"`
	PeakResponse float64 `json:"peak_response"`
	PValue       float64 `json:"p_value"`
}

// Report is the terminal validation artifact. Possibly partial: individual
// tests degrade to insufficient_data or skipped instead of failing the run.
type Report struct {
	SampleCount int            `json:"sample_count"`
	Lag         LagResult      `json:"lag_test"`
	Spectral    SpectralResult `json:"spectral_test"`
	Epoch       EpochResult    `json:"epoch_test"`
	Verdict     Verdict        `json:"verdict"`
}

// #endregion results

// #region aux-tables

// LagPoint is one entry of the full lag sweep.
type LagPoint struct {
	Lag int     `json:"lag"`
	R   float64 `json:"r"`
}

// SpectrumPoint is one entry of the coherence spectrum. Frequency is in
// cycles per step.
type SpectrumPoint struct {
	Frequency float64 `json:"frequency"`
	Coherence float64 `json:"coherence"`
}

// Outcome bundles the report with its auxiliary tables.
type Outcome struct {
	Report   Report
	LagSweep []LagPoint
	Spectrum []SpectrumPoint
}

// #endregion aux-tables
