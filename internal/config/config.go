package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// #region bundle

// Bundle holds every tuning knob for a pipeline run. Construct via Default()
// or Load(), then Normalize(); stages receive it by value and never mutate it.
type Bundle struct {
	// SamplingInterval is the engine cadence. External series are resampled
	// onto this grid before any computation.
	SamplingInterval time.Duration `yaml:"sampling_interval"`

	// Field weights. Renormalized to sum to 1 by Normalize().
	WeightSubstrate float64 `yaml:"weight_substrate"`
	WeightGeometric float64 `yaml:"weight_geometric"`
	WeightForcing   float64 `yaml:"weight_forcing"`
	WeightMemory    float64 `yaml:"weight_memory"`
	WeightObserver  float64 `yaml:"weight_observer"`

	// Memory stage.
	MemoryDecayAlpha     float64 `yaml:"memory_decay_alpha"` // exponential policy decay, in (0,1)
	MemoryWindow         int     `yaml:"memory_window"`      // windowed policy width, in steps
	UseExponentialMemory bool    `yaml:"use_exponential_memory"`

	// Observer stage.
	ObserverScaleBeta float64 `yaml:"observer_scale_beta"`

	// Event detection thresholds, degrees. Must be > 0.
	ConjunctionThresholdDeg float64 `yaml:"conjunction_threshold_deg"`
	OppositionThresholdDeg  float64 `yaml:"opposition_threshold_deg"`

	// Validation.
	MaxLag                int   `yaml:"max_lag"`                 // lag sweep half-range, in steps
	PermutationCount      int   `yaml:"permutation_count"`       // block-shuffle trials per test
	BlockSize             int   `yaml:"block_size"`              // shuffle block width, in steps
	EpochHalfWindow       int   `yaml:"epoch_half_window"`       // epoch window half-width, in steps
	SpectralSegmentLength int   `yaml:"spectral_segment_length"` // FFT segment length, auto-reduced
	PermutationSeed       int64 `yaml:"permutation_seed"`        // fixed seed keeps runs reproducible
}

// #endregion bundle

// #region default

// Default returns the reference parameterization.
func Default() Bundle {
	return Bundle{
		SamplingInterval:        time.Hour,
		WeightSubstrate:         0.2,
		WeightGeometric:         0.2,
		WeightForcing:           0.2,
		WeightMemory:            0.2,
		WeightObserver:          0.2,
		MemoryDecayAlpha:        0.9,
		MemoryWindow:            12,
		UseExponentialMemory:    true,
		ObserverScaleBeta:       0.5,
		ConjunctionThresholdDeg: 5.0,
		OppositionThresholdDeg:  5.0,
		MaxLag:                  48,
		PermutationCount:        1000,
		BlockSize:               24,
		EpochHalfWindow:         12,
		SpectralSegmentLength:   64,
		PermutationSeed:         1,
	}
}

// #endregion default

// #region normalize

// Normalize validates the bundle and renormalizes the five field weights to
// sum to 1. Returns an error for parameterizations no stage can run with.
func (b Bundle) Normalize() (Bundle, error) {
	if b.SamplingInterval <= 0 {
		return Bundle{}, fmt.Errorf("sampling interval must be positive, got %v", b.SamplingInterval)
	}
	sum := b.WeightSubstrate + b.WeightGeometric + b.WeightForcing + b.WeightMemory + b.WeightObserver
	if sum <= 0 {
		return Bundle{}, fmt.Errorf("field weights must have a positive sum, got %v", sum)
	}
	b.WeightSubstrate /= sum
	b.WeightGeometric /= sum
	b.WeightForcing /= sum
	b.WeightMemory /= sum
	b.WeightObserver /= sum

	if b.MemoryDecayAlpha < 0 || b.MemoryDecayAlpha >= 1 {
		return Bundle{}, fmt.Errorf("memory decay alpha must be in [0,1), got %v", b.MemoryDecayAlpha)
	}
	if b.MemoryWindow < 1 {
		return Bundle{}, fmt.Errorf("memory window must be >= 1, got %d", b.MemoryWindow)
	}
	if b.ConjunctionThresholdDeg <= 0 || b.OppositionThresholdDeg <= 0 {
		return Bundle{}, fmt.Errorf("event thresholds must be positive, got %v / %v",
			b.ConjunctionThresholdDeg, b.OppositionThresholdDeg)
	}
	if b.MaxLag < 1 {
		return Bundle{}, fmt.Errorf("max lag must be >= 1, got %d", b.MaxLag)
	}
	if b.PermutationCount < 1 {
		return Bundle{}, fmt.Errorf("permutation count must be >= 1, got %d", b.PermutationCount)
	}
	if b.BlockSize < 1 {
		return Bundle{}, fmt.Errorf("block size must be >= 1, got %d", b.BlockSize)
	}
	if b.EpochHalfWindow < 1 {
		return Bundle{}, fmt.Errorf("epoch half window must be >= 1, got %d", b.EpochHalfWindow)
	}
	if b.SpectralSegmentLength < 8 {
		return Bundle{}, fmt.Errorf("spectral segment length must be >= 8, got %d", b.SpectralSegmentLength)
	}
	return b, nil
}

// #endregion normalize

// #region load

// Load reads a YAML bundle from path, layered over Default(), and normalizes
// it. Fields absent from the file keep their defaults.
func Load(path string) (Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read config: %w", err)
	}
	b := Default()
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return Bundle{}, fmt.Errorf("parse config: %w", err)
	}
	return b.Normalize()
}

// #endregion load
