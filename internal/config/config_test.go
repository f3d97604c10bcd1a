package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	b, err := Default().Normalize()
	if err != nil {
		t.Fatalf("default bundle failed to normalize: %v", err)
	}
	sum := b.WeightSubstrate + b.WeightGeometric + b.WeightForcing + b.WeightMemory + b.WeightObserver
	if math.Abs(sum-1.0) > 1e-12 {
		t.Fatalf("weights should sum to 1, got %v", sum)
	}
}

func TestNormalizeRescalesWeights(t *testing.T) {
	b := Default()
	b.WeightSubstrate = 2
	b.WeightGeometric = 2
	b.WeightForcing = 2
	b.WeightMemory = 2
	b.WeightObserver = 2

	n, err := b.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if math.Abs(n.WeightSubstrate-0.2) > 1e-12 {
		t.Fatalf("expected renormalized weight 0.2, got %v", n.WeightSubstrate)
	}
}

func TestNormalizeRejectsBadBundles(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Bundle)
	}{
		{"zero interval", func(b *Bundle) { b.SamplingInterval = 0 }},
		{"zero weight sum", func(b *Bundle) {
			b.WeightSubstrate, b.WeightGeometric, b.WeightForcing, b.WeightMemory, b.WeightObserver = 0, 0, 0, 0, 0
		}},
		{"alpha out of range", func(b *Bundle) { b.MemoryDecayAlpha = 1.0 }},
		{"zero memory window", func(b *Bundle) { b.MemoryWindow = 0 }},
		{"zero conjunction threshold", func(b *Bundle) { b.ConjunctionThresholdDeg = 0 }},
		{"negative opposition threshold", func(b *Bundle) { b.OppositionThresholdDeg = -1 }},
		{"zero max lag", func(b *Bundle) { b.MaxLag = 0 }},
		{"zero permutations", func(b *Bundle) { b.PermutationCount = 0 }},
		{"zero block size", func(b *Bundle) { b.BlockSize = 0 }},
		{"tiny spectral segment", func(b *Bundle) { b.SpectralSegmentLength = 4 }},
	}
	for _, tc := range cases {
		b := Default()
		tc.mutate(&b)
		if _, err := b.Normalize(); err == nil {
			t.Errorf("%s: expected normalize error, got nil", tc.name)
		}
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	body := "weight_geometric: 0.5\nmax_lag: 10\nuse_exponential_memory: false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.MaxLag != 10 {
		t.Fatalf("expected max_lag 10, got %d", b.MaxLag)
	}
	if b.UseExponentialMemory {
		t.Fatal("expected windowed memory policy")
	}
	// Unset fields keep defaults (then renormalized).
	if b.PermutationCount != 1000 {
		t.Fatalf("expected default permutation count, got %d", b.PermutationCount)
	}
	if b.WeightGeometric <= b.WeightForcing {
		t.Fatal("overridden geometric weight should dominate after renormalization")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
