package validate

import (
	"math/rand"
	"sort"
	"testing"
)

func TestBlockShufflePreservesValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7}
	rng := rand.New(rand.NewSource(7))
	shuffled := blockShuffle(values, 3, rng)

	if len(shuffled) != len(values) {
		t.Fatalf("length changed: %d vs %d", len(shuffled), len(values))
	}
	a := append([]float64(nil), values...)
	b := append([]float64(nil), shuffled...)
	sort.Float64s(a)
	sort.Float64s(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("shuffle must preserve the multiset of values")
		}
	}
}

func TestBlockShuffleKeepsBlocksContiguous(t *testing.T) {
	// With block size 2 over 6 values, pairs (1,2), (3,4), (5,6) must stay
	// adjacent in order.
	values := []float64{1, 2, 3, 4, 5, 6}
	rng := rand.New(rand.NewSource(3))
	shuffled := blockShuffle(values, 2, rng)
	for i := 0; i < len(shuffled); i += 2 {
		if shuffled[i+1] != shuffled[i]+1 {
			t.Fatalf("block broken at %d: %v", i, shuffled)
		}
	}
}

func TestBlockShuffleDeterministicPerSeed(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	a := blockShuffle(values, 2, rand.New(rand.NewSource(11)))
	b := blockShuffle(values, 2, rand.New(rand.NewSource(11)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed must produce the same shuffle")
		}
	}
}

func TestNullDistributionReproducible(t *testing.T) {
	trial := func(rng *rand.Rand) float64 { return rng.Float64() }
	a := nullDistribution(64, 42, trial)
	b := nullDistribution(64, 42, trial)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("trial %d differs across identical runs", i)
		}
	}
}

func TestPValue(t *testing.T) {
	null := []float64{0.1, 0.2, 0.3, 0.4}
	if p := pValue(null, 0.25); p != 0.5 {
		t.Fatalf("expected p 0.5, got %v", p)
	}
	if p := pValue(null, 0.0); p != 1.0 {
		t.Fatalf("expected p 1.0, got %v", p)
	}
	if p := pValue(null, 0.9); p != 0.0 {
		t.Fatalf("expected p 0.0, got %v", p)
	}
	if p := pValue(nil, 0.5); p != 1.0 {
		t.Fatalf("empty null should be maximally conservative, got %v", p)
	}
}
