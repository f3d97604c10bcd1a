package synth

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/coherence-engine/internal/field"
)

func TestSubstrateShape(t *testing.T) {
	opts := DefaultOptions()
	rows := Substrate(opts)
	if len(rows) != opts.Bodies*opts.Steps {
		t.Fatalf("expected %d rows, got %d", opts.Bodies*opts.Steps, len(rows))
	}

	conjunctions := 0
	for _, r := range rows {
		if r.DistanceAU != 1.0 {
			t.Fatalf("distance should be constant 1 AU, got %v", r.DistanceAU)
		}
		switch r.ElongationDeg {
		case 0:
			conjunctions++
		case 90:
		default:
			t.Fatalf("unexpected elongation %v", r.ElongationDeg)
		}
	}
	// 10 conjunction steps × 2 bodies.
	if conjunctions != 20 {
		t.Fatalf("expected 20 conjunction rows, got %d", conjunctions)
	}
}

func TestSubstrateGridSpacing(t *testing.T) {
	opts := DefaultOptions()
	opts.Bodies = 1
	opts.Steps = 5
	rows := Substrate(opts)
	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.Sub(rows[i-1].Timestamp) != opts.Interval {
			t.Fatalf("row %d: grid spacing broken", i)
		}
	}
}

func TestCoupledIndexDeterministic(t *testing.T) {
	records := []field.Record{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), FieldNorm: 0.2},
		{Timestamp: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), FieldNorm: 0.8},
	}
	a := CoupledIndex(records, 10, 0.1, 5)
	b := CoupledIndex(records, 10, 0.1, 5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed must produce the same index")
		}
	}
	if !a[1].Timestamp.Equal(records[1].Timestamp) {
		t.Fatal("index must share the record grid")
	}
}

func TestCoupledIndexTracksField(t *testing.T) {
	records := []field.Record{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), FieldNorm: 0.0},
		{Timestamp: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), FieldNorm: 1.0},
	}
	points := CoupledIndex(records, 100, 0.001, 3)
	if points[1].Value <= points[0].Value {
		t.Fatal("scaled copy should preserve ordering at low noise")
	}
}
