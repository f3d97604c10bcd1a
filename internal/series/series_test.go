package series

import (
	"math"
	"strings"
	"testing"
	"time"
)

func at(min int) time.Time {
	return time.Date(2024, 1, 1, 0, min, 0, 0, time.UTC)
}

func TestMeanResample(t *testing.T) {
	points := []Point{
		{Timestamp: at(0), Value: 1},
		{Timestamp: at(10), Value: 3},
		{Timestamp: at(70), Value: 10},
	}
	out := MeanResample(points, time.Hour)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	if out[0].Value != 2 {
		t.Fatalf("expected first bucket mean 2, got %v", out[0].Value)
	}
	if out[1].Value != 10 {
		t.Fatalf("expected second bucket mean 10, got %v", out[1].Value)
	}
	if !out[0].Timestamp.Before(out[1].Timestamp) {
		t.Fatal("buckets not ordered")
	}
}

func TestForwardFill(t *testing.T) {
	points := []Point{
		{Timestamp: at(30), Value: 5},
		{Timestamp: at(90), Value: 7},
	}
	grid := []time.Time{at(0), at(30), at(60), at(120)}
	out := ForwardFill(points, grid)
	want := []float64{5, 5, 5, 7}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("grid %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestInnerJoin(t *testing.T) {
	grid := []time.Time{at(0), at(60), at(120)}
	gridValues := []float64{1, 2, 3}
	points := []Point{
		{Timestamp: at(60), Value: 20},
		{Timestamp: at(180), Value: 40},
	}
	ts, left, right := InnerJoin(grid, gridValues, points)
	if len(ts) != 1 || !ts[0].Equal(at(60)) {
		t.Fatalf("expected single join at minute 60, got %v", ts)
	}
	if left[0] != 2 || right[0] != 20 {
		t.Fatalf("expected pair (2,20), got (%v,%v)", left[0], right[0])
	}
}

func TestMinMaxNormalize(t *testing.T) {
	out := MinMaxNormalize([]float64{2, 4, 6})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestMinMaxNormalizeConstant(t *testing.T) {
	out := MinMaxNormalize([]float64{3, 3, 3})
	for i, v := range out {
		if v != 0 {
			t.Fatalf("index %d: constant series should normalize to 0, got %v", i, v)
		}
	}
}

func TestDetrendRemovesLinearRamp(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 3 + 0.5*float64(i)
	}
	out := Detrend(values)
	for i, v := range out {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("index %d: expected residual ~0, got %v", i, v)
		}
	}
}

func TestZScore(t *testing.T) {
	out := ZScore([]float64{1, 2, 3, 4, 5})
	var sum float64
	for _, v := range out {
		sum += v
	}
	if math.Abs(sum) > 1e-9 {
		t.Fatalf("z-scored series should have zero mean, got sum %v", sum)
	}

	flat := ZScore([]float64{2, 2, 2})
	for _, v := range flat {
		if v != 0 {
			t.Fatal("zero-variance series should z-score to zeros")
		}
	}
}

func TestReadCSV(t *testing.T) {
	in := strings.Join([]string{
		"timestamp,value",
		"2024-01-01T00:00:00Z,1.5",
		"2024-01-01T01:00:00Z,2.5",
	}, "\n")
	points, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(points) != 2 || points[1].Value != 2.5 {
		t.Fatalf("unexpected points: %+v", points)
	}
}
