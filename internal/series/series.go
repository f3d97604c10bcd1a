package series

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// epsRange floors degenerate denominators so constant series normalize to
// zero instead of dividing by zero.
const epsRange = 1e-12

// #region types

// Point is one (timestamp, value) observation of a scalar series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// #endregion types

// #region resample

// MeanResample buckets points onto the given cadence and averages each
// bucket. Output is ordered ascending by bucket timestamp.
func MeanResample(points []Point, interval time.Duration) []Point {
	if len(points) == 0 {
		return nil
	}
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, p := range points {
		bucket := p.Timestamp.Truncate(interval)
		sums[bucket] += p.Value
		counts[bucket]++
	}
	out := make([]Point, 0, len(sums))
	for ts, sum := range sums {
		out = append(out, Point{Timestamp: ts, Value: sum / float64(counts[ts])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// ForwardFill projects points onto a timestamp grid, carrying the last seen
// value forward. Grid entries before the first point take the first value.
func ForwardFill(points []Point, grid []time.Time) []float64 {
	if len(points) == 0 || len(grid) == 0 {
		return nil
	}
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	out := make([]float64, len(grid))
	idx := 0
	for i, ts := range grid {
		for idx+1 < len(sorted) && !sorted[idx+1].Timestamp.After(ts) {
			idx++
		}
		out[i] = sorted[idx].Value
	}
	return out
}

// InnerJoin matches grid timestamps against points and returns the aligned
// value pairs plus the surviving timestamps.
func InnerJoin(grid []time.Time, gridValues []float64, points []Point) (ts []time.Time, left, right []float64) {
	byTS := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byTS[p.Timestamp] = p.Value
	}
	for i, t := range grid {
		v, ok := byTS[t]
		if !ok {
			continue
		}
		ts = append(ts, t)
		left = append(left, gridValues[i])
		right = append(right, v)
	}
	return ts, left, right
}

// #endregion resample

// #region transforms

// MinMaxNormalize rescales values to [0,1]. A constant series maps to all
// zeros rather than failing.
func MinMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	lo0 := lo.Min(values)
	hi := lo.Max(values)
	span := hi - lo0
	if span < epsRange {
		span = epsRange
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo0) / span
	}
	return out
}

// Detrend removes the least-squares linear trend from values.
func Detrend(values []float64) []float64 {
	if len(values) < 2 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, values, nil, false)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v - (alpha + beta*xs[i])
	}
	return out
}

// ZScore centers values and scales to unit variance. A zero-variance series
// maps to all zeros.
func ZScore(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	mean, std := stat.MeanStdDev(values, nil)
	out := make([]float64, len(values))
	if std < epsRange {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// #endregion transforms

// #region csv

// ReadCSV parses a two-column (timestamp, value) series. The first record is
// treated as a header when its timestamp does not parse.
func ReadCSV(r io.Reader) ([]Point, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	var out []Point
	for i, rec := range records {
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("record %d: bad timestamp %q: %w", i+1, rec[0], err)
		}
		v, err := parseFloat(rec[1], i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{Timestamp: ts.UTC(), Value: v})
	}
	return out, nil
}

// #endregion csv
