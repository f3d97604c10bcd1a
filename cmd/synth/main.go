package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
	"github.com/danielpatrickdp/coherence-engine/internal/pipeline"
	"github.com/danielpatrickdp/coherence-engine/internal/series"
	"github.com/danielpatrickdp/coherence-engine/internal/substrate"
	"github.com/danielpatrickdp/coherence-engine/internal/synth"
)

// #region main

func main() {
	substrateOut := flag.String("substrate-out", "substrate.csv", "output path for the synthetic substrate CSV")
	indexOut := flag.String("index-out", "", "output path for a coupled index CSV (optional)")
	bodies := flag.Int("bodies", 2, "bodies per timestamp")
	steps := flag.Int("steps", 200, "number of timesteps")
	every := flag.Int("every", 20, "conjunction every Nth step")
	noise := flag.Float64("noise", 0.02, "index noise scale")
	seed := flag.Int64("seed", 1, "index noise seed")
	flag.Parse()

	opts := synth.DefaultOptions()
	opts.Bodies = *bodies
	opts.Steps = *steps
	opts.ConjunctionEvery = *every

	rows := synth.Substrate(opts)
	if err := writeSubstrate(*substrateOut, rows); err != nil {
		fmt.Fprintf(os.Stderr, "write substrate: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d substrate rows to %s\n", len(rows), *substrateOut)

	if *indexOut == "" {
		return
	}
	points, err := coupledIndex(rows, *noise, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "derive index: %v\n", err)
		os.Exit(1)
	}
	if err := writeSeries(*indexOut, points); err != nil {
		fmt.Fprintf(os.Stderr, "write index: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d index points to %s\n", len(points), *indexOut)
}

// #endregion main

// #region index

// coupledIndex runs the default pipeline once to obtain the normalized field
// and derives a lag-0 coupled index from it.
func coupledIndex(rows []substrate.Row, noise float64, seed int64) ([]series.Point, error) {
	cfg, err := config.Default().Normalize()
	if err != nil {
		return nil, err
	}
	table, err := substrate.NewTable(rows)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.New(cfg).Run(pipeline.Input{Substrate: table})
	if err != nil {
		return nil, err
	}
	return synth.CoupledIndex(res.Records, 100.0, noise, seed), nil
}

// #endregion index

// #region csv

func writeSubstrate(path string, rows []substrate.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "body_id", "ra_deg", "dec_deg", "elongation_deg", "distance_au"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.BodyID,
			formatFloat(r.RightAscensionDeg),
			formatFloat(r.DeclinationDeg),
			formatFloat(r.ElongationDeg),
			formatFloat(r.DistanceAU),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeSeries(path string, points []series.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "value"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := w.Write([]string{p.Timestamp.UTC().Format(time.RFC3339), formatFloat(p.Value)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion csv
