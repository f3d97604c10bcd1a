package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
	"github.com/danielpatrickdp/coherence-engine/internal/field"
	"github.com/danielpatrickdp/coherence-engine/internal/pipeline"
	"github.com/danielpatrickdp/coherence-engine/internal/series"
	"github.com/danielpatrickdp/coherence-engine/internal/store"
	"github.com/danielpatrickdp/coherence-engine/internal/substrate"
	"github.com/danielpatrickdp/coherence-engine/internal/validate"
)

// #region main

func main() {
	substratePath := flag.String("substrate", "", "path to substrate CSV (required)")
	proxyPath := flag.String("proxy", "", "path to solar proxy CSV (optional)")
	indexPath := flag.String("index", "", "path to index series CSV (optional)")
	configPath := flag.String("config", "", "path to YAML config (optional, defaults apply)")
	dbPath := flag.String("db", "", "path to SQLite run store (optional)")
	timeseriesOut := flag.String("timeseries-out", "", "path for a derived-timeseries CSV (optional)")
	flag.Parse()

	if *substratePath == "" {
		fmt.Fprintln(os.Stderr, "usage: engine --substrate substrate.csv [--proxy proxy.csv] [--index index.csv] [--config engine.yaml] [--db runs.db] [--timeseries-out ts.csv]")
		os.Exit(2)
	}
	os.Exit(run(*substratePath, *proxyPath, *indexPath, *configPath, *dbPath, *timeseriesOut))
}

// #endregion main

// #region run

func run(substratePath, proxyPath, indexPath, configPath, dbPath, timeseriesOut string) int {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	in, err := loadInput(substratePath, proxyPath, indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "input: %v\n", err)
		return 2
	}

	res, err := pipeline.New(cfg).Run(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
		return 1
	}

	if dbPath != "" {
		s, err := store.NewStore(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store: %v\n", err)
			return 1
		}
		defer s.Close()
		if err := s.SaveRun(res); err != nil {
			fmt.Fprintf(os.Stderr, "save run: %v\n", err)
			return 1
		}
		log.Printf("[ENGINE] run %s persisted to %s", res.RunID, dbPath)
	}

	if timeseriesOut != "" {
		if err := writeTimeseries(timeseriesOut, res.Records); err != nil {
			fmt.Fprintf(os.Stderr, "write timeseries: %v\n", err)
			return 1
		}
		log.Printf("[ENGINE] timeseries written to %s", timeseriesOut)
	}

	printReport(res)
	return 0
}

func loadConfig(path string) (config.Bundle, error) {
	if path == "" {
		return config.Default().Normalize()
	}
	return config.Load(path)
}

func loadInput(substratePath, proxyPath, indexPath string) (pipeline.Input, error) {
	var in pipeline.Input

	f, err := os.Open(substratePath)
	if err != nil {
		return in, fmt.Errorf("open substrate: %w", err)
	}
	defer f.Close()
	if in.Substrate, err = substrate.ReadCSV(f); err != nil {
		return in, fmt.Errorf("substrate: %w", err)
	}

	if proxyPath != "" {
		if in.SolarProxy, err = readSeries(proxyPath); err != nil {
			return in, fmt.Errorf("proxy: %w", err)
		}
	}
	if indexPath != "" {
		if in.Index, err = readSeries(indexPath); err != nil {
			return in, fmt.Errorf("index: %w", err)
		}
	}
	return in, nil
}

func readSeries(path string) ([]series.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return series.ReadCSV(f)
}

// writeTimeseries exports every derived timestep as CSV, formatting floats
// losslessly so a reload reproduces the field values exactly.
func writeTimeseries(path string, records []field.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"timestamp", "geometric_coherence", "forcing", "field_raw",
		"memory_term", "observer_term", "field_normalized",
		"event_flag", "is_conjunction", "is_opposition"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			formatFloat(r.GeometricCoherence),
			formatFloat(r.Forcing),
			formatFloat(r.FieldRaw),
			formatFloat(r.MemoryTerm),
			formatFloat(r.ObserverTerm),
			formatFloat(r.FieldNorm),
			strconv.FormatBool(r.EventFlag),
			strconv.FormatBool(r.IsConjunction),
			strconv.FormatBool(r.IsOpposition),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion run

// #region report

func printReport(res *pipeline.Result) {
	rep := res.Outcome.Report
	fmt.Printf("run %s\n", res.RunID)
	fmt.Printf("timesteps: %d  overlapping samples: %d\n", len(res.Records), rep.SampleCount)

	events := 0
	for _, r := range res.Records {
		if r.EventFlag {
			events++
		}
	}
	fmt.Printf("events flagged: %d\n", events)

	printTest("lag", string(rep.Lag.Status), rep.Lag.PValue,
		fmt.Sprintf("best_lag=%d best_r=%.4f", rep.Lag.BestLag, rep.Lag.BestR))
	printTest("spectral", string(rep.Spectral.Status), rep.Spectral.PValue,
		fmt.Sprintf("peak_coherence=%.4f", rep.Spectral.PeakCoherence))
	printTest("epoch", string(rep.Epoch.Status), rep.Epoch.PValue,
		fmt.Sprintf("events=%d peak_response=%.4f", rep.Epoch.EventCount, rep.Epoch.PeakResponse))

	fmt.Printf("verdict: %s\n", rep.Verdict)
}

func printTest(name, status string, p float64, detail string) {
	if status != string(validate.StatusOK) {
		fmt.Printf("  %-9s %s\n", name, status)
		return
	}
	fmt.Printf("  %-9s p=%.4f  %s\n", name, p, detail)
}

// #endregion report
