package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/coherence-engine/internal/store"
	"github.com/danielpatrickdp/coherence-engine/internal/validate"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to SQLite run store (required)")
	runID := flag.String("run", "", "run id to inspect (default: list all runs)")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db runs.db [--run RUN_ID]")
		os.Exit(2)
	}

	s, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	if *runID == "" {
		os.Exit(listRuns(s))
	}
	os.Exit(showRun(s, *runID))
}

// #endregion main

// #region list

func listRuns(s *store.Store) int {
	runs, err := s.ListRuns()
	if err != nil {
		fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Println("no runs stored")
		return 0
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %s\n", r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Verdict)
	}
	return 0
}

// #endregion list

// #region show

func showRun(s *store.Store, runID string) int {
	res, err := s.LoadRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load run: %v\n", err)
		return 1
	}

	rep := res.Outcome.Report
	fmt.Printf("run %s (created %s)\n", res.RunID, res.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("timesteps: %d  samples: %d  verdict: %s\n", len(res.Records), rep.SampleCount, rep.Verdict)

	events := 0
	for _, r := range res.Records {
		if r.EventFlag {
			events++
		}
	}
	fmt.Printf("events: %d\n", events)

	if rep.Lag.Status == validate.StatusOK {
		fmt.Printf("lag test:      p=%.4f best_lag=%d best_r=%.4f (%d sweep points)\n",
			rep.Lag.PValue, rep.Lag.BestLag, rep.Lag.BestR, len(res.Outcome.LagSweep))
	} else {
		fmt.Printf("lag test:      %s\n", rep.Lag.Status)
	}
	if rep.Spectral.Status == validate.StatusOK {
		fmt.Printf("spectral test: p=%.4f peak=%.4f (%d spectrum bins)\n",
			rep.Spectral.PValue, rep.Spectral.PeakCoherence, len(res.Outcome.Spectrum))
	} else {
		fmt.Printf("spectral test: %s\n", rep.Spectral.Status)
	}
	if rep.Epoch.Status == validate.StatusOK {
		fmt.Printf("epoch test:    p=%.4f events=%d peak_response=%.4f\n",
			rep.Epoch.PValue, rep.Epoch.EventCount, rep.Epoch.PeakResponse)
	} else {
		fmt.Printf("epoch test:    %s\n", rep.Epoch.Status)
	}
	return 0
}

// #endregion show
