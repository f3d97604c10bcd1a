package store

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/coherence-engine/internal/config"
	"github.com/danielpatrickdp/coherence-engine/internal/pipeline"
	"github.com/danielpatrickdp/coherence-engine/internal/substrate"
	"github.com/danielpatrickdp/coherence-engine/internal/synth"
)

func runPipeline(t *testing.T) *pipeline.Result {
	t.Helper()
	b := config.Default()
	b.PermutationCount = 100
	b.MaxLag = 8
	cfg, err := b.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	opts := synth.DefaultOptions()
	opts.Steps = 80
	table, err := substrate.NewTable(synth.Substrate(opts))
	if err != nil {
		t.Fatalf("table: %v", err)
	}

	p := pipeline.New(cfg)
	base, err := p.Run(pipeline.Input{Substrate: table})
	if err != nil {
		t.Fatalf("base run: %v", err)
	}
	res, err := p.Run(pipeline.Input{
		Substrate: table,
		Index:     synth.CoupledIndex(base.Records, 10, 0.05, 7),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRunRoundTrip(t *testing.T) {
	res := runPipeline(t)
	s := openStore(t)

	if err := s.SaveRun(res); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := s.LoadRun(res.RunID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(loaded.Records) != len(res.Records) {
		t.Fatalf("record count: %d vs %d", len(loaded.Records), len(res.Records))
	}
	for i, r := range res.Records {
		l := loaded.Records[i]
		if !l.Timestamp.Equal(r.Timestamp) {
			t.Fatalf("record %d: timestamp %v vs %v", i, l.Timestamp, r.Timestamp)
		}
		// Field values must survive the round trip bit-for-bit.
		if l.FieldRaw != r.FieldRaw || l.FieldNorm != r.FieldNorm {
			t.Fatalf("record %d: field values drifted: (%v,%v) vs (%v,%v)",
				i, l.FieldRaw, l.FieldNorm, r.FieldRaw, r.FieldNorm)
		}
		if l.MemoryTerm != r.MemoryTerm || l.ObserverTerm != r.ObserverTerm {
			t.Fatalf("record %d: recurrence terms drifted", i)
		}
		if l.EventFlag != r.EventFlag || l.IsConjunction != r.IsConjunction || l.IsOpposition != r.IsOpposition {
			t.Fatalf("record %d: flags drifted", i)
		}
	}

	if loaded.Outcome.Report.Verdict != res.Outcome.Report.Verdict {
		t.Fatalf("verdict drifted: %s vs %s", loaded.Outcome.Report.Verdict, res.Outcome.Report.Verdict)
	}
	if loaded.Outcome.Report.SampleCount != res.Outcome.Report.SampleCount {
		t.Fatal("sample count drifted")
	}
	if len(loaded.Outcome.LagSweep) != len(res.Outcome.LagSweep) {
		t.Fatal("lag sweep length drifted")
	}
	for i, p := range res.Outcome.LagSweep {
		if loaded.Outcome.LagSweep[i] != p {
			t.Fatalf("lag point %d drifted", i)
		}
	}
	if len(loaded.Outcome.Spectrum) != len(res.Outcome.Spectrum) {
		t.Fatal("spectrum length drifted")
	}

	if loaded.Config.PermutationCount != res.Config.PermutationCount {
		t.Fatal("config snapshot drifted")
	}
}

func TestListRuns(t *testing.T) {
	res := runPipeline(t)
	s := openStore(t)
	if err := s.SaveRun(res); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != res.RunID {
		t.Fatalf("unexpected run index: %+v", runs)
	}
	if runs[0].Verdict == "" {
		t.Fatal("verdict missing from run index")
	}
}

func TestLoadRunMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.LoadRun("no-such-run"); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}
