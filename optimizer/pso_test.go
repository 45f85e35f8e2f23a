package optimizer

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/zintix-labs/crashlab/paramspace"
	"github.com/zintix-labs/crashlab/sdk/core"
	"github.com/zintix-labs/crashlab/stats"
)

func testSpace() paramspace.Space {
	return paramspace.Space{
		{Name: "payout", Kind: paramspace.Payout, Min: 1.01, Max: 10},
		{Name: "bet", Kind: paramspace.Balance, Min: 100, Max: 1000},
	}
}

func newTestSrc(seed int64) *core.Core {
	return core.New(core.Default().New(seed))
}

func TestPSOConstantObjectiveConverges(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(1)
	objective := func(c paramspace.Candidate) (float64, error) {
		return 7.5, nil
	}
	cfg := Config{Population: 6, Iterations: 4, TopK: 5, PSO: PSOConfig{W: 0.9, C1: 1.5, C2: 1.5}}

	res, err := PSO{}.Optimize(sp, objective, cfg, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.BestMetric != 7.5 {
		t.Fatalf("BestMetric = %v, want 7.5", res.BestMetric)
	}
	if len(res.TopK) == 0 {
		t.Fatalf("expected a non-empty top-K")
	}
	for _, e := range res.TopK {
		if e.Fitness != 7.5 {
			t.Fatalf("top-K entry fitness = %v, want 7.5", e.Fitness)
		}
	}
}

func TestPSODefaultsApplyWhenZero(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(2)
	objective := func(c paramspace.Candidate) (float64, error) { return 1, nil }

	res, err := PSO{}.Optimize(sp, objective, Config{}, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.BestMetric != 1 {
		t.Fatalf("BestMetric = %v, want 1", res.BestMetric)
	}
}

// TestPSOObjectiveCalledOncePerUniqueCandidate exercises invariant 7: the
// fitness cache must serialize duplicate evaluations of the same projected
// candidate within a run, even when particles race to evaluate it.
func TestPSOObjectiveCalledOncePerUniqueCandidate(t *testing.T) {
	sp := paramspace.Space{
		{Name: "payout", Kind: paramspace.Radio, RadioValues: []float64{2}},
	}
	src := newTestSrc(3)

	var calls int64
	objective := func(c paramspace.Candidate) (float64, error) {
		atomic.AddInt64(&calls, 1)
		return c["payout"], nil
	}

	cfg := Config{Population: 12, Iterations: 1, TopK: 5, PSO: PSOConfig{W: 0.9, C1: 1.5, C2: 1.5}}
	res, err := PSO{}.Optimize(sp, objective, cfg, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.BestMetric != 2 {
		t.Fatalf("BestMetric = %v, want 2", res.BestMetric)
	}
	// Every particle starts on the same (single radio option) candidate,
	// so all 12 evaluations collapse to one cache key.
	if calls != 1 {
		t.Fatalf("objective called %d times, want exactly 1", calls)
	}
}

func TestPSOAllInfeasibleYieldsEmptyTopK(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(4)
	objective := func(c paramspace.Candidate) (float64, error) {
		return stats.InfeasibleMetric, nil
	}

	cfg := Config{Population: 5, Iterations: 2, TopK: 3}
	res, err := PSO{}.Optimize(sp, objective, cfg, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(res.TopK) != 0 {
		t.Fatalf("expected empty top-K, got %d entries", len(res.TopK))
	}
	if isFeasible(res.BestMetric) {
		t.Fatalf("BestMetric should remain the infeasible sentinel")
	}
}

func TestPSOPropagatesObjectiveError(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(5)
	objective := func(c paramspace.Candidate) (float64, error) {
		return 0, errors.New("boom")
	}

	cfg := Config{Population: 4, Iterations: 2, TopK: 3}
	_, err := PSO{}.Optimize(sp, objective, cfg, src)
	if err == nil {
		t.Fatalf("expected error to propagate")
	}
}
