package optimizer

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/zintix-labs/crashlab/paramspace"
	"github.com/zintix-labs/crashlab/stats"
)

func TestGAConstantObjectiveConverges(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(10)
	objective := func(c paramspace.Candidate) (float64, error) {
		return 3.25, nil
	}
	cfg := Config{Population: 8, Iterations: 5, TopK: 10, GA: GAConfig{
		TournamentSize: 5, EliteSize: 2,
		CrossoverStart: 0.1, CrossoverEnd: 0.9,
		MutationStart: 0.9, MutationEnd: 0.1,
	}}

	res, err := GA{}.Optimize(sp, objective, cfg, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.BestMetric != 3.25 {
		t.Fatalf("BestMetric = %v, want 3.25", res.BestMetric)
	}
	for _, e := range res.TopK {
		if e.Fitness != 3.25 {
			t.Fatalf("top-K entry fitness = %v, want 3.25", e.Fitness)
		}
	}
}

func TestGADefaultsApplyWhenZero(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(11)
	objective := func(c paramspace.Candidate) (float64, error) { return 2, nil }

	res, err := GA{}.Optimize(sp, objective, Config{}, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.BestMetric != 2 {
		t.Fatalf("BestMetric = %v, want 2", res.BestMetric)
	}
}

func TestGAAllInfeasibleYieldsEmptyTopK(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(12)
	objective := func(c paramspace.Candidate) (float64, error) {
		return stats.InfeasibleMetric, nil
	}
	cfg := Config{Population: 6, Iterations: 3, TopK: 4}

	res, err := GA{}.Optimize(sp, objective, cfg, src)
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

func TestGAPropagatesObjectiveError(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(13)
	objective := func(c paramspace.Candidate) (float64, error) {
		return 0, errors.New("boom")
	}
	cfg := Config{Population: 5, Iterations: 2, TopK: 3}

	_, err := GA{}.Optimize(sp, objective, cfg, src)
	if err == nil {
		t.Fatalf("expected error to propagate")
	}
}

// TestGAObjectiveCalledOncePerUniqueCandidate mirrors the PSO cache-coherence
// case: a single-valued radio gene collapses every member of every
// generation onto one cache key, so the objective should run exactly once.
func TestGAObjectiveCalledOncePerUniqueCandidate(t *testing.T) {
	sp := paramspace.Space{
		{Name: "payout", Kind: paramspace.Radio, RadioValues: []float64{4}},
	}
	src := newTestSrc(14)

	var calls int64
	objective := func(c paramspace.Candidate) (float64, error) {
		atomic.AddInt64(&calls, 1)
		return c["payout"], nil
	}
	cfg := Config{Population: 10, Iterations: 3, TopK: 5, GA: GAConfig{
		TournamentSize: 3, EliteSize: 2,
		CrossoverStart: 0.5, CrossoverEnd: 0.5,
		MutationStart: 0, MutationEnd: 0,
	}}

	res, err := GA{}.Optimize(sp, objective, cfg, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.BestMetric != 4 {
		t.Fatalf("BestMetric = %v, want 4", res.BestMetric)
	}
	if calls != 1 {
		t.Fatalf("objective called %d times, want exactly 1", calls)
	}
}

func TestGAWithEliteRetentionProducesTopK(t *testing.T) {
	sp := testSpace()
	src := newTestSrc(15)

	// The objective rewards candidates with a higher payout value; with
	// three elites kept per generation the run must still finish with a
	// non-empty top-K.
	objective := func(c paramspace.Candidate) (float64, error) {
		return -c["payout"], nil
	}
	cfg := Config{Population: 8, Iterations: 6, TopK: 10, GA: GAConfig{
		TournamentSize: 5, EliteSize: 3,
		CrossoverStart: 0.3, CrossoverEnd: 0.3,
		MutationStart: 0.5, MutationEnd: 0.5,
	}}

	res, err := GA{}.Optimize(sp, objective, cfg, src)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(res.TopK) == 0 {
		t.Fatalf("expected a non-empty top-K")
	}
}

func TestRampInterpolatesLinearly(t *testing.T) {
	if v := ramp(0.1, 0.9, 0, 5); v != 0.1 {
		t.Fatalf("ramp at gen 0 = %v, want 0.1", v)
	}
	if v := ramp(0.1, 0.9, 4, 5); v != 0.9 {
		t.Fatalf("ramp at last gen = %v, want 0.9", v)
	}
	mid := ramp(0.1, 0.9, 2, 5)
	if mid <= 0.1 || mid >= 0.9 {
		t.Fatalf("ramp midpoint = %v, want strictly between 0.1 and 0.9", mid)
	}
}

func TestRampSingleGenerationReturnsEnd(t *testing.T) {
	if v := ramp(0.1, 0.9, 0, 1); v != 0.9 {
		t.Fatalf("ramp with totalGens=1 = %v, want end value 0.9", v)
	}
}
