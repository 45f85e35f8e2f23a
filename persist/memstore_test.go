package persist

import "testing"

func TestMemStoreSaveLoadOptimization(t *testing.T) {
	s := NewMemStore()
	rec := OptimizationRecord{ID: "opt-1", Engine: "pso", Status: StatusRunning, GbestValue: 1.23}

	if err := s.SaveOptimization(rec); err != nil {
		t.Fatalf("SaveOptimization: %v", err)
	}
	got, err := s.LoadOptimization("opt-1")
	if err != nil {
		t.Fatalf("LoadOptimization: %v", err)
	}
	if got.GbestValue != 1.23 || got.Status != StatusRunning {
		t.Fatalf("loaded record mismatch: %+v", got)
	}
}

func TestMemStoreLoadMissingIsError(t *testing.T) {
	s := NewMemStore()
	if _, err := s.LoadOptimization("nope"); err == nil {
		t.Fatalf("expected error loading a missing record")
	}
}

func TestMemStoreSaveEmptyIDIsError(t *testing.T) {
	s := NewMemStore()
	if err := s.SaveOptimization(OptimizationRecord{}); err == nil {
		t.Fatalf("expected error saving a record with empty id")
	}
}

func TestMemStoreExistsAndDelete(t *testing.T) {
	s := NewMemStore()
	_ = s.SaveOptimization(OptimizationRecord{ID: "opt-2"})

	ok, err := s.ExistsOptimization("opt-2")
	if err != nil || !ok {
		t.Fatalf("ExistsOptimization = %v, %v, want true, nil", ok, err)
	}

	if err := s.DeleteOptimization("opt-2"); err != nil {
		t.Fatalf("DeleteOptimization: %v", err)
	}
	ok, err = s.ExistsOptimization("opt-2")
	if err != nil || ok {
		t.Fatalf("ExistsOptimization after delete = %v, %v, want false, nil", ok, err)
	}
}

func TestMemStoreListOptimizationsSorted(t *testing.T) {
	s := NewMemStore()
	_ = s.SaveOptimization(OptimizationRecord{ID: "b"})
	_ = s.SaveOptimization(OptimizationRecord{ID: "a"})
	_ = s.SaveOptimization(OptimizationRecord{ID: "c"})

	ids, err := s.ListOptimizations()
	if err != nil {
		t.Fatalf("ListOptimizations: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestMemStoreIterationRoundTrip(t *testing.T) {
	s := NewMemStore()
	rec := IterationRecord{
		OptimizationID: "opt-3",
		Iteration:      2,
		Population:     []map[string]float64{{"payout": 2.5}},
		BestValue:      0.5,
		BestPosition:   map[string]float64{"payout": 2.5},
	}
	if err := s.SaveIteration(rec); err != nil {
		t.Fatalf("SaveIteration: %v", err)
	}
	got, err := s.LoadIteration("opt-3", 2)
	if err != nil {
		t.Fatalf("LoadIteration: %v", err)
	}
	if got.BestValue != 0.5 || got.Population[0]["payout"] != 2.5 {
		t.Fatalf("loaded iteration mismatch: %+v", got)
	}
}

func TestMemStoreListIterationsSorted(t *testing.T) {
	s := NewMemStore()
	_ = s.SaveIteration(IterationRecord{OptimizationID: "opt-4", Iteration: 3})
	_ = s.SaveIteration(IterationRecord{OptimizationID: "opt-4", Iteration: 1})
	_ = s.SaveIteration(IterationRecord{OptimizationID: "opt-4", Iteration: 2})

	iters, err := s.ListIterations("opt-4")
	if err != nil {
		t.Fatalf("ListIterations: %v", err)
	}
	want := []int{1, 2, 3}
	if len(iters) != len(want) {
		t.Fatalf("iters = %v, want %v", iters, want)
	}
	for i := range want {
		if iters[i] != want[i] {
			t.Fatalf("iters = %v, want %v", iters, want)
		}
	}
}

func TestMemStoreDeleteOptimizationDropsIterations(t *testing.T) {
	s := NewMemStore()
	_ = s.SaveOptimization(OptimizationRecord{ID: "opt-5"})
	_ = s.SaveIteration(IterationRecord{OptimizationID: "opt-5", Iteration: 1})

	if err := s.DeleteOptimization("opt-5"); err != nil {
		t.Fatalf("DeleteOptimization: %v", err)
	}
	if _, err := s.LoadIteration("opt-5", 1); err == nil {
		t.Fatalf("expected iterations for a deleted optimization to be gone")
	}
}
