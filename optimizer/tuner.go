// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package optimizer

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/crashlab/errs"
	"github.com/zintix-labs/crashlab/paramspace"
	"github.com/zintix-labs/crashlab/persist"
	"github.com/zintix-labs/crashlab/sdk/core"
	"github.com/zintix-labs/crashlab/stats"
)

// Tuner is the orchestration layer around an Engine: it names the run,
// reports every cache-miss evaluation through a logger, and checkpoints
// progress to a persist.Store as iterations complete. Store and Logger
// are both optional; a nil Store skips persistence entirely and a nil
// Logger is replaced with one that discards everything.
type Tuner struct {
	Engine Engine
	Store  persist.Store
	Logger *slog.Logger
}

// NewTuner builds a Tuner. A nil logger defaults to discarding output.
func NewTuner(engine Engine, store persist.Store, logger *slog.Logger) *Tuner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tuner{Engine: engine, Store: store, Logger: logger}
}

func engineName(e Engine) string {
	switch e.(type) {
	case PSO:
		return "pso"
	case GA:
		return "ga"
	default:
		return "unknown"
	}
}

// Run drives one optimization under id, persisting its status and gbest
// before returning, and its per-iteration progress as the run proceeds.
// objective is wrapped so every call (which, per the cache's coherence
// guarantee, is exactly one call per unique projected candidate) is
// logged with its parameters and resulting fitness.
func (t *Tuner) Run(id string, sp paramspace.Space, objective Objective, cfg Config, src *core.Core) (*Result, error) {
	name := engineName(t.Engine)
	now := time.Now()

	if t.Store != nil {
		rec := persist.OptimizationRecord{
			ID:        id,
			Engine:    name,
			Status:    persist.StatusRunning,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := t.Store.SaveOptimization(rec); err != nil {
			return nil, errs.Wrap(err, "tuner: save initial optimization record")
		}
	}

	logged := func(c paramspace.Candidate) (float64, error) {
		fit, err := objective(c)
		if err != nil {
			t.Logger.Error("candidate evaluation failed", "optimization_id", id, "params", c, "error", err)
			return fit, err
		}
		t.Logger.Info("candidate evaluated", "optimization_id", id, "params", c, "fitness", fit)
		return fit, nil
	}

	cfg.OnIteration = func(iteration int, snapshot *Result) {
		t.Logger.Debug("iteration complete", "optimization_id", id, "iteration", iteration, "best_metric", snapshot.BestMetric)
		if t.Store == nil {
			return
		}
		population := make([]map[string]float64, 0, len(snapshot.TopK))
		for _, e := range snapshot.TopK {
			population = append(population, map[string]float64(e.Candidate))
		}
		iterRec := persist.IterationRecord{
			OptimizationID: id,
			Iteration:      iteration,
			Population:     population,
			BestValue:      snapshot.BestMetric,
			BestPosition:   snapshot.BestParams,
			RecordedAt:     time.Now(),
		}
		if err := t.Store.SaveIteration(iterRec); err != nil {
			t.Logger.Error("failed to persist iteration", "optimization_id", id, "iteration", iteration, "error", err)
		}

		optRec := persist.OptimizationRecord{
			ID:               id,
			Engine:           name,
			Status:           persist.StatusRunning,
			CurrentIteration: iteration,
			GbestValue:       snapshot.BestMetric,
			GbestPosition:    snapshot.BestParams,
			CreatedAt:        now,
			UpdatedAt:        time.Now(),
		}
		if err := t.Store.SaveOptimization(optRec); err != nil {
			t.Logger.Error("failed to persist optimization progress", "optimization_id", id, "error", err)
		}
	}

	res, err := t.Engine.Optimize(sp, logged, cfg, src)

	if t.Store != nil {
		status := persist.StatusCompleted
		if err != nil {
			status = persist.StatusFailed
		}
		finalIteration := cfg.Iterations
		finalMetric := stats.InfeasibleMetric
		var finalParams paramspace.Candidate
		if res != nil {
			finalMetric = res.BestMetric
			finalParams = res.BestParams
		}
		finalRec := persist.OptimizationRecord{
			ID:               id,
			Engine:           name,
			Status:           status,
			CurrentIteration: finalIteration,
			GbestValue:       finalMetric,
			GbestPosition:    finalParams,
			CreatedAt:        now,
			UpdatedAt:        time.Now(),
		}
		if saveErr := t.Store.SaveOptimization(finalRec); saveErr != nil && err == nil {
			return res, errs.Wrap(saveErr, "tuner: save final optimization record")
		}
	}

	return res, err
}
