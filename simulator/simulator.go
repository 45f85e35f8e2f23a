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

// Package simulator runs a strategy over a candidate's game sets: one
// simulation per set, set runs fully independent and in parallel, each
// driving its own Engine/Statistics/History sequentially to completion.
package simulator

import (
	"fmt"
	"sync"

	"github.com/zintix-labs/crashlab/engine"
	"github.com/zintix-labs/crashlab/errs"
	"github.com/zintix-labs/crashlab/history"
	"github.com/zintix-labs/crashlab/paramspace"
	"github.com/zintix-labs/crashlab/rng"
	"github.com/zintix-labs/crashlab/stats"
	"github.com/zintix-labs/crashlab/strategy"
)

// Config is the simulator's own operating parameters, distinct from the
// strategy's parameter space. Loadable from YAML at the harness's config
// layer.
type Config struct {
	NumSets           int     `yaml:"num_sets"`
	NumGames          int     `yaml:"num_games"`
	RequiredMedian    float64 `yaml:"required_median"`
	InitialBalance    int64   `yaml:"initial_balance"`
	BuilderAttemptCap int     `yaml:"builder_attempt_cap"`
}

// Result is what one candidate's full simulation produces.
type Result struct {
	Config    map[string]any
	Averaged  *stats.Statistics
	Metric    float64
	Logs      []string
	SetsTotal int
	SetsOK    int
}

// ScriptFactory builds a fresh Script instance for one set. Scripts carry
// load-time closures bound to that set's engine, so a new one is needed
// per set rather than reusing one across sets.
type ScriptFactory func() strategy.Script

// bitsToSatoshi is the scale factor between a balance parameter's
// user-facing "bits" input and the engine's internal satoshi-like units.
const bitsToSatoshi = 100

// composeConfig overlays candidate onto sp's default config, yielding the
// per-run config a strategy script is bound to. Balance-kind values are
// received in bits and converted to satoshi; every other kind passes
// through unchanged.
func composeConfig(sp paramspace.Space, candidate paramspace.Candidate) map[string]any {
	merged := sp.Default()
	for name, v := range candidate {
		merged[name] = v
	}

	kinds := make(map[string]paramspace.Kind, len(sp))
	for _, d := range sp {
		kinds[d.Name] = d.Kind
	}

	out := make(map[string]any, len(merged))
	for name, v := range merged {
		if kinds[name] == paramspace.Balance {
			out[name] = int64(v) * bitsToSatoshi
		} else {
			out[name] = v
		}
	}
	return out
}

// Run simulates candidate over the given game sets concurrently, one
// simulation per set (spec §5: parallel across sets, sequential within a
// set), then averages the statistics of the sets that completed without
// error. A set that completes without placing a bet survives; its metric
// is stats.InfeasibleMetric. Zero surviving sets is reported as an
// AggregationEmpty error (the candidate is infeasible) and a nil *Result.
func Run(sets [][]rng.Round, cfg Config, sp paramspace.Space, candidate paramspace.Candidate, newScript ScriptFactory) (*Result, error) {
	config := composeConfig(sp, candidate)

	n := len(sets)
	results := make([]*stats.Statistics, n)
	logs := make([][]string, n)
	failed := make([]bool, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i, set := range sets {
		i, set := i, set
		go func() {
			defer wg.Done()
			s, setLogs, err := runOneSet(set, cfg.InitialBalance, config, newScript())
			logs[i] = setLogs
			if err != nil {
				failed[i] = true
				return
			}
			results[i] = s
		}()
	}
	wg.Wait()

	var survivors []*stats.Statistics
	var allLogs []string
	okCount := 0
	for i := range sets {
		allLogs = append(allLogs, logs[i]...)
		if !failed[i] && results[i] != nil {
			survivors = append(survivors, results[i])
			okCount++
		}
	}

	if len(survivors) == 0 {
		return nil, errs.NewAggregationEmpty("simulator: all sets failed, candidate is infeasible")
	}

	averaged, err := stats.Average(survivors)
	if err != nil {
		return nil, err
	}

	return &Result{
		Config:    config,
		Averaged:  averaged,
		Metric:    averaged.Metric(),
		Logs:      allLogs,
		SetsTotal: n,
		SetsOK:    okCount,
	}, nil
}

// runOneSet drives a single game set through a fresh Engine/Statistics,
// isolating a strategy panic the same way a single bad unit would be
// isolated from the rest of a larger pool: recovered, converted to a
// classified error, and never allowed to propagate to sibling sets.
func runOneSet(set []rng.Round, initialBalance int64, config map[string]any, script strategy.Script) (s *stats.Statistics, logs []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.NewStrategyError(fmt.Sprintf("simulator: strategy panicked: %v", r))
		}
	}()

	user := &engine.UserInfo{Name: "candidate", Balance: initialBalance}
	hist := history.New(history.DefaultCapacity)
	e := engine.New(user, hist)
	s = stats.New(initialBalance)

	b := &strategy.Bindings{
		Engine:   e,
		UserInfo: user,
		Config:   config,
		Stop:     func(reason string) { e.Stop(reason) },
		Log:      func(format string, args ...any) { logs = append(logs, fmt.Sprintf(format, args...)) },
		SHA256:   rng.SHA256Hex,
		GameResultFromHash: func(seed string) rng.Round {
			return rng.FromHash(seed)
		},
	}

	if err := script.Load(b); err != nil {
		return nil, logs, errs.Wrap(err, "simulator: strategy failed to load")
	}

	for _, r := range set {
		if err := e.NextRound(r); err != nil {
			if errs.IsKind(err, errs.KindInsufficientBalance) {
				return nil, logs, err
			}
			return nil, logs, errs.Wrap(err, "simulator: NextRound failed")
		}
		s.Update(e)
		if e.Stopping() {
			break
		}
	}

	return s, logs, nil
}
