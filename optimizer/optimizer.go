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

// Package optimizer is the population-based parameter search: a particle
// swarm engine (primary) and a genetic-algorithm engine (secondary),
// sharing a fitness cache and a top-K tracker over a common Space.
package optimizer

import (
	"github.com/zintix-labs/crashlab/paramspace"
	"github.com/zintix-labs/crashlab/sdk/core"
	"github.com/zintix-labs/crashlab/stats"
)

// Config is the harness's own optimizer knobs, YAML-loadable, distinct
// from the strategy's parameter space.
type Config struct {
	Population int `yaml:"population"`
	Iterations int `yaml:"iterations"`
	TopK       int `yaml:"top_k"`

	PSO PSOConfig `yaml:"pso"`
	GA  GAConfig  `yaml:"ga"`

	// OnIteration, if set, is called once per completed iteration/
	// generation with that iteration's index (0-based) and a snapshot of
	// the current top-K state. Tuner uses this hook to persist per-
	// iteration progress; nil is a safe default (no persistence, no
	// extra allocation beyond the snapshot the caller asked for).
	OnIteration func(iteration int, snapshot *Result) `yaml:"-"`
}

// PSOConfig holds the particle-swarm engine's tunables.
type PSOConfig struct {
	W  float64 `yaml:"w"`
	C1 float64 `yaml:"c1"`
	C2 float64 `yaml:"c2"`
}

// GAConfig holds the genetic-algorithm engine's tunables.
type GAConfig struct {
	TournamentSize int     `yaml:"tournament_size"`
	EliteSize      int     `yaml:"elite_size"`
	CrossoverStart float64 `yaml:"crossover_start"`
	CrossoverEnd   float64 `yaml:"crossover_end"`
	MutationStart  float64 `yaml:"mutation_start"`
	MutationEnd    float64 `yaml:"mutation_end"`
}

// DefaultPSOConfig matches spec.md §4.H's primary-engine defaults.
func DefaultPSOConfig() Config {
	return Config{
		Population: 30,
		Iterations: 100,
		TopK:       5,
		PSO:        PSOConfig{W: 0.9, C1: 1.5, C2: 1.5},
	}
}

// DefaultGAConfig matches spec.md §4.H's secondary-engine defaults.
func DefaultGAConfig() Config {
	return Config{
		Population: 30,
		Iterations: 100,
		TopK:       10,
		GA: GAConfig{
			TournamentSize: 5,
			EliteSize:      5,
			CrossoverStart: 0.1,
			CrossoverEnd:   0.9,
			MutationStart:  0.9,
			MutationEnd:    0.1,
		},
	}
}

// Result is what either engine produces: the best feasible candidate seen
// (possibly empty, with BestMetric == stats.InfeasibleMetric, if none ever
// was feasible),
// plus a deduplicated top-K.
type Result struct {
	BestParams paramspace.Candidate
	BestMetric float64
	TopK       []Entry
}

// isFeasible reports whether a fitness value is usable: not the
// infeasible sentinel spec.md §6 reserves for undefined numerator/
// denominator evaluations.
func isFeasible(fitness float64) bool {
	return fitness < stats.InfeasibleMetric
}

// Engine is the common contract both population-search variants satisfy.
type Engine interface {
	Optimize(sp paramspace.Space, objective Objective, cfg Config, src *core.Core) (*Result, error)
}

func newResult(k *topK) *Result {
	r := &Result{BestMetric: stats.InfeasibleMetric, TopK: k.Sorted()}
	if len(r.TopK) > 0 {
		best := r.TopK[0]
		r.BestParams = best.Candidate
		r.BestMetric = best.Fitness
	}
	return r
}
