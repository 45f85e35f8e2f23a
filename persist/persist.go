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

// Package persist is the opaque storage collaborator an optimization run
// reports its progress to: a running optimization's status and gbest, and
// each iteration's full state, as key-value records. The harness never
// assumes a particular backend; Store is implemented here in-memory (for
// tests and short-lived runs) and atop go.etcd.io/bbolt (for anything that
// should survive a process restart).
package persist

import "time"

// Status mirrors the original implementation's run-status field.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// OptimizationRecord is the top-level row for one optimization run: the
// engine that ran it, its best-known result so far, and its lifecycle
// status.
type OptimizationRecord struct {
	ID              string
	Engine          string // "pso" or "ga"
	Status          Status
	CurrentIteration int
	GbestValue      float64
	GbestPosition   map[string]float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IterationRecord is one iteration's checkpoint: a list of candidates plus
// a best value and position. optimizer.Tuner fills Population with the
// run's top-K candidates at that iteration (not the full set of particle
// positions or genomes, and no velocities) and BestValue/BestPosition with
// the best seen so far in the run. Kept separately from OptimizationRecord
// so one iteration can be loaded without reloading every iteration ever
// recorded.
type IterationRecord struct {
	OptimizationID string
	Iteration      int
	Population     []map[string]float64
	BestValue      float64
	BestPosition   map[string]float64
	RecordedAt     time.Time
}

// Store is the persistence contract an optimization run is handed.
// Optimization records are keyed by id and support save, load, exists,
// list and delete; iteration records are keyed by (optimization id,
// iteration) and support save, load and list, and are removed together
// with their optimization by DeleteOptimization.
type Store interface {
	SaveOptimization(rec OptimizationRecord) error
	LoadOptimization(id string) (OptimizationRecord, error)
	ExistsOptimization(id string) (bool, error)
	ListOptimizations() ([]string, error)
	DeleteOptimization(id string) error

	SaveIteration(rec IterationRecord) error
	LoadIteration(optimizationID string, iteration int) (IterationRecord, error)
	ListIterations(optimizationID string) ([]int, error)
}
