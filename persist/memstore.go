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

package persist

import (
	"sort"
	"sync"

	"github.com/zintix-labs/crashlab/errs"
)

// MemStore is an in-memory Store, safe for concurrent use. It never
// touches disk; use it for tests and for runs that don't need to survive
// a restart.
type MemStore struct {
	mu         sync.RWMutex
	opts       map[string]OptimizationRecord
	iterations map[string]map[int]IterationRecord
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		opts:       make(map[string]OptimizationRecord),
		iterations: make(map[string]map[int]IterationRecord),
	}
}

func (m *MemStore) SaveOptimization(rec OptimizationRecord) error {
	if rec.ID == "" {
		return errs.Warnf("persist: optimization record has empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts[rec.ID] = rec
	return nil
}

func (m *MemStore) LoadOptimization(id string) (OptimizationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.opts[id]
	if !ok {
		return OptimizationRecord{}, errs.Warnf("persist: no optimization record for id %q", id)
	}
	return rec, nil
}

func (m *MemStore) ExistsOptimization(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.opts[id]
	return ok, nil
}

func (m *MemStore) ListOptimizations() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.opts))
	for id := range m.opts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemStore) DeleteOptimization(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.opts, id)
	delete(m.iterations, id)
	return nil
}

func (m *MemStore) SaveIteration(rec IterationRecord) error {
	if rec.OptimizationID == "" {
		return errs.Warnf("persist: iteration record has empty optimization id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.iterations[rec.OptimizationID]
	if !ok {
		bucket = make(map[int]IterationRecord)
		m.iterations[rec.OptimizationID] = bucket
	}
	bucket[rec.Iteration] = rec
	return nil
}

func (m *MemStore) LoadIteration(optimizationID string, iteration int) (IterationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.iterations[optimizationID]
	if !ok {
		return IterationRecord{}, errs.Warnf("persist: no iterations recorded for optimization %q", optimizationID)
	}
	rec, ok := bucket[iteration]
	if !ok {
		return IterationRecord{}, errs.Warnf("persist: no iteration %d recorded for optimization %q", iteration, optimizationID)
	}
	return rec, nil
}

func (m *MemStore) ListIterations(optimizationID string) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket := m.iterations[optimizationID]
	out := make([]int, 0, len(bucket))
	for i := range bucket {
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}
