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
	"sync"

	"github.com/zintix-labs/crashlab/paramspace"
)

// Objective maps a projected candidate to its scalar fitness, backed by
// the simulator. Lower is better; a candidate the simulator judges
// infeasible should return stats.InfeasibleMetric, never an error for
// that reason alone (an error here means evaluation itself failed, which
// aborts the run rather than scoring the candidate).
type Objective func(paramspace.Candidate) (float64, error)

// cache is the fitness cache shared across an optimization run. A
// candidate's key (its structurally-projected identity) is computed once
// and never re-evaluated; this is invariant 7, cache coherence. inflight
// serializes concurrent evaluate calls for the same key so a burst of
// duplicate candidates within one iteration still invokes the objective
// exactly once.
type cache struct {
	mu       sync.Mutex
	vals     map[string]float64
	inflight map[string]*sync.WaitGroup
}

func newCache() *cache {
	return &cache{
		vals:     make(map[string]float64),
		inflight: make(map[string]*sync.WaitGroup),
	}
}

// evaluate projects raw against sp, then returns the cached fitness for
// the projected candidate if present, otherwise calls objective exactly
// once and stores the result before returning.
func (c *cache) evaluate(sp paramspace.Space, objective Objective, raw paramspace.Candidate) (paramspace.Candidate, float64, error) {
	projected := sp.Project(raw)
	key := projected.Key()

	for {
		c.mu.Lock()
		if v, ok := c.vals[key]; ok {
			c.mu.Unlock()
			return projected, v, nil
		}
		if wg, busy := c.inflight[key]; busy {
			c.mu.Unlock()
			wg.Wait()
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inflight[key] = wg
		c.mu.Unlock()

		v, err := objective(projected)

		c.mu.Lock()
		if err == nil {
			c.vals[key] = v
		}
		delete(c.inflight, key)
		c.mu.Unlock()
		wg.Done()

		return projected, v, err
	}
}

func (c *cache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vals)
}
