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
	"math"
	"sync"

	"github.com/zintix-labs/crashlab/paramspace"
	"github.com/zintix-labs/crashlab/sdk/core"
)

// PSO is the particle-swarm optimizer, spec.md §4.H's primary engine.
type PSO struct{}

type particle struct {
	position paramspace.Candidate
	velocity map[string]float64
	pbest    paramspace.Candidate
	pbestFit float64
}

func newParticle(sp paramspace.Space, src *core.Core) *particle {
	pos := sp.SampleCandidate(src)
	vel := make(map[string]float64, len(sp))
	for _, d := range sp {
		vel[d.Name] = 0
	}
	return &particle{position: pos, velocity: vel, pbest: pos.Clone(), pbestFit: math.MaxFloat64}
}

// Optimize runs PSO for cfg.Iterations rounds over a population of
// cfg.Population particles. Candidate evaluations within one iteration
// may run concurrently (spec §5); the fitness cache serializes duplicate
// work.
func (PSO) Optimize(sp paramspace.Space, objective Objective, cfg Config, src *core.Core) (*Result, error) {
	if cfg.Population < 1 {
		cfg.Population = 30
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = 100
	}
	if cfg.TopK < 1 {
		cfg.TopK = 5
	}
	w, c1, c2 := cfg.PSO.W, cfg.PSO.C1, cfg.PSO.C2
	if w == 0 && c1 == 0 && c2 == 0 {
		w, c1, c2 = 0.9, 1.5, 1.5
	}

	c := newCache()
	top := newTopK(cfg.TopK)

	swarm := make([]*particle, cfg.Population)
	for i := range swarm {
		swarm[i] = newParticle(sp, src)
	}

	var gbest paramspace.Candidate
	gbestFit := math.MaxFloat64

	var evalErr error
	for iter := 0; iter < cfg.Iterations; iter++ {
		var mu sync.Mutex
		var wg sync.WaitGroup
		wg.Add(len(swarm))
		for _, p := range swarm {
			p := p
			go func() {
				defer wg.Done()
				projected, fit, err := c.evaluate(sp, objective, p.position)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if evalErr == nil {
						evalErr = err
					}
					return
				}
				p.position = projected
				top.Offer(Entry{Candidate: projected.Clone(), Fitness: fit})
				if isFeasible(fit) && fit < p.pbestFit {
					p.pbestFit = fit
					p.pbest = projected.Clone()
				}
				if isFeasible(fit) && fit < gbestFit {
					gbestFit = fit
					gbest = projected.Clone()
				}
			}()
		}
		wg.Wait()
		if evalErr != nil {
			return nil, evalErr
		}

		for _, p := range swarm {
			updateVelocityAndPosition(sp, p, gbest, w, c1, c2, src)
		}

		if cfg.OnIteration != nil {
			cfg.OnIteration(iter, newResult(top))
		}
	}

	return newResult(top), nil
}

func updateVelocityAndPosition(sp paramspace.Space, p *particle, gbest paramspace.Candidate, w, c1, c2 float64, src *core.Core) {
	next := make(paramspace.Candidate, len(sp))
	for _, d := range sp {
		x := p.position[d.Name]
		v := p.velocity[d.Name]
		pb := p.pbest[d.Name]
		gb := x
		if gbest != nil {
			gb = gbest[d.Name]
		}
		r1 := src.Float64()
		r2 := src.Float64()
		v = w*v + c1*r1*(pb-x) + c2*r2*(gb-x)
		p.velocity[d.Name] = v
		next[d.Name] = d.Project(x + v)
	}
	p.position = next
}
