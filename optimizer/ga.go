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

// GA is the genetic-algorithm optimizer, spec.md §4.H's secondary engine:
// tournament selection, elite retention, ramped single-point crossover,
// ramped per-gene resample mutation.
type GA struct{}

type member struct {
	genes   paramspace.Candidate
	fitness float64
}

func ramp(start, end float64, gen, totalGens int) float64 {
	if totalGens <= 1 {
		return end
	}
	t := float64(gen) / float64(totalGens-1)
	return start + t*(end-start)
}

func (GA) Optimize(sp paramspace.Space, objective Objective, cfg Config, src *core.Core) (*Result, error) {
	if cfg.Population < 1 {
		cfg.Population = 30
	}
	if cfg.Iterations < 1 {
		cfg.Iterations = 100
	}
	if cfg.TopK < 1 {
		cfg.TopK = 10
	}
	tSize := cfg.GA.TournamentSize
	if tSize < 1 {
		tSize = 5
	}
	elite := cfg.GA.EliteSize
	if elite < 0 {
		elite = 0
	}
	if elite > cfg.Population {
		elite = cfg.Population
	}
	xStart, xEnd := cfg.GA.CrossoverStart, cfg.GA.CrossoverEnd
	if xStart == 0 && xEnd == 0 {
		xStart, xEnd = 0.1, 0.9
	}
	mStart, mEnd := cfg.GA.MutationStart, cfg.GA.MutationEnd
	if mStart == 0 && mEnd == 0 {
		mStart, mEnd = 0.9, 0.1
	}

	c := newCache()
	top := newTopK(cfg.TopK)

	pop := make([]*member, cfg.Population)
	for i := range pop {
		pop[i] = &member{genes: sp.SampleCandidate(src)}
	}

	evalPopulation := func() error {
		var mu sync.Mutex
		var wg sync.WaitGroup
		var firstErr error
		wg.Add(len(pop))
		for _, m := range pop {
			m := m
			go func() {
				defer wg.Done()
				projected, fit, err := c.evaluate(sp, objective, m.genes)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				m.genes = projected
				m.fitness = fit
				top.Offer(Entry{Candidate: projected.Clone(), Fitness: fit})
			}()
		}
		wg.Wait()
		return firstErr
	}

	if err := evalPopulation(); err != nil {
		return nil, err
	}

	for gen := 0; gen < cfg.Iterations; gen++ {
		sortByFitness(pop)

		next := make([]*member, 0, cfg.Population)
		for i := 0; i < elite && i < len(pop); i++ {
			next = append(next, &member{genes: pop[i].genes.Clone(), fitness: pop[i].fitness})
		}

		crossRate := ramp(xStart, xEnd, gen, cfg.Iterations)
		mutRate := ramp(mStart, mEnd, gen, cfg.Iterations)

		for len(next) < cfg.Population {
			p1 := tournamentSelect(pop, tSize, src)
			p2 := tournamentSelect(pop, tSize, src)
			child := crossover(sp, p1.genes, p2.genes, crossRate, src)
			child = mutate(sp, child, mutRate, src)
			next = append(next, &member{genes: child})
		}

		pop = next
		if err := evalPopulation(); err != nil {
			return nil, err
		}

		if cfg.OnIteration != nil {
			cfg.OnIteration(gen, newResult(top))
		}
	}

	return newResult(top), nil
}

func sortByFitness(pop []*member) {
	// simple insertion sort: population sizes are small (tens), and this
	// keeps the dependency surface to what the rest of the package uses.
	for i := 1; i < len(pop); i++ {
		for j := i; j > 0 && better(pop[j], pop[j-1]); j-- {
			pop[j], pop[j-1] = pop[j-1], pop[j]
		}
	}
}

func better(a, b *member) bool {
	af, bf := effectiveFitness(a.fitness), effectiveFitness(b.fitness)
	return af < bf
}

func effectiveFitness(f float64) float64 {
	if !isFeasible(f) {
		return math.MaxFloat64
	}
	return f
}

func tournamentSelect(pop []*member, size int, src *core.Core) *member {
	best := pop[src.IntN(len(pop))]
	for i := 1; i < size; i++ {
		cand := pop[src.IntN(len(pop))]
		if better(cand, best) {
			best = cand
		}
	}
	return best
}

// crossover performs single-point crossover over the space's parameter
// names (a stable order), taking the prefix from p1 and the suffix from
// p2 with probability rate; otherwise the child is a clone of p1.
func crossover(sp paramspace.Space, p1, p2 paramspace.Candidate, rate float64, src *core.Core) paramspace.Candidate {
	child := p1.Clone()
	if src.Float64() >= rate || len(sp) < 2 {
		return child
	}
	point := 1 + src.IntN(len(sp)-1)
	for i, d := range sp {
		if i >= point {
			child[d.Name] = p2[d.Name]
		}
	}
	return child
}

// mutate resamples each gene independently with probability rate,
// rounding continuous and payout genes to 2 decimals before the result
// is handed back to the cache (the cache itself re-projects, but the
// resample should already respect the gene's own precision).
func mutate(sp paramspace.Space, c paramspace.Candidate, rate float64, src *core.Core) paramspace.Candidate {
	out := c.Clone()
	for _, d := range sp {
		if src.Float64() < rate {
			v := d.Project(d.Sample(src))
			if d.Kind == paramspace.Number && !d.IsInteger {
				v = math.Round(v*100) / 100
			}
			out[d.Name] = v
		}
	}
	return out
}
