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

// Package paramspace is the typed parameter-space encoding the optimizer
// searches: descriptors, sampling, and constraint projection.
package paramspace

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zintix-labs/crashlab/sdk/core"
)

// Kind is one of the five parameter encodings spec.md §4.G names.
type Kind uint8

const (
	Payout Kind = iota
	Balance
	Number
	Checkbox
	Radio
)

// Descriptor is one parameter's full encoding: its kind, legal range, and
// default value. Min/Max and RadioValues are interpreted per Kind; see
// Sample/Project.
type Descriptor struct {
	Name        string
	Kind        Kind
	Min         float64 // payout/balance/number lower bound
	Max         float64 // payout/balance/number upper bound
	IsInteger   bool    // number only: round sampled/projected values
	RadioValues []float64
	Default     float64
}

// Space is an ordered collection of descriptors. Order is preserved so
// positions/velocities can be represented as parallel slices.
type Space []Descriptor

// snapToNearest rounds v to the nearest multiple of step.
func snapToNearest(v, step float64) float64 {
	return math.Round(v/step) * step
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// nearestIndex returns the index of the value in values closest to v.
func nearestIndex(v float64, values []float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range values {
		d := math.Abs(v - c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Sample draws one independent raw value for d, using src for randomness.
// The result is not guaranteed projected; callers that need a legal value
// should call Project on the result (Sample already projects in practice,
// but the two are kept distinct per the invariant that Project is
// idempotent and safe to call again).
func (d Descriptor) Sample(src *core.Core) float64 {
	switch d.Kind {
	case Payout:
		a, b := math.Max(d.Min, 1.01), d.Max
		lnA, lnB := math.Log(a), math.Log(b)
		u := src.Float64()
		v := math.Exp(u*(0.99*lnB-0.99*lnA) + 0.99*lnA)
		return round2(v)
	case Balance:
		u := distuv.Uniform{Min: d.Min, Max: d.Max, Src: coreSource{src}}
		return snapToNearest(u.Rand(), 100)
	case Number:
		u := distuv.Uniform{Min: d.Min, Max: d.Max, Src: coreSource{src}}
		v := u.Rand()
		if d.IsInteger {
			v = math.Round(v)
		}
		return v
	case Checkbox:
		b := distuv.Bernoulli{P: 0.5, Src: coreSource{src}}
		if b.Rand() != 0 {
			return 1
		}
		return 0
	case Radio:
		idx := src.IntN(len(d.RadioValues))
		return d.RadioValues[idx]
	default:
		return d.Default
	}
}

// Project clamps/rounds/snaps a raw value onto d's legal lattice.
// Idempotent: Project(Project(x)) == Project(x).
func (d Descriptor) Project(v float64) float64 {
	switch d.Kind {
	case Payout:
		a, b := math.Max(d.Min, 1.01), d.Max
		if v < a {
			v = a
		}
		if v > b {
			v = b
		}
		return round2(v)
	case Balance:
		if v < d.Min {
			v = d.Min
		}
		if v > d.Max {
			v = d.Max
		}
		v = snapToNearest(v, 100)
		if v < 0 {
			v = 0
		}
		return v
	case Number:
		if v < d.Min {
			v = d.Min
		}
		if v > d.Max {
			v = d.Max
		}
		if d.IsInteger {
			v = math.Round(v)
		}
		return v
	case Checkbox:
		if v != 0 {
			return 1
		}
		return 0
	case Radio:
		idx := nearestIndex(v, d.RadioValues)
		return d.RadioValues[idx]
	default:
		return v
	}
}

// coreSource adapts sdk/core.Core to distuv's rand.Source interface, so
// the parameter space's sampling can be driven by the module's own
// deterministic PRNG rather than a second independent source.
type coreSource struct {
	c *core.Core
}

func (s coreSource) Uint64() uint64 { return s.c.Uint64() }

// Candidate is a concrete assignment of a projected value to every
// parameter in a Space.
type Candidate map[string]float64

// SampleCandidate draws one independent raw value per descriptor in sp,
// then projects every value, yielding a structurally legal Candidate.
func (sp Space) SampleCandidate(src *core.Core) Candidate {
	c := make(Candidate, len(sp))
	for _, d := range sp {
		c[d.Name] = d.Project(d.Sample(src))
	}
	return c
}

// Project re-projects every value of c against sp's descriptors,
// restoring legality after an optimizer step (e.g. PSO's position
// update) may have pushed values outside their lattice.
func (sp Space) Project(c Candidate) Candidate {
	out := make(Candidate, len(c))
	for _, d := range sp {
		v, ok := c[d.Name]
		if !ok {
			v = d.Default
		}
		out[d.Name] = d.Project(v)
	}
	return out
}

// Default returns the candidate made of every descriptor's default value,
// projected.
func (sp Space) Default() Candidate {
	c := make(Candidate, len(sp))
	for _, d := range sp {
		c[d.Name] = d.Project(d.Default)
	}
	return c
}

// Key returns a string uniquely identifying c's structural content: two
// candidates equal under projection produce the same Key. Used by the
// optimizer's fitness cache and top-K dedup.
func (c Candidate) Key() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	key := ""
	for _, name := range names {
		key += fmt.Sprintf("%s=%.6g;", name, c[name])
	}
	return key
}

// Clone returns an independent copy of c.
func (c Candidate) Clone() Candidate {
	out := make(Candidate, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
