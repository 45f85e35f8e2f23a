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

// Package core supplies the non-game-outcome randomness used elsewhere in
// the module: the optimizer's velocity, sampling, and mutation draws. It
// is deliberately independent of the crash RNG in package rng, which is
// the only randomness that determines a round's bust, and of the
// game-set builder's seed proposals, which come straight from
// crypto/rand since they must be unpredictable, not reproducible.
package core

// PRNG is the randomness source a Core needs: sampling plus snapshot/restore.
type PRNG interface {
	RAND
	Restorable
}

// Restorable lets a PRNG's internal state be captured and replayed.
type Restorable interface {
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// RAND is the sampling surface a PRNG implementation provides directly,
// rather than being built on top of a single Uint64: different generators
// have different native output widths and float precisions, and forcing
// everything through one primitive would degrade some of them.
type RAND interface {
	// Uint64 returns a non-negative uint64.
	Uint64() uint64
	// Float64 returns a float in [0,1).
	Float64() float64
	// UintN returns a uint in [0,max); 0 if max == 0.
	UintN(uint) uint
	// IntN returns an int in [0,max); -1 if max <= 0.
	IntN(int) int
}

// PRNGFactory builds a PRNG from a seed. New(seed) must be deterministic:
// the same seed always yields the same initial state and output sequence,
// so that the optimizer's sampling and search draws can be reproduced
// from one base seed.
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG is the PCG64-backed PRNGFactory used unless the caller
// supplies its own.
type DefaultPRNG struct{}

// New satisfies PRNGFactory.
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core wraps a PRNG and adds a few convenience sampling helpers used by the
// parameter space and optimizer packages.
type Core struct {
	PRNG
}

// New wraps an externally built PRNG.
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick returns a random element of src, or -1 if src is empty.
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// ShuffleInts performs an in-place Fisher-Yates shuffle.
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}
