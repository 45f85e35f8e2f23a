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

// Package gameset produces independent game sets meeting a target median
// bust, by repeatedly drawing a fresh seed and rejecting sets that miss.
package gameset

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/zintix-labs/crashlab/errs"
	"github.com/zintix-labs/crashlab/rng"
)

// MaxAttempts bounds how many seeds the builder will try before surfacing
// BuilderExhausted. The source this harness reimplements leaves the cap
// unspecified; this is the implementer's documented choice.
const MaxAttempts = 20000

// seedBytes is the width of a game-set seed (32 bytes -> 64 hex chars, per
// the crash RNG's seed format).
const seedBytes = 32

func randomSeed() (string, error) {
	b := make([]byte, seedBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errs.Wrap(err, "gameset: failed to draw a random seed")
	}
	return hex.EncodeToString(b), nil
}

func median(rounds []rng.Round) float64 {
	vals := make([]float64, len(rounds))
	for i, r := range rounds {
		vals[i] = r.Bust
	}
	sort.Float64s(vals)
	return stat.Quantile(0.5, stat.Empirical, vals, nil)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Build draws random seeds and generates a numGames-round set from each
// until one's median bust rounds to requiredMedian, or MaxAttempts is
// exhausted.
func Build(numGames int, requiredMedian float64) ([]rng.Round, error) {
	return BuildWithAttempts(numGames, requiredMedian, MaxAttempts)
}

// BuildWithAttempts is Build with an explicit attempt cap, exposed for
// tests and for callers that want a tighter bound than MaxAttempts.
func BuildWithAttempts(numGames int, requiredMedian float64, maxAttempts int) ([]rng.Round, error) {
	return buildWithSeedFunc(numGames, requiredMedian, maxAttempts, randomSeed)
}

// buildWithSeedFunc is Build's core loop, parameterized over the seed
// source so tests can exercise it with a deterministic sequence instead of
// crypto/rand.
func buildWithSeedFunc(numGames int, requiredMedian float64, maxAttempts int, seedFunc func() (string, error)) ([]rng.Round, error) {
	target := round2(requiredMedian)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		seed, err := seedFunc()
		if err != nil {
			return nil, err
		}
		rounds, err := rng.GenerateGames(seed, numGames)
		if err != nil {
			return nil, errs.Wrap(err, "gameset: GenerateGames failed")
		}
		if round2(median(rounds)) == target {
			return rounds, nil
		}
	}
	return nil, errs.NewBuilderExhausted(
		fmt.Sprintf("gameset: no set of %d games matched required median %.2f within %d attempts", numGames, target, maxAttempts))
}

// BuildN builds numSets independent sets, each meeting requiredMedian.
// Sets are independent across attempts and across each other.
func BuildN(numSets, numGames int, requiredMedian float64) ([][]rng.Round, error) {
	sets := make([][]rng.Round, numSets)
	for i := 0; i < numSets; i++ {
		set, err := Build(numGames, requiredMedian)
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return sets, nil
}
