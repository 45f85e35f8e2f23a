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

package gameset

import (
	"testing"

	"github.com/zintix-labs/crashlab/errs"
)

// Seeds and busts independently verified against the HMAC construction
// (see rng.crash_test.go's fixture): zeroSeed -> bust 1.51,
// secondSeed -> bust 15.32.
const (
	zeroSeed   = "0000000000000000000000000000000000000000000000000000000000000000"
	secondSeed = "60e05bd1b195af2f94112fa7197a5c88289058840ce7c6df9693756bc6250f55"
)

func seedSequence(seeds ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		s := seeds[i%len(seeds)]
		i++
		return s, nil
	}
}

func TestBuildFindsMatchingSeedAfterMisses(t *testing.T) {
	seedFunc := seedSequence(zeroSeed, secondSeed)
	rounds, err := buildWithSeedFunc(1, 15.32, 5, seedFunc)
	if err != nil {
		t.Fatalf("buildWithSeedFunc: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("len(rounds) = %d, want 1", len(rounds))
	}
	if rounds[0].Bust != 15.32 {
		t.Fatalf("rounds[0].Bust = %v, want 15.32", rounds[0].Bust)
	}
}

func TestBuildExhaustsWithoutAMatch(t *testing.T) {
	seedFunc := seedSequence(zeroSeed)
	_, err := buildWithSeedFunc(1, 15.32, 3, seedFunc)
	if err == nil {
		t.Fatalf("expected BuilderExhausted error")
	}
	if !errs.IsKind(err, errs.KindBuilderExhausted) {
		t.Fatalf("err = %v, want KindBuilderExhausted", err)
	}
}

func TestMedianComputation(t *testing.T) {
	// zeroSeed generates a 3-round chain with busts 1.51, 15.32, 6.19
	// (independently verified in rng.crash_test.go); the median of the
	// sorted busts [1.51, 6.19, 15.32] is 6.19.
	seedFunc := seedSequence(zeroSeed)
	rounds, err := buildWithSeedFunc(3, 6.19, 1, seedFunc)
	if err != nil {
		t.Fatalf("buildWithSeedFunc: %v", err)
	}
	if len(rounds) != 3 {
		t.Fatalf("len(rounds) = %d, want 3", len(rounds))
	}
}

func TestBuildRepeatedSetsFromSharedSeedSource(t *testing.T) {
	calls := 0
	seedFunc := func() (string, error) {
		calls++
		if calls%2 == 1 {
			return zeroSeed, nil
		}
		return secondSeed, nil
	}
	sets := make([][]float64, 0, 2)
	for i := 0; i < 2; i++ {
		rounds, err := buildWithSeedFunc(1, 15.32, 5, seedFunc)
		if err != nil {
			t.Fatalf("buildWithSeedFunc set %d: %v", i, err)
		}
		busts := make([]float64, len(rounds))
		for j, r := range rounds {
			busts[j] = r.Bust
		}
		sets = append(sets, busts)
	}
	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(sets))
	}
}

func TestRandomSeedIsHexEncoded(t *testing.T) {
	seed, err := randomSeed()
	if err != nil {
		t.Fatalf("randomSeed: %v", err)
	}
	if len(seed) != 64 {
		t.Fatalf("len(seed) = %d, want 64", len(seed))
	}
}
