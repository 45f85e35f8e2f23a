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

// Package rng is the provably-fair crash-game outcome generator: the only
// source of randomness that determines a round's bust multiplier. It is
// a deterministic HMAC-SHA256 hash chain, not a PRNG — the same seed and
// game count always produce the same sequence, on any platform.
package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"

	"github.com/zintix-labs/crashlab/errs"
)

// Salt is the fixed HMAC key for the crash chain. Normative, per spec.
const Salt = "0000000000000000004d6ec16dafe9d8370958664c1dc422f452892264c59526"

// accuracy is 2^52, the bit width of the integer h extracted from each
// round's digest (the top 13 hex chars, i.e. 52 bits).
const accuracy = float64(uint64(1) << 52)

// Round is one immutable game outcome.
type Round struct {
	ID   uint64
	Hash string  // the seed this round was derived from, hex
	Bust float64 // >= 1.00, two-decimal precision
}

// saltKey is the HMAC key: Salt's literal ASCII bytes, not hex-decoded.
var saltKey = []byte(Salt)

// nextSeed advances the hash chain: seed <- SHA256_hex(seed-as-ASCII).
func nextSeed(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// bustFromHash computes one round's bust multiplier from its seed. The
// seed is hex-decoded before being HMAC'd: it is the message, not the key.
func bustFromHash(seed string) float64 {
	seedBytes, _ := hex.DecodeString(seed)
	mac := hmac.New(sha256.New, saltKey)
	mac.Write(seedBytes)
	digest := hex.EncodeToString(mac.Sum(nil))

	hHex := digest[:13]
	h := new(big.Int)
	h.SetString(hHex, 16)
	hf, _ := new(big.Float).SetInt(h).Float64()

	bust := math.Floor(100.0/(1.0-hf/accuracy)) / 101.0
	if bust < 1.0 {
		bust = 1.0
	}
	return round2(bust)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GenerateGames deterministically derives numGames rounds from seed.
//
// Round i (1-indexed) is derived from the i-th seed in the chain starting
// at seed; the chain then advances via nextSeed. The returned slice is
// reversed before return — newest round first — matching the order the
// simulator consumes a game set in (spec §4.A).
func GenerateGames(seed string, numGames int) ([]Round, error) {
	if numGames <= 0 {
		return nil, errs.Warnf("rng: numGames must be positive, got %d", numGames)
	}
	rounds := make([]Round, numGames)
	cur := seed
	for i := 0; i < numGames; i++ {
		bust := bustFromHash(cur)
		rounds[i] = Round{ID: uint64(i + 1), Hash: cur, Bust: bust}
		cur = nextSeed(cur)
	}
	for i, j := 0, len(rounds)-1; i < j; i, j = i+1, j-1 {
		rounds[i], rounds[j] = rounds[j], rounds[i]
	}
	return rounds, nil
}

// FromHash computes the single round derivable directly from a seed,
// without advancing the chain. Used by the strategy binding surface's
// gameResultFromHash helper (component I).
func FromHash(seed string) Round {
	return Round{ID: 1, Hash: seed, Bust: bustFromHash(seed)}
}

// SHA256Hex is the lowercase hex SHA-256 of text, exposed to strategies
// via the binding surface's SHA256(text) helper.
func SHA256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (r Round) String() string {
	return fmt.Sprintf("Round{id=%d bust=%.2f hash=%s}", r.ID, r.Bust, r.Hash)
}
