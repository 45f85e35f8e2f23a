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

// Package stats accumulates per-run metrics over a simulated game set and
// exposes the scalar fitness the optimizer minimizes. It keeps only
// numeric accumulators; no rendering or printing lives here, that belongs
// to the excluded CLI surface.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/zintix-labs/crashlab/engine"
	"github.com/zintix-labs/crashlab/errs"
)

// durationConstant is unexplained in the source this harness reimplements
// but is kept verbatim for metric compatibility: each round contributes
// log(bust)/durationConstant synthetic seconds toward Duration.
const durationConstant = 0.00006

// InfeasibleMetric is the sentinel the optimizer treats as "never pick
// this candidate." Chosen >= 1e12 per the external interface contract and
// never mixed into an aggregate.
const InfeasibleMetric = math.MaxFloat64

// Statistics accumulates monotonic scalars across the rounds of a single
// simulated game set. A fresh Statistics belongs to exactly one Engine for
// the lifetime of one simulation.
type Statistics struct {
	InitialBalance int64

	Balance    int64
	BalanceATH int64
	BalanceATL int64
	Profit     int64
	ProfitATH  int64
	ProfitATL  int64

	TotalWagered int64
	TotalWon     int64
	TotalLost    int64

	GamesTotal   int64
	GamesPlayed  int64
	GamesSkipped int64
	GamesWon     int64
	GamesLost    int64

	MinBet int64
	MaxBet int64

	SinceLastWin      int64
	SinceLastLose     int64
	StreakGain        int64
	StreakCost        int64
	LongestWinStreak  int64
	LongestLoseStreak int64
	LongestStreakGain int64
	LongestStreakCost int64

	Duration float64
}

// New creates a Statistics accumulator seeded with an account's starting
// balance.
func New(initialBalance int64) *Statistics {
	return &Statistics{
		InitialBalance: initialBalance,
		Balance:        initialBalance,
		BalanceATH:     initialBalance,
		BalanceATL:     initialBalance,
	}
}

// Update consumes the round just completed (engine.History().First()) and
// the engine's current UserInfo. Call it once, after every NextRound.
func (s *Statistics) Update(e *engine.Engine) {
	entry, ok := e.History().First()
	if !ok {
		return
	}
	user := e.UserInfo()

	s.GamesTotal++
	s.Balance = user.Balance
	s.Profit = user.Profit
	s.Duration += math.Log(entry.Bust) / durationConstant
	s.updateExtrema()

	if entry.Wager == 0 {
		s.GamesSkipped++
		return
	}

	s.GamesPlayed++
	wager := int64(entry.Wager)
	s.TotalWagered += wager
	if s.MinBet == 0 || wager < s.MinBet {
		s.MinBet = wager
	}
	if wager > s.MaxBet {
		s.MaxBet = wager
	}

	if entry.CashedAt > 0 {
		s.GamesWon++
		won := int64(math.Round(float64(wager) * entry.CashedAt))
		s.TotalWon += won

		s.SinceLastWin = 0
		s.SinceLastLose++
		s.StreakGain += won
		if s.SinceLastLose > s.LongestWinStreak {
			s.LongestWinStreak = s.SinceLastLose
			s.LongestStreakGain = s.StreakGain
		}
		s.StreakCost = 0
	} else {
		s.GamesLost++
		s.TotalLost += wager

		s.SinceLastLose = 0
		s.SinceLastWin++
		s.StreakCost += wager
		if s.SinceLastWin > s.LongestLoseStreak {
			s.LongestLoseStreak = s.SinceLastWin
			s.LongestStreakCost = s.StreakCost
		}
		s.StreakGain = 0
	}
}

func (s *Statistics) updateExtrema() {
	if s.Balance > s.BalanceATH {
		s.BalanceATH = s.Balance
	}
	if s.Balance < s.BalanceATL {
		s.BalanceATL = s.Balance
	}
	if s.Profit > s.ProfitATH {
		s.ProfitATH = s.Profit
	}
	if s.Profit < s.ProfitATL {
		s.ProfitATL = s.Profit
	}
}

// ProfitPerHour is profit normalized by the synthetic duration clock.
func (s *Statistics) ProfitPerHour() float64 {
	hours := s.Duration / 3600.0
	if hours == 0 {
		return 0
	}
	return float64(s.Profit) / hours
}

// Metric is the scalar fitness the optimizer minimizes: lower is better,
// a more profitable strategy yields a more negative value. Degenerate
// denominators yield the infeasible sentinel.
func (s *Statistics) Metric() float64 {
	if s.GamesPlayed == 0 || s.TotalWagered == 0 {
		return InfeasibleMetric
	}
	denom := math.Sqrt(float64(s.TotalWagered) * float64(s.GamesPlayed))
	return -float64(s.Profit) / denom
}

// IsFeasible reports whether this run produced a finite, usable metric.
func (s *Statistics) IsFeasible() bool {
	return s.GamesPlayed > 0 && s.TotalWagered > 0
}

// fields lists every averageable scalar, paired getter/setter, so Average
// can operate generically instead of hand-rolling one sum per field.
var fields = []struct {
	get func(*Statistics) float64
	set func(*Statistics, float64)
}{
	{func(s *Statistics) float64 { return float64(s.InitialBalance) }, func(s *Statistics, v float64) { s.InitialBalance = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.Balance) }, func(s *Statistics, v float64) { s.Balance = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.BalanceATH) }, func(s *Statistics, v float64) { s.BalanceATH = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.BalanceATL) }, func(s *Statistics, v float64) { s.BalanceATL = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.Profit) }, func(s *Statistics, v float64) { s.Profit = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.ProfitATH) }, func(s *Statistics, v float64) { s.ProfitATH = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.ProfitATL) }, func(s *Statistics, v float64) { s.ProfitATL = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.TotalWagered) }, func(s *Statistics, v float64) { s.TotalWagered = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.TotalWon) }, func(s *Statistics, v float64) { s.TotalWon = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.TotalLost) }, func(s *Statistics, v float64) { s.TotalLost = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.GamesTotal) }, func(s *Statistics, v float64) { s.GamesTotal = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.GamesPlayed) }, func(s *Statistics, v float64) { s.GamesPlayed = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.GamesSkipped) }, func(s *Statistics, v float64) { s.GamesSkipped = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.GamesWon) }, func(s *Statistics, v float64) { s.GamesWon = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.GamesLost) }, func(s *Statistics, v float64) { s.GamesLost = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.MinBet) }, func(s *Statistics, v float64) { s.MinBet = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.MaxBet) }, func(s *Statistics, v float64) { s.MaxBet = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.LongestWinStreak) }, func(s *Statistics, v float64) { s.LongestWinStreak = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.LongestLoseStreak) }, func(s *Statistics, v float64) { s.LongestLoseStreak = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.LongestStreakGain) }, func(s *Statistics, v float64) { s.LongestStreakGain = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return float64(s.LongestStreakCost) }, func(s *Statistics, v float64) { s.LongestStreakCost = int64(math.Round(v)) }},
	{func(s *Statistics) float64 { return s.Duration }, func(s *Statistics, v float64) { s.Duration = v }},
}

// Average computes the elementwise arithmetic mean of every scalar field
// across list, then recomputes Metric from the averaged fields rather
// than averaging per-set metrics, avoiding bias when per-set denominators
// differ. Empty input is an AggregationEmpty error.
func Average(list []*Statistics) (*Statistics, error) {
	if len(list) == 0 {
		return nil, errs.NewAggregationEmpty("stats: cannot average zero runs")
	}
	out := &Statistics{}
	values := make([]float64, len(list))
	for _, f := range fields {
		for i, s := range list {
			values[i] = f.get(s)
		}
		f.set(out, stat.Mean(values, nil))
	}
	return out, nil
}
