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

// Package engine is the per-round state machine that drives a strategy
// through a game set: it emits events in a fixed order, queues and settles
// bets, and keeps a UserInfo balance consistent with every debit and
// credit. It has no concurrency of its own; a single Engine belongs to one
// simulation of one game set.
package engine

import (
	"math"

	"github.com/zintix-labs/crashlab/errs"
	"github.com/zintix-labs/crashlab/history"
	"github.com/zintix-labs/crashlab/rng"
)

// State is one of the three phases a round passes through.
type State uint8

const (
	Starting State = iota
	InProgress
	Ended
)

// Event names, wire-level strings a strategy's handlers are registered
// against. Exposed verbatim (spec.md §6).
const (
	EventGameStarting = "GAME_STARTING"
	EventGameStarted  = "GAME_STARTED"
	EventGameEnded    = "GAME_ENDED"
	EventBetPlaced    = "BET_PLACED"
	EventCashedOut    = "CASHED_OUT"
)

// UserInfo is the strategy-visible account state. Mutated only by Engine
// during settlement; strategies read it, never write it directly.
type UserInfo struct {
	Name    string
	Balance int64
	Wagered int64
	Profit  int64
	Wagers  int64
}

// Bet is a wager/target-multiplier pair. At most one is ever pending or
// active at a time.
type Bet struct {
	Wager  int64
	Payout float64
}

// BetPlacedPayload is the BET_PLACED event payload.
type BetPlacedPayload struct {
	Name   string
	Wager  int64
	Payout float64
}

// CashedOutPayload is the CASHED_OUT event payload.
type CashedOutPayload struct {
	Name     string
	Wager    int64
	CashedAt float64
}

// Handler is a round-event callback. payload is nil for GAME_STARTING,
// GAME_STARTED and GAME_ENDED; *BetPlacedPayload for BET_PLACED;
// *CashedOutPayload for CASHED_OUT.
type Handler func(payload any)

// scratch holds one round's transient working state, reset at STARTING.
type scratch struct {
	gameID   uint64
	hash     string
	bust     float64
	wager    int64
	payout   float64
	cashedAt float64
	active   bool // an active (debited) wager exists this round
}

// Engine is the per-round state machine bound to one UserInfo and one
// History ring for the lifetime of a single simulation.
type Engine struct {
	user    *UserInfo
	history *history.Ring

	state   State
	scratch scratch

	pending    *Bet
	stopping   bool
	stopReason string

	handlers map[string][]Handler
	order    []string // registration order, for deterministic replay if ever needed
}

// New builds an Engine bound to user and hist. Neither may be nil.
func New(user *UserInfo, hist *history.Ring) *Engine {
	return &Engine{
		user:     user,
		history:  hist,
		handlers: make(map[string][]Handler),
	}
}

// On registers handler for event, appended after any prior handlers for
// the same event. Handlers fire synchronously, in registration order,
// before NextRound returns.
func (e *Engine) On(event string, handler Handler) {
	if _, seen := e.handlers[event]; !seen {
		e.order = append(e.order, event)
	}
	e.handlers[event] = append(e.handlers[event], handler)
}

// Off removes all handlers registered for event.
func (e *Engine) Off(event string) {
	delete(e.handlers, event)
}

func (e *Engine) emit(event string, payload any) {
	for _, h := range e.handlers[event] {
		h(payload)
	}
}

// GetState returns the engine's current round phase.
func (e *Engine) GetState() State { return e.state }

// History returns the ring this engine appends completed rounds to.
// Statistics.Update consumes History().First() after each NextRound call.
func (e *Engine) History() *history.Ring { return e.history }

// UserInfo returns the account this engine settles bets against.
func (e *Engine) UserInfo() *UserInfo { return e.user }

// IsBetQueued reports whether a bet is queued for the next round's STARTING.
func (e *Engine) IsBetQueued() bool { return e.pending != nil }

// GetCurrentBet returns the active wager for the round in progress, if any.
func (e *Engine) GetCurrentBet() (Bet, bool) {
	if !e.scratch.active {
		return Bet{}, false
	}
	return Bet{Wager: e.scratch.wager, Payout: e.scratch.payout}, true
}

// CancelQueuedBet clears any pending (not yet placed) bet.
func (e *Engine) CancelQueuedBet() {
	e.pending = nil
}

// Stop sets the stopping flag: no new pending bets are accepted from this
// point, and the current pending bet, if any, is dropped.
func (e *Engine) Stop(reason string) {
	e.stopping = true
	e.stopReason = reason
	e.pending = nil
}

// Stopping reports whether Stop has been called.
func (e *Engine) Stopping() bool { return e.stopping }

// StopReason returns the reason passed to Stop, if any.
func (e *Engine) StopReason() string { return e.stopReason }

const centsMultiple = 100

// Bet places a wager immediately if the engine is at STARTING with no
// wager yet placed this round; otherwise it queues the bet for the next
// round's STARTING. Rejected while stopping.
func (e *Engine) Bet(wager int64, payout float64) error {
	if e.stopping {
		return errs.NewInvalidBet("engine: cannot place a bet after stop() was called")
	}
	if wager <= 0 {
		return errs.NewInvalidBet("engine: wager must be positive")
	}
	if wager%centsMultiple != 0 {
		return errs.NewInvalidBet("engine: wager must be a multiple of 100")
	}
	payout = round2(payout)
	if payout <= 1.00 {
		return errs.NewInvalidBet("engine: payout must be greater than 1.00")
	}

	if e.state == Starting && !e.scratch.active {
		if e.user.Balance < wager {
			return errs.NewInsufficientBalance("engine: balance insufficient to place bet immediately")
		}
		e.debitAndActivate(wager, payout)
		e.emit(EventBetPlaced, &BetPlacedPayload{Name: e.user.Name, Wager: wager, Payout: payout})
		return nil
	}

	e.pending = &Bet{Wager: wager, Payout: payout}
	return nil
}

// CashOut is a no-op: this simulator's cash-outs are purely
// threshold-driven. Kept for API parity with the live strategy surface.
func (e *Engine) CashOut() {}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (e *Engine) debitAndActivate(wager int64, payout float64) {
	e.scratch.wager = wager
	e.scratch.payout = payout
	e.scratch.active = true
	e.user.Balance -= wager
	e.user.Wagers++
	e.user.Wagered += wager
}

// NextRound performs one atomic round transition for external round r:
// STARTING -> [BET_PLACED] -> STARTED -> [CASHED_OUT] -> ENDED.
func (e *Engine) NextRound(r rng.Round) error {
	e.scratch = scratch{gameID: r.ID}
	e.state = Starting
	e.emit(EventGameStarting, nil)

	if e.pending != nil {
		p := *e.pending
		e.pending = nil
		if e.user.Balance < p.Wager {
			return errs.NewInsufficientBalance("engine: balance insufficient to place queued bet")
		}
		e.debitAndActivate(p.Wager, p.Payout)
		e.emit(EventBetPlaced, &BetPlacedPayload{Name: e.user.Name, Wager: p.Wager, Payout: p.Payout})
	}

	e.state = InProgress
	e.emit(EventGameStarted, nil)

	e.scratch.bust = r.Bust
	e.scratch.hash = r.Hash

	if e.scratch.active && e.scratch.payout <= e.scratch.bust {
		e.scratch.cashedAt = e.scratch.payout
		credit := int64(math.Round(float64(e.scratch.wager) * e.scratch.payout))
		e.user.Balance += credit
		e.user.Profit += credit - e.scratch.wager
		e.emit(EventCashedOut, &CashedOutPayload{Name: e.user.Name, Wager: e.scratch.wager, CashedAt: e.scratch.cashedAt})
	} else if e.scratch.active {
		e.user.Profit -= e.scratch.wager
	}

	e.history.Append(history.Entry{
		GameID:   e.scratch.gameID,
		Hash:     e.scratch.hash,
		Bust:     e.scratch.bust,
		Wager:    int(e.scratch.wager),
		Payout:   e.scratch.payout,
		CashedAt: e.scratch.cashedAt,
	})

	e.state = Ended
	e.emit(EventGameEnded, nil)
	return nil
}
