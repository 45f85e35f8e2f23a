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

// Package logging wraps log/slog with the three modes the harness runs
// under: a human-readable dev mode, a JSON prod mode, and a silence mode
// for test runs that would otherwise drown in per-round noise.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Mode selects the handler buildDefault assembles.
type Mode uint8

const (
	Dev Mode = iota
	Prod
	Silence
)

// NewDefault returns a *slog.Logger built from Mode defaults. Most callers
// want this; NewFromHandler exists for the rare case where an embedder
// wants to supply its own slog.Handler (e.g. to fan logs into a test
// harness's own buffer).
func NewDefault(mode Mode) *slog.Logger {
	return slog.New(buildDefault(mode))
}

// NewFromHandler wraps an externally assembled Handler into a *slog.Logger,
// defaulting to Dev if h is nil.
func NewFromHandler(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildDefault(Dev)
	}
	return slog.New(h)
}

func buildDefault(mode Mode) slog.Handler {
	switch mode {
	case Dev:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	case Prod:
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case Silence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// KeyCandidate and friends give callers a consistent set of attribute keys for
// per-run context (candidate id, iteration, set index) instead of each
// call site inventing its own key names.
const (
	KeyCandidate = "candidate"
	KeyIteration = "iteration"
	KeySet       = "set"
)

// WithRun returns a logger carrying the given run-scoped fields, using
// slog's own With rather than a bespoke context-carrying wrapper.
func WithRun(l *slog.Logger, candidateKey string, iteration, set int) *slog.Logger {
	return l.With(
		slog.String(KeyCandidate, candidateKey),
		slog.Int(KeyIteration, iteration),
		slog.Int(KeySet, set),
	)
}
