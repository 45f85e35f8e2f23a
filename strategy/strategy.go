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

// Package strategy names the binding surface the core hands to a
// strategy script. The script sandbox itself (parsing and executing user
// code) is an external collaborator; this package only fixes the names,
// signatures, and ordering guarantees the core promises it.
package strategy

import (
	"github.com/zintix-labs/crashlab/engine"
	"github.com/zintix-labs/crashlab/rng"
)

// Bindings is everything a strategy script receives at load time. The
// script registers its round handlers on Engine synchronously, during
// Script.Load, and must not assume any engine scratch field survives
// across rounds unless it copied it out itself.
type Bindings struct {
	Engine   *engine.Engine
	UserInfo *engine.UserInfo
	Config   map[string]any

	// Stop sets the engine's stopping flag with reason. The current
	// round still completes; the set then terminates.
	Stop func(reason string)

	// Log records a script-emitted message. The simulator collects these
	// into the per-candidate result's logs.
	Log func(format string, args ...any)

	// SHA256 is the lowercase hex SHA-256 of text.
	SHA256 func(text string) string

	// GameResultFromHash returns the single round derivable from seed,
	// without consuming the game set or advancing any chain.
	GameResultFromHash func(seed string) rng.Round
}

// Script is the sandbox's load-time contract: given bindings, register
// handlers on the engine. Load is called exactly once per simulated set,
// before any round is fed to the engine.
type Script interface {
	Load(b *Bindings) error
}

// ScriptFunc adapts a plain function to Script, for scripts with no
// internal state worth naming a type for.
type ScriptFunc func(b *Bindings) error

func (f ScriptFunc) Load(b *Bindings) error { return f(b) }
