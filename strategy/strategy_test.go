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

package strategy

import (
	"testing"

	"github.com/zintix-labs/crashlab/engine"
	"github.com/zintix-labs/crashlab/history"
)

func TestScriptFuncLoadRegistersHandlers(t *testing.T) {
	u := &engine.UserInfo{Name: "t", Balance: 1000}
	e := engine.New(u, history.New(history.DefaultCapacity))

	var loaded bool
	script := ScriptFunc(func(b *Bindings) error {
		loaded = true
		b.Engine.On(engine.EventGameStarting, func(any) { _ = b.Engine.Bet(100, 1.5) })
		return nil
	})

	b := &Bindings{Engine: e, UserInfo: u, Config: map[string]any{}}
	if err := script.Load(b); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded {
		t.Fatalf("ScriptFunc did not run")
	}
}
