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

package simulator

import (
	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/crashlab/errs"
)

// LoadConfig parses a simulator.Config from YAML, the same format the
// harness's own operating parameters are always loaded from.
func LoadConfig(data []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errs.Wrap(err, "simulator: failed to unmarshal config yaml")
	}
	if cfg.NumSets <= 0 {
		return Config{}, errs.Warnf("simulator: num_sets must be positive")
	}
	if cfg.NumGames <= 0 {
		return Config{}, errs.Warnf("simulator: num_games must be positive")
	}
	if cfg.InitialBalance <= 0 {
		return Config{}, errs.Warnf("simulator: initial_balance must be positive")
	}
	if cfg.BuilderAttemptCap < 0 {
		return Config{}, errs.Warnf("simulator: builder_attempt_cap must not be negative")
	}
	return cfg, nil
}
