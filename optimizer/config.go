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

package optimizer

import (
	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/crashlab/errs"
)

// fileConfig mirrors Config's YAML shape plus the engine selector, which
// Config itself doesn't carry since the in-memory Engine value is chosen
// by the caller, not unmarshaled.
type fileConfig struct {
	Engine     string    `yaml:"engine"`
	Population int       `yaml:"population"`
	Iterations int       `yaml:"iterations"`
	TopK       int       `yaml:"top_k"`
	PSO        PSOConfig `yaml:"pso"`
	GA         GAConfig  `yaml:"ga"`
}

// LoadConfig parses a Config plus its engine selector ("pso" or "ga")
// from YAML.
func LoadConfig(data []byte) (cfg Config, engineKey string, err error) {
	fc := fileConfig{}
	if uerr := yaml.Unmarshal(data, &fc); uerr != nil {
		return Config{}, "", errs.Wrap(uerr, "optimizer: failed to unmarshal config yaml")
	}
	if fc.Engine != "pso" && fc.Engine != "ga" {
		return Config{}, "", errs.Warnf("optimizer: engine must be \"pso\" or \"ga\", got %q", fc.Engine)
	}
	if fc.Population <= 0 {
		return Config{}, "", errs.Warnf("optimizer: population must be positive")
	}
	if fc.Iterations <= 0 {
		return Config{}, "", errs.Warnf("optimizer: iterations must be positive")
	}
	cfg = Config{
		Population: fc.Population,
		Iterations: fc.Iterations,
		TopK:       fc.TopK,
		PSO:        fc.PSO,
		GA:         fc.GA,
	}
	return cfg, fc.Engine, nil
}

// EngineFor resolves an engine key ("pso"/"ga") to its Engine value.
func EngineFor(key string) (Engine, error) {
	switch key {
	case "pso":
		return PSO{}, nil
	case "ga":
		return GA{}, nil
	default:
		return nil, errs.Warnf("optimizer: unknown engine key %q", key)
	}
}
