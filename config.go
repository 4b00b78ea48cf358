// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package doc2md

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds conversion options. The orchestrator interprets only the
// strategy, cache and validation fields; everything else is consumed by
// converters. The whole struct participates in cache-key hashing, so two
// configurations that differ in any field never share a cache entry.
type Config struct {
	Strategy Strategy `yaml:"strategy" json:"strategy"`

	ExtractImages     bool   `yaml:"extract_images" json:"extract_images"`
	ExtractTables     bool   `yaml:"extract_tables" json:"extract_tables"`
	IncludePageBreaks bool   `yaml:"include_page_breaks" json:"include_page_breaks"`
	KeepDataURIs      bool   `yaml:"keep_data_uris" json:"keep_data_uris"`
	OCRLanguage       string `yaml:"ocr_language" json:"ocr_language"`
	OCRDPI            int    `yaml:"ocr_dpi" json:"ocr_dpi"`

	ValidateOutput bool `yaml:"validate_output" json:"validate_output"`

	CacheEnabled     bool   `yaml:"cache_enabled" json:"cache_enabled"`
	CacheDir         string `yaml:"cache_dir" json:"cache_dir"`
	CacheMaxAgeHours int    `yaml:"cache_max_age_hours" json:"cache_max_age_hours"`

	// Options carries free-form key/value settings consumed by individual
	// converters. The orchestrator hashes them but never interprets them.
	Options map[string]string `yaml:"options" json:"options,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:         StrategyAuto,
		ExtractImages:    true,
		ExtractTables:    true,
		OCRLanguage:      "eng",
		OCRDPI:           300,
		ValidateOutput:   true,
		CacheEnabled:     true,
		CacheDir:         filepath.Join(os.TempDir(), "doc2md-cache"),
		CacheMaxAgeHours: 24,
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// withOptions returns a copy of the config with overrides merged into the
// free-form options map. The receiver is not modified.
func (c Config) withOptions(overrides map[string]string) Config {
	if len(overrides) == 0 {
		return c
	}
	merged := make(map[string]string, len(c.Options)+len(overrides))
	for k, v := range c.Options {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	c.Options = merged
	return c
}
