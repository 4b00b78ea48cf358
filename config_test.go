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
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Strategy != StrategyAuto {
		t.Errorf("Strategy = %q, want auto", cfg.Strategy)
	}
	if !cfg.ExtractImages || !cfg.ExtractTables {
		t.Error("extraction should default to enabled")
	}
	if cfg.OCRLanguage != "eng" || cfg.OCRDPI != 300 {
		t.Errorf("OCR defaults = %q/%d", cfg.OCRLanguage, cfg.OCRDPI)
	}
	if !cfg.CacheEnabled || cfg.CacheMaxAgeHours != 24 {
		t.Errorf("cache defaults = %v/%d", cfg.CacheEnabled, cfg.CacheMaxAgeHours)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `strategy: fast
ocr_language: deu
ocr_dpi: 600
cache_enabled: false
options:
  custom_key: custom_value
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy != StrategyFast {
		t.Errorf("Strategy = %q, want fast", cfg.Strategy)
	}
	if cfg.OCRLanguage != "deu" || cfg.OCRDPI != 600 {
		t.Errorf("OCR settings = %q/%d", cfg.OCRLanguage, cfg.OCRDPI)
	}
	if cfg.CacheEnabled {
		t.Error("cache_enabled: false not applied")
	}
	// Unspecified fields keep their defaults.
	if !cfg.ExtractImages {
		t.Error("unspecified extract_images should keep the default")
	}
	if cfg.Options["custom_key"] != "custom_value" {
		t.Errorf("Options = %v", cfg.Options)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("strategy: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestConfigWithOptions(t *testing.T) {
	base := DefaultConfig()
	base.Options = map[string]string{"a": "1"}

	merged := base.withOptions(map[string]string{"b": "2", "a": "override"})
	if merged.Options["a"] != "override" || merged.Options["b"] != "2" {
		t.Errorf("merged Options = %v", merged.Options)
	}
	// The receiver must be untouched.
	if base.Options["a"] != "1" {
		t.Errorf("receiver mutated: %v", base.Options)
	}
	if _, ok := base.Options["b"]; ok {
		t.Errorf("receiver mutated: %v", base.Options)
	}

	same := base.withOptions(nil)
	if same.Options["a"] != "1" {
		t.Errorf("nil overrides should return equivalent config: %v", same.Options)
	}
}
