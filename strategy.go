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
	"sort"

	"go.uber.org/zap"
)

// Strategy is a named conversion approach for a file type.
type Strategy string

const (
	// StrategyAuto asks the orchestrator to pick a concrete strategy. It is
	// resolved before registry lookup and is never a registration key.
	StrategyAuto Strategy = "auto"
	// StrategyFast is plain text-layer extraction.
	StrategyFast Strategy = "fast"
	// StrategyOCR rasterizes pages and runs optical character recognition.
	StrategyOCR Strategy = "ocr"
	// StrategyDefault is the generic fallback registration for a type.
	StrategyDefault Strategy = "default"
)

type registration struct {
	fileType FileType
	strategy Strategy
}

// Registry maps (FileType, Strategy) pairs to converters. It is built once,
// before the orchestrator is constructed, and never re-probed: a dependency
// breaking mid-run is not noticed until a new registry is built.
type Registry struct {
	converters map[registration]DocumentConverter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{converters: make(map[registration]DocumentConverter)}
}

// Register binds a converter to a (type, strategy) pair. Registering
// StrategyAuto is rejected: auto is a resolution request, not a strategy.
func (r *Registry) Register(t FileType, s Strategy, c DocumentConverter) error {
	if s == StrategyAuto {
		return fmt.Errorf("register %q: %q is not a registrable strategy", t, s)
	}
	if c == nil {
		return fmt.Errorf("register %q/%q: nil converter", t, s)
	}
	r.converters[registration{t, s}] = c
	return nil
}

// Lookup returns the converter registered for the pair, if any.
func (r *Registry) Lookup(t FileType, s Strategy) (DocumentConverter, bool) {
	c, ok := r.converters[registration{t, s}]
	return c, ok
}

// Has reports whether a converter is registered for the pair.
func (r *Registry) Has(t FileType, s Strategy) bool {
	_, ok := r.Lookup(t, s)
	return ok
}

// StrategiesFor returns the strategies registered for a type, sorted.
func (r *Registry) StrategiesFor(t FileType) []Strategy {
	var strategies []Strategy
	for reg := range r.converters {
		if reg.fileType == t {
			strategies = append(strategies, reg.strategy)
		}
	}
	sort.Slice(strategies, func(i, j int) bool { return strategies[i] < strategies[j] })
	return strategies
}

// ConverterInfo describes one registration, for diagnostics.
type ConverterInfo struct {
	FileType    FileType
	Strategy    Strategy
	Name        string
	SupportsOCR bool
	Extensions  []string
}

// List returns every registration, sorted by type then strategy.
func (r *Registry) List() []ConverterInfo {
	infos := make([]ConverterInfo, 0, len(r.converters))
	for reg, c := range r.converters {
		infos = append(infos, ConverterInfo{
			FileType:    reg.fileType,
			Strategy:    reg.strategy,
			Name:        c.Name(),
			SupportsOCR: c.SupportsOCR(),
			Extensions:  c.Extensions(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].FileType != infos[j].FileType {
			return infos[i].FileType < infos[j].FileType
		}
		return infos[i].Strategy < infos[j].Strategy
	})
	return infos
}

// Discover probes every built-in converter and registers the available
// ones. It is the availability-discovery collaborator: callers run it at
// startup and hand the result to New via WithRegistry, or let New run it
// with defaults.
func Discover(cfg Config, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := NewRegistry()

	register := func(t FileType, s Strategy, c DocumentConverter) {
		if !c.Available() {
			logger.Debug("converter unavailable",
				zap.String("converter", c.Name()),
				zap.String("type", string(t)),
				zap.String("strategy", string(s)))
			return
		}
		if err := r.Register(t, s, c); err != nil {
			logger.Warn("converter registration failed", zap.Error(err))
			return
		}
		logger.Debug("registered converter",
			zap.String("converter", c.Name()),
			zap.String("type", string(t)),
			zap.String("strategy", string(s)))
	}

	pdfText := NewPDFConverter(cfg)
	register(TypePDF, StrategyFast, pdfText)
	register(TypePDF, StrategyDefault, pdfText)

	ocr := NewOCRConverter(cfg)
	register(TypePDF, StrategyOCR, ocr)
	register(TypeImage, StrategyOCR, ocr)
	register(TypeImage, StrategyDefault, ocr)

	register(TypeHTML, StrategyDefault, NewHTMLConverter(cfg))
	register(TypeDOCX, StrategyDefault, NewDocxConverter(cfg))
	register(TypeXLSX, StrategyDefault, NewXlsxConverter(cfg))
	register(TypeXLS, StrategyDefault, NewXlsConverter(cfg))

	universal := NewUniversalConverter(cfg)
	for _, t := range []FileType{TypeCSV, TypeJSON, TypeXML, TypeText, TypeEPUB} {
		register(t, StrategyDefault, universal)
	}

	return r
}
