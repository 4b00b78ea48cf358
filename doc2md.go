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

// Package doc2md converts documents (PDF, HTML, DOCX, XLSX and others) to
// Markdown. The Orchestrator selects a converter by detected file type and
// requested strategy, consults a content-addressed result cache, and
// validates output.
package doc2md

import (
	"os"
	"time"

	"go.uber.org/zap"
)

// scannedTextThreshold is the average extracted-text length per sampled
// page below which a PDF is classified as scanned. The value is an
// arbitrary tunable inherited from production use, not a validated
// statistical threshold; changing it changes auto-strategy behavior.
const scannedTextThreshold = 50

// scannedSamplePages is the maximum number of leading pages sampled when
// classifying a PDF as scanned.
const scannedSamplePages = 3

// textSampler reports the total extracted-text length over the first
// min(maxPages, pageCount) pages of a PDF and the number of pages sampled.
type textSampler func(path string, maxPages int) (totalChars, pagesSampled int, err error)

// Orchestrator is the single entry point for conversions. It is stateless
// per call apart from the converter registry built before construction;
// concurrent calls for different files are independent, and concurrent
// calls for the same file are uncoordinated (duplicate work is possible
// but harmless).
type Orchestrator struct {
	cfg      Config
	registry *Registry
	cache    *Cache
	detector *Detector
	logger   *zap.Logger
	sampler  textSampler
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfig sets the base configuration.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// WithRegistry supplies a pre-built converter registry, bypassing the
// default Discover probing.
func WithRegistry(r *Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithCache supplies a pre-built cache.
func WithCache(c *Cache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator. Unless overridden by options, it probes
// converter availability via Discover and opens a cache per the
// configuration.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = Discover(o.cfg, o.logger)
	}
	if o.cache == nil {
		maxAge := time.Duration(o.cfg.CacheMaxAgeHours) * time.Hour
		o.cache = NewCache(o.cfg.CacheDir, maxAge, o.cfg.CacheEnabled, o.logger)
	}
	if o.detector == nil {
		o.detector = NewDetector()
	}
	o.sampler = samplePDFText
	return o
}

// ConvertOption adjusts a single Convert call.
type ConvertOption func(*convertRequest)

type convertRequest struct {
	strategy Strategy
	options  map[string]string
}

// WithStrategy overrides the strategy for one call. StrategyAuto requests
// automatic resolution.
func WithStrategy(s Strategy) ConvertOption {
	return func(r *convertRequest) { r.strategy = s }
}

// WithOption merges one free-form option into the configuration for this
// call. Options participate in cache-key hashing.
func WithOption(key, value string) ConvertOption {
	return func(r *convertRequest) {
		if r.options == nil {
			r.options = make(map[string]string)
		}
		r.options[key] = value
	}
}

// WithOptions merges several free-form options into the configuration for
// this call.
func WithOptions(options map[string]string) ConvertOption {
	return func(r *convertRequest) {
		if r.options == nil {
			r.options = make(map[string]string, len(options))
		}
		for k, v := range options {
			r.options[k] = v
		}
	}
}

// Convert converts the file at path to markdown. It either returns a fully
// populated result or an error; no partial results.
func (o *Orchestrator) Convert(path string, opts ...ConvertOption) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &FileNotFoundError{Path: path}
	}

	req := convertRequest{strategy: o.cfg.Strategy}
	for _, opt := range opts {
		opt(&req)
	}
	cfg := o.cfg.withOptions(req.options)

	fileType, err := o.detector.Detect(path)
	if err != nil {
		return nil, err
	}

	strategy := req.strategy
	if strategy == "" {
		strategy = cfg.Strategy
	}
	var autoWarning string
	autoResolved := false
	if strategy == StrategyAuto || strategy == "" {
		strategy, autoWarning = o.resolveAuto(fileType, path)
		autoResolved = true
	}

	o.logger.Debug("dispatching conversion",
		zap.String("path", path),
		zap.String("type", string(fileType)),
		zap.String("strategy", string(strategy)))

	// The default fallback applies only to auto-resolved strategies. An
	// explicitly requested strategy with no registration is an error that
	// must enumerate the alternatives.
	converter, ok := o.registry.Lookup(fileType, strategy)
	if !ok && autoResolved {
		if converter, ok = o.registry.Lookup(fileType, StrategyDefault); ok {
			strategy = StrategyDefault
		}
	}
	if !ok {
		registered := o.registry.StrategiesFor(fileType)
		if len(registered) == 0 {
			return nil, &UnsupportedFormatError{Path: path, Type: fileType}
		}
		return nil, &NoConverterError{Type: fileType, Strategy: strategy, Registered: registered}
	}

	// The resolved strategy is part of the cached configuration: results
	// produced by different strategies must never share a cache entry.
	cfg.Strategy = strategy

	if cached := o.cache.Get(path, cfg); cached != nil {
		return cached, nil
	}

	start := time.Now()
	result, err := converter.Convert(path)
	if err != nil {
		return nil, &ConversionError{Converter: converter.Name(), Err: err}
	}

	result.Markdown = normalizeOutput(result.Markdown)
	o.finalize(result, path, converter, strategy, time.Since(start))
	if autoWarning != "" {
		result.Metadata.Warnings = append(result.Metadata.Warnings, autoWarning)
	}
	if cfg.ValidateOutput {
		validateResult(result)
	}

	o.cache.Set(path, cfg, result)
	return result, nil
}

// AvailableConverters lists every registration, for diagnostics.
func (o *Orchestrator) AvailableConverters() []ConverterInfo {
	return o.registry.List()
}

// Cache exposes the orchestrator's cache for maintenance operations.
func (o *Orchestrator) Cache() *Cache {
	return o.cache
}

// resolveAuto picks a concrete strategy for the auto sentinel. Only PDFs
// get content sampling; every other type resolves to its default
// registration. A scanned PDF without a registered OCR converter falls
// back to fast extraction and the returned warning surfaces that.
func (o *Orchestrator) resolveAuto(fileType FileType, path string) (Strategy, string) {
	if fileType != TypePDF {
		return StrategyDefault, ""
	}

	totalChars, pages, err := o.sampler(path, scannedSamplePages)
	if err != nil || pages == 0 {
		// Cannot sample: assume a text layer is present.
		o.logger.Debug("text sampling failed, assuming text layer", zap.Error(err))
		return StrategyFast, ""
	}

	avg := totalChars / pages
	if avg >= scannedTextThreshold {
		return StrategyFast, ""
	}

	o.logger.Debug("detected scanned PDF",
		zap.String("path", path),
		zap.Int("avg_chars_per_page", avg))

	if o.registry.Has(TypePDF, StrategyOCR) {
		return StrategyOCR, ""
	}
	return StrategyFast, "document appears to be scanned but no OCR converter is available; text extraction may be incomplete"
}

// finalize fills the orchestrator-owned metadata fields on a fresh result.
func (o *Orchestrator) finalize(result *Result, path string, converter DocumentConverter, strategy Strategy, elapsed time.Duration) {
	m := &result.Metadata
	if m.SourcePath == "" {
		m.SourcePath = path
	}
	if m.SourceSizeBytes == 0 {
		if info, err := os.Stat(path); err == nil {
			m.SourceSizeBytes = info.Size()
		}
	}
	if m.ConverterName == "" {
		m.ConverterName = converter.Name()
	}
	m.StrategyUsed = strategy
	m.DurationSeconds = elapsed.Seconds()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	m.TotalImages = len(result.Images)
	m.TotalTables = len(result.Tables)
	if m.TotalWords == 0 {
		m.TotalWords = countWords(result.Markdown)
	}
}

// validateResult runs cheap quality heuristics and appends warnings. It
// never fails the conversion.
func validateResult(result *Result) {
	m := &result.Metadata
	if m.TotalWords < 10 && m.PageCount > 1 {
		m.Warnings = append(m.Warnings,
			"very little text extracted; document may be scanned or contain mostly images")
	}
	if len(m.Errors) > 0 {
		m.Warnings = append(m.Warnings,
			"conversion completed with recorded errors")
	}
}
