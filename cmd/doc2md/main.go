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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	doc2md "github.com/nicholasgasior/doc2md-go"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	var (
		strategy       string
		output         string
		configPath     string
		cacheDir       string
		noCache        bool
		batch          string
		listConverters bool
		cacheClear     bool
		cacheCleanup   bool
		saveImages     bool
		verbose        bool
		showVersion    bool
	)

	flag.StringVar(&strategy, "strategy", "", "Conversion strategy: auto, fast, ocr (default: from config)")
	flag.StringVar(&output, "o", "", "Output file (default: <source>.md)")
	flag.StringVar(&output, "output", "", "Output file (default: <source>.md)")
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&cacheDir, "cache-dir", "", "Cache directory (overrides config)")
	flag.BoolVar(&noCache, "no-cache", false, "Disable the conversion cache")
	flag.StringVar(&batch, "batch", "", "Convert every supported file in a directory")
	flag.BoolVar(&listConverters, "list-converters", false, "List available converters and exit")
	flag.BoolVar(&cacheClear, "cache-clear", false, "Remove all cache entries and exit")
	flag.BoolVar(&cacheCleanup, "cache-cleanup", false, "Remove expired cache entries and exit")
	flag.BoolVar(&saveImages, "save-images", false, "Save extracted images next to the output")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "v", false, "Show version")
	flag.BoolVar(&showVersion, "version", false, "Show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc2md [flags] [source]\n\n")
		fmt.Fprintf(os.Stderr, "Convert documents to Markdown.\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  source    File to convert\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("doc2md %s\n", version)
		os.Exit(0)
	}

	logger := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err == nil {
			logger = dev
		}
	}
	defer logger.Sync()

	cfg := doc2md.DefaultConfig()
	if configPath != "" {
		loaded, err := doc2md.LoadConfig(configPath)
		if err != nil {
			fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if strategy != "" {
		cfg.Strategy = doc2md.Strategy(strategy)
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if noCache {
		cfg.CacheEnabled = false
	}

	o := doc2md.New(
		doc2md.WithConfig(cfg),
		doc2md.WithLogger(logger),
	)

	switch {
	case listConverters:
		for _, info := range o.AvailableConverters() {
			fmt.Printf("%-16s %s -> %s\n", info.Name, info.FileType, info.Strategy)
		}
		return
	case cacheClear:
		fmt.Printf("removed %d cache entries\n", o.Cache().Clear())
		return
	case cacheCleanup:
		fmt.Printf("removed %d expired cache entries\n", o.Cache().CleanupExpired())
		return
	}

	if batch != "" {
		if err := runBatch(o, batch, saveImages); err != nil {
			fatalf("%v", err)
		}
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}
	source := args[0]

	result, err := o.Convert(source)
	if err != nil {
		fatalf("%v", err)
	}

	if output == "" {
		output = strings.TrimSuffix(source, filepath.Ext(source)) + ".md"
	}
	saved, err := doc2md.Save(result, output, saveImages)
	if err != nil {
		fatalf("save output: %v", err)
	}

	fmt.Println(result.Summary())
	fmt.Printf("wrote %s\n", saved.MarkdownPath)
	for _, p := range saved.ImagePaths {
		fmt.Printf("wrote %s\n", p)
	}
}

// runBatch converts every regular file in dir whose extension is
// supported, writing <name>.md next to each source. Failures are
// reported per file without aborting the batch.
func runBatch(o *doc2md.Orchestrator, dir string, saveImages bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	supported := make(map[string]bool)
	for _, info := range o.AvailableConverters() {
		for _, ext := range info.Extensions {
			supported[ext] = true
		}
	}

	var failures int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !supported[ext] || ext == ".md" {
			continue
		}

		source := filepath.Join(dir, entry.Name())
		result, err := o.Convert(source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", source, err)
			failures++
			continue
		}

		output := strings.TrimSuffix(source, ext) + ".md"
		if _, err := doc2md.Save(result, output, saveImages); err != nil {
			fmt.Fprintf(os.Stderr, "%s: save: %v\n", source, err)
			failures++
			continue
		}
		fmt.Printf("wrote %s\n", output)
	}

	if failures > 0 {
		return fmt.Errorf("%d file(s) failed", failures)
	}
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
