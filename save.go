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
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SavedPaths reports where Save wrote its output.
type SavedPaths struct {
	MarkdownPath string
	ImageDir     string
	ImagePaths   []string
}

// Save writes the markdown to outputPath, creating parent directories
// as needed. When saveImages is set, extracted images are decoded into
// a sibling <stem>_images directory. The result itself is not mutated.
func Save(result *Result, outputPath string, saveImages bool) (SavedPaths, error) {
	var saved SavedPaths
	if result == nil {
		return saved, fmt.Errorf("nil result")
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return saved, fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, []byte(result.Markdown), 0o644); err != nil {
		return saved, fmt.Errorf("write markdown: %w", err)
	}
	saved.MarkdownPath = outputPath

	if !saveImages || len(result.Images) == 0 {
		return saved, nil
	}

	stem := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	imageDir := stem + "_images"
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return saved, fmt.Errorf("create image directory: %w", err)
	}
	saved.ImageDir = imageDir

	for _, img := range result.Images {
		data, err := base64.StdEncoding.DecodeString(img.Base64Data)
		if err != nil {
			return saved, fmt.Errorf("decode image %d: %w", img.Index, err)
		}

		format := img.Format
		if format == "" {
			format = "png"
		}
		name := fmt.Sprintf("image_%d_%d.%s", img.Page, img.Index, format)
		imgPath := filepath.Join(imageDir, name)
		if err := os.WriteFile(imgPath, data, 0o644); err != nil {
			return saved, fmt.Errorf("write image %q: %w", name, err)
		}
		saved.ImagePaths = append(saved.ImagePaths, imgPath)
	}

	return saved, nil
}
