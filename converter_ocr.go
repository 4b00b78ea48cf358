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
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// OCRConverter rasterizes PDF pages with pdftoppm and recognizes text with
// the tesseract binary. It also handles standalone images. Availability
// depends entirely on the binaries being on PATH.
type OCRConverter struct {
	cfg Config
}

// NewOCRConverter creates an OCRConverter.
func NewOCRConverter(cfg Config) *OCRConverter {
	return &OCRConverter{cfg: cfg}
}

func (c *OCRConverter) Name() string { return "ocr-tesseract" }
func (c *OCRConverter) SupportsOCR() bool { return true }

// Available requires both binaries on PATH: the PDF path shells out to
// pdftoppm before tesseract ever runs.
func (c *OCRConverter) Available() bool {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}

func (c *OCRConverter) Extensions() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp", ".gif", ".webp"}
}

func (c *OCRConverter) Convert(path string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var pages []string
	if ext == ".pdf" {
		rendered, cleanup, err := c.renderPDFPages(path)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		pages = rendered
	} else {
		pages = []string{path}
	}

	var md strings.Builder
	totalWords := 0

	for i, imgPath := range pages {
		text, err := c.recognize(imgPath)
		if err != nil {
			return nil, fmt.Errorf("ocr page %d: %w", i+1, err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		totalWords += countWords(text)
		if c.cfg.IncludePageBreaks && md.Len() > 0 {
			md.WriteString("\n\n-----\n\n")
		}
		md.WriteString(text)
		md.WriteString("\n\n")
	}

	result := &Result{
		Markdown: md.String(),
		Metadata: Metadata{
			SourcePath:    path,
			ConverterName: c.Name(),
			PageCount:     len(pages),
			TotalWords:    totalWords,
		},
	}
	if info, err := os.Stat(path); err == nil {
		result.Metadata.SourceSizeBytes = info.Size()
	}
	return result, nil
}

// renderPDFPages rasterizes each page to a PNG in a temporary directory
// and returns the image paths in page order plus a cleanup function.
func (c *OCRConverter) renderPDFPages(path string) ([]string, func(), error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, nil, fmt.Errorf("pdftoppm not found: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "doc2md-ocr-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp dir: %w", err)
	}

	dpi := c.cfg.OCRDPI
	if dpi <= 0 {
		dpi = 300
	}

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-r", strconv.Itoa(dpi), "-png", path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	pages, _ := filepath.Glob(prefix + "*.png")
	if len(pages) == 0 {
		os.RemoveAll(tmpDir)
		return nil, nil, fmt.Errorf("pdftoppm produced no pages for %s", path)
	}

	sort.Strings(pages)
	return pages, func() { os.RemoveAll(tmpDir) }, nil
}

// recognize runs tesseract on a single image and returns the extracted
// text.
func (c *OCRConverter) recognize(imgPath string) (string, error) {
	lang := c.cfg.OCRLanguage
	if lang == "" {
		lang = "eng"
	}

	cmd := exec.Command("tesseract", imgPath, "stdout", "-l", lang)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
