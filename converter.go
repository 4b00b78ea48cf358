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
	"strings"
	"time"
)

// DocumentConverter is the contract the orchestrator consumes from each
// format converter. Implementations convert one file at a time and either
// return a fully populated result or an error, never a half-filled result.
type DocumentConverter interface {
	// Name returns a stable human-readable identifier for this converter.
	// It is recorded in result metadata.
	Name() string

	// Available reports whether the converter's dependencies are present.
	// It is a pure capability probe with no side effects, checked once when
	// a registry is built, never per call.
	Available() bool

	// SupportsOCR reports whether this converter performs OCR. It is used
	// for diagnostic listings only, not for dispatch.
	SupportsOCR() bool

	// Extensions returns the file extensions (with leading dot, lowercase)
	// this converter handles.
	Extensions() []string

	// Convert converts the file at path to markdown.
	Convert(path string) (*Result, error)
}

// ExtractedImage is an image pulled out of a document during conversion.
type ExtractedImage struct {
	Index      int    `json:"index"`
	Page       int    `json:"page"`
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SizeBytes  int    `json:"size_bytes"`
	Base64Data string `json:"base64_data,omitempty"`
	AltText    string `json:"alt_text,omitempty"`
}

// ExtractedTable is a table pulled out of a document during conversion,
// both as structured cells and as rendered markdown.
type ExtractedTable struct {
	Page     int        `json:"page"`
	Index    int        `json:"index"`
	Rows     int        `json:"rows"`
	Columns  int        `json:"columns"`
	Headers  []string   `json:"headers,omitempty"`
	Data     [][]string `json:"data,omitempty"`
	Markdown string     `json:"markdown"`
}

// Metadata describes the source document and the conversion that produced
// a Result.
type Metadata struct {
	SourcePath      string    `json:"source_path"`
	SourceSizeBytes int64     `json:"source_size_bytes"`
	Title           string    `json:"title,omitempty"`
	Author          string    `json:"author,omitempty"`
	PageCount       int       `json:"page_count"`
	TotalWords      int       `json:"total_words"`
	TotalImages     int       `json:"total_images"`
	TotalTables     int       `json:"total_tables"`
	StrategyUsed    Strategy  `json:"strategy_used"`
	ConverterName   string    `json:"converter_name"`
	DurationSeconds float64   `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
	Warnings        []string  `json:"warnings,omitempty"`
	Errors          []string  `json:"errors,omitempty"`
}

// Result is the complete output of a conversion. It is a value the caller
// owns: nothing in this package mutates a Result after Convert returns.
// Persisting a result to disk is the job of the separate Save function.
type Result struct {
	Markdown string           `json:"markdown"`
	Images   []ExtractedImage `json:"images,omitempty"`
	Tables   []ExtractedTable `json:"tables,omitempty"`
	Metadata Metadata         `json:"metadata"`
}

// Summary returns a short human-readable digest of the conversion.
func (r *Result) Summary() string {
	m := r.Metadata
	var b strings.Builder
	fmt.Fprintf(&b, "Converted: %s\n", m.SourcePath)
	fmt.Fprintf(&b, "  Pages: %d\n", m.PageCount)
	fmt.Fprintf(&b, "  Words: %d\n", m.TotalWords)
	fmt.Fprintf(&b, "  Images: %d\n", m.TotalImages)
	fmt.Fprintf(&b, "  Tables: %d\n", m.TotalTables)
	fmt.Fprintf(&b, "  Strategy: %s\n", m.StrategyUsed)
	fmt.Fprintf(&b, "  Converter: %s\n", m.ConverterName)
	fmt.Fprintf(&b, "  Time: %.2fs", m.DurationSeconds)
	if len(m.Warnings) > 0 {
		fmt.Fprintf(&b, "\n  Warnings: %d", len(m.Warnings))
	}
	if len(m.Errors) > 0 {
		fmt.Fprintf(&b, "\n  Errors: %d", len(m.Errors))
	}
	return b.String()
}

// countWords counts whitespace-separated tokens in s.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// renderMarkdownTable renders a 2D string slice as a markdown table. The
// first row becomes the header row.
func renderMarkdownTable(records [][]string) string {
	if len(records) == 0 {
		return ""
	}

	numCols := len(records[0])

	var b strings.Builder

	b.WriteString("| ")
	for i := 0; i < numCols; i++ {
		if i < len(records[0]) {
			b.WriteString(records[0][i])
		}
		b.WriteString(" | ")
	}
	b.WriteString("\n")

	b.WriteString("| ")
	for i := 0; i < numCols; i++ {
		b.WriteString("---")
		b.WriteString(" | ")
	}
	b.WriteString("\n")

	for _, row := range records[1:] {
		b.WriteString("| ")
		for i := 0; i < numCols; i++ {
			if i < len(row) {
				b.WriteString(row[i])
			}
			b.WriteString(" | ")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// tableFromRecords builds an ExtractedTable from parsed rows.
func tableFromRecords(page, index int, records [][]string) ExtractedTable {
	t := ExtractedTable{
		Page:     page,
		Index:    index,
		Rows:     len(records),
		Markdown: renderMarkdownTable(records),
	}
	if len(records) > 0 {
		t.Columns = len(records[0])
		t.Headers = records[0]
		t.Data = records[1:]
	}
	return t
}
