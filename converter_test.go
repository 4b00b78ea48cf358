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
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n\t  ", 0},
		{"one", 1},
		{"one two three", 3},
		{"# heading\n\nbody text here", 5},
	}
	for _, tt := range tests {
		if got := countWords(tt.in); got != tt.want {
			t.Errorf("countWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRenderMarkdownTable(t *testing.T) {
	records := [][]string{
		{"Name", "Age"},
		{"Alice", "30"},
	}
	got := renderMarkdownTable(records)

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header, separator, one row:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "Name") || !strings.Contains(lines[0], "Age") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("separator line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "Alice") {
		t.Errorf("data line = %q", lines[2])
	}

	if renderMarkdownTable(nil) != "" {
		t.Error("empty records should render to empty string")
	}
}

func TestTableFromRecords(t *testing.T) {
	records := [][]string{
		{"h1", "h2", "h3"},
		{"a", "b", "c"},
		{"d", "e", "f"},
	}
	table := tableFromRecords(2, 1, records)

	if table.Page != 2 || table.Index != 1 {
		t.Errorf("Page/Index = %d/%d, want 2/1", table.Page, table.Index)
	}
	if table.Rows != 3 || table.Columns != 3 {
		t.Errorf("Rows/Columns = %d/%d, want 3/3", table.Rows, table.Columns)
	}
	if table.Headers[2] != "h3" {
		t.Errorf("Headers = %v", table.Headers)
	}
	if len(table.Data) != 2 || table.Data[1][2] != "f" {
		t.Errorf("Data = %v", table.Data)
	}
	if table.Markdown == "" {
		t.Error("Markdown rendering missing")
	}
}

func TestResultSummary(t *testing.T) {
	r := &Result{
		Metadata: Metadata{
			SourcePath:    "/tmp/report.pdf",
			PageCount:     4,
			TotalWords:    1200,
			StrategyUsed:  StrategyFast,
			ConverterName: "pdf-text",
			Warnings:      []string{"one warning"},
		},
	}
	s := r.Summary()
	for _, want := range []string{"/tmp/report.pdf", "Pages: 4", "Words: 1200", "Strategy: fast", "Converter: pdf-text", "Warnings: 1"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestErrorPredicates(t *testing.T) {
	if !IsFileNotFound(&FileNotFoundError{Path: "/x"}) {
		t.Error("IsFileNotFound")
	}
	if !IsNoConverter(&NoConverterError{Type: TypePDF, Strategy: StrategyOCR}) {
		t.Error("IsNoConverter")
	}
	if !IsUnsupportedFormat(&UnsupportedFormatError{Path: "/x", Type: TypeZIP}) {
		t.Error("IsUnsupportedFormat for UnsupportedFormatError")
	}
	if !IsUnsupportedFormat(&UndeterminedTypeError{Path: "/x"}) {
		t.Error("IsUnsupportedFormat for UndeterminedTypeError")
	}
	if IsFileNotFound(&NoConverterError{}) {
		t.Error("IsFileNotFound must not match other error types")
	}
}
