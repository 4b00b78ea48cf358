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

	"github.com/xuri/excelize/v2"
)

// XlsxConverter converts Excel (.xlsx) workbooks to markdown, one
// section per sheet.
type XlsxConverter struct {
	cfg Config
}

// NewXlsxConverter creates an XlsxConverter.
func NewXlsxConverter(cfg Config) *XlsxConverter {
	return &XlsxConverter{cfg: cfg}
}

func (c *XlsxConverter) Name() string { return "xlsx" }
func (c *XlsxConverter) Available() bool { return true }
func (c *XlsxConverter) SupportsOCR() bool { return false }
func (c *XlsxConverter) Extensions() []string { return []string{".xlsx"} }

func (c *XlsxConverter) Convert(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	var tables []ExtractedTable
	var warnings []string

	sheets := f.GetSheetList()
	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not read sheet %q: %v", sheet, err))
			continue
		}

		out.WriteString("## " + sheet + "\n\n")
		if len(rows) == 0 {
			out.WriteString("*Empty sheet*\n\n")
			continue
		}

		rows = padRows(rows)
		out.WriteString(renderMarkdownTable(rows))
		out.WriteString("\n")

		if c.cfg.ExtractTables {
			tables = append(tables, tableFromRecords(i+1, len(tables), rows))
		}
	}

	title := ""
	if props, err := f.GetDocProps(); err == nil && props != nil {
		title = props.Title
	}

	md := out.String()
	result := &Result{
		Markdown: md,
		Tables:   tables,
		Metadata: Metadata{
			Title:         title,
			ConverterName: c.Name(),
			PageCount:     len(sheets),
			TotalWords:    countWords(md),
			Warnings:      warnings,
		},
	}
	return result, nil
}

// padRows right-pads ragged rows so every row has the same number of
// columns. GetRows trims trailing empty cells.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == width {
			out[i] = row
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}
