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

	"github.com/extrame/xls"
)

// XlsConverter converts legacy Excel (.xls) workbooks to markdown.
type XlsConverter struct {
	cfg Config
}

// NewXlsConverter creates an XlsConverter.
func NewXlsConverter(cfg Config) *XlsConverter {
	return &XlsConverter{cfg: cfg}
}

func (c *XlsConverter) Name() string { return "xls" }
func (c *XlsConverter) Available() bool { return true }
func (c *XlsConverter) SupportsOCR() bool { return false }
func (c *XlsConverter) Extensions() []string { return []string{".xls"} }

func (c *XlsConverter) Convert(path string) (*Result, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	var md strings.Builder
	var tables []ExtractedTable

	numSheets := wb.NumSheets()
	for i := 0; i < numSheets; i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		sheetName := sheet.Name
		if sheetName == "" {
			sheetName = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		maxRow := int(sheet.MaxRow)
		for rowIdx := 0; rowIdx <= maxRow; rowIdx++ {
			row := sheet.Row(rowIdx)
			if row == nil {
				continue
			}

			var cells []string
			lastCol := row.LastCol()
			for colIdx := 0; colIdx < lastCol; colIdx++ {
				cells = append(cells, row.Col(colIdx))
			}
			rows = append(rows, cells)
		}

		if len(rows) == 0 {
			continue
		}
		rows = padRows(rows)

		fmt.Fprintf(&md, "## %s\n\n", sheetName)
		md.WriteString(renderMarkdownTable(rows))
		md.WriteString("\n")

		if c.cfg.ExtractTables {
			tables = append(tables, tableFromRecords(i+1, len(tables), rows))
		}
	}

	text := md.String()
	result := &Result{
		Markdown: text,
		Tables:   tables,
		Metadata: Metadata{
			ConverterName: c.Name(),
			PageCount:     numSheets,
			TotalWords:    countWords(text),
		},
	}
	return result, nil
}
