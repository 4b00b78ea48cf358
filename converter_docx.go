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
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DocxConverter converts Word (.docx) documents to markdown by reading
// the OOXML parts directly.
type DocxConverter struct {
	cfg Config
}

// NewDocxConverter creates a DocxConverter.
func NewDocxConverter(cfg Config) *DocxConverter {
	return &DocxConverter{cfg: cfg}
}

func (c *DocxConverter) Name() string { return "docx" }
func (c *DocxConverter) Available() bool { return true }
func (c *DocxConverter) SupportsOCR() bool { return false }
func (c *DocxConverter) Extensions() []string { return []string{".docx"} }

func (c *DocxConverter) Convert(path string) (*Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open DOCX archive: %w", err)
	}
	defer zr.Close()

	docData, err := readZipFileByName(&zr.Reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read word/document.xml: %w", err)
	}

	styles := parseDocxStyles(&zr.Reader)
	rels := parseDocxRels(&zr.Reader, "word/_rels/document.xml.rels")
	title, author := parseDocxCoreProps(&zr.Reader)

	md, tables, err := c.documentToMarkdown(docData, styles, rels)
	if err != nil {
		return nil, fmt.Errorf("parse DOCX body: %w", err)
	}

	result := &Result{
		Markdown: md,
		Metadata: Metadata{
			Title:         title,
			Author:        author,
			ConverterName: c.Name(),
			PageCount:     1,
			TotalWords:    countWords(md),
		},
	}
	if c.cfg.ExtractTables {
		result.Tables = tables
	}
	return result, nil
}

type docxStyle struct {
	styleID string
	name    string
}

// parseDocxStyles reads word/styles.xml and maps style IDs to names.
// Returns an empty map when the part is absent.
func parseDocxStyles(zr *zip.Reader) map[string]docxStyle {
	styles := make(map[string]docxStyle)
	data, err := readZipFileByName(zr, "word/styles.xml")
	if err != nil {
		return styles
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var currentStyleID string
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "style":
				for _, attr := range t.Attr {
					if attr.Name.Local == "styleId" {
						currentStyleID = attr.Value
					}
				}
			case "name":
				if currentStyleID == "" {
					continue
				}
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						styles[currentStyleID] = docxStyle{
							styleID: currentStyleID,
							name:    attr.Value,
						}
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" {
				currentStyleID = ""
			}
		}
	}
	return styles
}

// parseDocxRels reads a relationships part and maps relationship IDs to
// targets. Used to resolve hyperlinks.
func parseDocxRels(zr *zip.Reader, name string) map[string]string {
	rels := make(map[string]string)
	data, err := readZipFileByName(zr, name)
	if err != nil {
		return rels
	}

	var doc struct {
		Relationships []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return rels
	}
	for _, r := range doc.Relationships {
		rels[r.ID] = r.Target
	}
	return rels
}

// parseDocxCoreProps reads docProps/core.xml for the document title and
// author.
func parseDocxCoreProps(zr *zip.Reader) (title, author string) {
	data, err := readZipFileByName(zr, "docProps/core.xml")
	if err != nil {
		return "", ""
	}

	var props struct {
		Title   string `xml:"title"`
		Creator string `xml:"creator"`
	}
	if err := xml.Unmarshal(data, &props); err != nil {
		return "", ""
	}
	return strings.TrimSpace(props.Title), strings.TrimSpace(props.Creator)
}

var reHeadingStyle = regexp.MustCompile(`(?i)^heading\s*(\d)$`)

// headingLevel returns the markdown heading level for a paragraph style,
// or 0 when the style is not a heading.
func headingLevel(styleID string, styles map[string]docxStyle) int {
	name := styleID
	if s, ok := styles[styleID]; ok && s.name != "" {
		name = s.name
	}
	if m := reHeadingStyle.FindStringSubmatch(name); m != nil {
		level, _ := strconv.Atoi(m[1])
		if level >= 1 && level <= 6 {
			return level
		}
	}
	// Fall back to the styleId convention (Heading1, heading2, ...).
	if m := reHeadingStyle.FindStringSubmatch(styleID); m != nil {
		level, _ := strconv.Atoi(m[1])
		if level >= 1 && level <= 6 {
			return level
		}
	}
	return 0
}

// documentToMarkdown walks word/document.xml and emits markdown
// paragraph by paragraph. Tables are rendered inline and also collected
// as structured records.
func (c *DocxConverter) documentToMarkdown(docData []byte, styles map[string]docxStyle, rels map[string]string) (string, []ExtractedTable, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docData))

	var out strings.Builder
	var tables []ExtractedTable

	var (
		para      strings.Builder
		inPara    bool
		paraStyle string

		run     strings.Builder
		inRun   bool
		runBold bool
		runItal bool

		inRunProps bool

		linkTarget string

		inTable   bool
		tableRows [][]string
		rowCells  []string
		cell      strings.Builder
		inCell    bool
	)

	flushRun := func() {
		text := run.String()
		run.Reset()
		if text == "" {
			return
		}
		if runBold {
			text = "**" + text + "**"
		}
		if runItal {
			text = "*" + text + "*"
		}
		if inCell {
			cell.WriteString(text)
		} else {
			para.WriteString(text)
		}
	}

	flushPara := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		if level := headingLevel(paraStyle, styles); level > 0 {
			text = strings.Repeat("#", level) + " " + text
		}
		out.WriteString(text)
		out.WriteString("\n\n")
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				paraStyle = ""
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paraStyle = attr.Value
					}
				}
			case "r":
				inRun = true
				runBold, runItal = false, false
			case "rPr":
				inRunProps = true
			case "b":
				if inRunProps {
					runBold = attrBoolOn(t)
				}
			case "i":
				if inRunProps {
					runItal = attrBoolOn(t)
				}
			case "hyperlink":
				for _, attr := range t.Attr {
					if attr.Name.Local == "id" {
						linkTarget = rels[attr.Value]
					}
				}
				if linkTarget != "" {
					if inCell {
						cell.WriteString("[")
					} else {
						para.WriteString("[")
					}
				}
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &t); err == nil {
					run.WriteString(text)
				}
			case "tab":
				run.WriteString("\t")
			case "br":
				run.WriteString("\n")
			case "tbl":
				inTable = true
				tableRows = nil
			case "tr":
				if inTable {
					rowCells = nil
				}
			case "tc":
				if inTable {
					inCell = true
					cell.Reset()
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "rPr":
				inRunProps = false
			case "r":
				if inRun {
					flushRun()
					inRun = false
				}
			case "hyperlink":
				if linkTarget != "" {
					suffix := "](" + linkTarget + ")"
					if inCell {
						cell.WriteString(suffix)
					} else {
						para.WriteString(suffix)
					}
					linkTarget = ""
				}
			case "p":
				if inPara && !inCell {
					flushPara()
				}
				if inCell {
					// Paragraph break inside a cell becomes a space.
					cell.WriteString(" ")
				}
				inPara = false
			case "tc":
				if inTable {
					rowCells = append(rowCells, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case "tr":
				if inTable {
					tableRows = append(tableRows, rowCells)
				}
			case "tbl":
				if inTable && len(tableRows) > 0 {
					out.WriteString(renderMarkdownTable(tableRows))
					out.WriteString("\n")
					tables = append(tables, tableFromRecords(1, len(tables), tableRows))
				}
				inTable = false
			}
		}
	}

	return out.String(), tables, nil
}

// attrBoolOn reports whether a toggle property element (w:b, w:i) is
// enabled. An absent val attribute means on.
func attrBoolOn(t xml.StartElement) bool {
	for _, attr := range t.Attr {
		if attr.Name.Local == "val" {
			return attr.Value != "false" && attr.Value != "0"
		}
	}
	return true
}

// readZipFileByName returns the contents of the named entry in the
// archive.
func readZipFileByName(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return readZipEntry(f)
		}
	}
	return nil, fmt.Errorf("entry %q not found in archive", name)
}
