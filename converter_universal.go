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
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/mmcdole/gofeed"
)

// UniversalConverter is the catch-all for text-based formats: CSV,
// JSON, XML/RSS/Atom feeds, EPUB, and plain text.
type UniversalConverter struct {
	cfg      Config
	detector *Detector
}

// NewUniversalConverter creates a UniversalConverter.
func NewUniversalConverter(cfg Config) *UniversalConverter {
	return &UniversalConverter{cfg: cfg, detector: NewDetector()}
}

func (c *UniversalConverter) Name() string { return "universal" }
func (c *UniversalConverter) Available() bool { return true }
func (c *UniversalConverter) SupportsOCR() bool { return false }
func (c *UniversalConverter) Extensions() []string {
	return []string{".csv", ".json", ".jsonl", ".xml", ".rss", ".atom", ".epub", ".txt", ".md", ".log"}
}

// Convert dispatches on the detected file type, not the extension, so a
// CSV or feed saved under an unusual extension still gets structured
// handling. Undetermined files degrade to plain text.
func (c *UniversalConverter) Convert(path string) (*Result, error) {
	fileType, err := c.detector.Detect(path)
	if err != nil {
		return c.convertText(path)
	}

	switch fileType {
	case TypeCSV:
		return c.convertCSV(path)
	case TypeXML:
		return c.convertFeed(path)
	case TypeEPUB:
		return c.convertEPUB(path)
	default:
		return c.convertText(path)
	}
}

func (c *UniversalConverter) convertText(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	md := decodeText(data)
	return &Result{
		Markdown: md,
		Metadata: Metadata{
			ConverterName: c.Name(),
			PageCount:     1,
			TotalWords:    countWords(md),
		},
	}, nil
}

func (c *UniversalConverter) convertCSV(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(decodeText(data)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	var md string
	var tables []ExtractedTable
	if len(records) > 0 {
		records = padRows(records)
		md = renderMarkdownTable(records)
		if c.cfg.ExtractTables {
			tables = append(tables, tableFromRecords(1, 0, records))
		}
	}

	return &Result{
		Markdown: md,
		Tables:   tables,
		Metadata: Metadata{
			ConverterName: c.Name(),
			PageCount:     1,
			TotalWords:    countWords(md),
		},
	}, nil
}

// convertFeed renders an RSS or Atom feed as markdown. Generic XML that
// gofeed cannot parse falls back to plain text.
func (c *UniversalConverter) convertFeed(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	fp := gofeed.NewParser()
	feed, err := fp.ParseString(decodeText(data))
	if err != nil {
		return c.convertText(path)
	}

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n", feed.Title)
	}
	if feed.Description != "" {
		fmt.Fprintf(&b, "%s\n", feed.Description)
	}
	b.WriteString("\n")

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n", item.Title)
		}
		if item.Published != "" {
			fmt.Fprintf(&b, "Published: %s\n\n", item.Published)
		} else if item.Updated != "" {
			fmt.Fprintf(&b, "Updated: %s\n\n", item.Updated)
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content != "" {
			if strings.Contains(content, "<") && strings.Contains(content, ">") {
				if converted, err := convertHTMLToMarkdown(content); err == nil {
					content = converted
				}
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	md := b.String()
	return &Result{
		Markdown: md,
		Metadata: Metadata{
			Title:         feed.Title,
			ConverterName: c.Name(),
			PageCount:     1,
			TotalWords:    countWords(md),
		},
	}, nil
}

func (c *UniversalConverter) convertEPUB(epubPath string) (*Result, error) {
	zr, err := zip.OpenReader(epubPath)
	if err != nil {
		return nil, fmt.Errorf("open EPUB archive: %w", err)
	}
	defer zr.Close()

	opfPath, err := findOPFPath(&zr.Reader)
	if err != nil {
		return nil, fmt.Errorf("find OPF: %w", err)
	}

	meta, manifest, spine, err := parseOPF(&zr.Reader, opfPath)
	if err != nil {
		return nil, fmt.Errorf("parse OPF: %w", err)
	}

	var md strings.Builder
	if meta.title != "" {
		fmt.Fprintf(&md, "# %s\n\n", meta.title)
	}
	if len(meta.authors) > 0 {
		fmt.Fprintf(&md, "**Authors:** %s\n\n", strings.Join(meta.authors, ", "))
	}
	if meta.language != "" {
		fmt.Fprintf(&md, "**Language:** %s\n\n", meta.language)
	}
	if meta.description != "" {
		fmt.Fprintf(&md, "**Description:** %s\n\n", meta.description)
	}

	opfDir := path.Dir(opfPath)
	htmlConv := NewHTMLConverter(c.cfg)

	for _, itemRef := range spine {
		item, ok := manifest[itemRef]
		if !ok {
			continue
		}

		filePath := item.href
		if opfDir != "." && !strings.HasPrefix(filePath, "/") {
			filePath = opfDir + "/" + filePath
		}

		fileData, err := readZipFileByName(&zr.Reader, filePath)
		if err != nil {
			continue
		}

		ext := strings.ToLower(path.Ext(filePath))
		isHTML := ext == ".html" || ext == ".htm" || ext == ".xhtml" ||
			strings.Contains(item.mediaType, "html") || strings.Contains(item.mediaType, "xhtml")
		if !isHTML {
			continue
		}

		chapter, _, err := htmlConv.convertString(string(fileData))
		if err == nil && strings.TrimSpace(chapter) != "" {
			md.WriteString(chapter)
			md.WriteString("\n\n")
		}
	}

	text := md.String()
	return &Result{
		Markdown: text,
		Metadata: Metadata{
			Title:         meta.title,
			Author:        strings.Join(meta.authors, ", "),
			ConverterName: c.Name(),
			PageCount:     len(spine),
			TotalWords:    countWords(text),
		},
	}, nil
}

type epubMetadata struct {
	title       string
	authors     []string
	language    string
	description string
}

type epubManifestItem struct {
	id        string
	href      string
	mediaType string
}

// findOPFPath extracts the OPF package path from META-INF/container.xml.
func findOPFPath(zr *zip.Reader) (string, error) {
	data, err := readZipFileByName(zr, "META-INF/container.xml")
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "rootfile" {
			for _, attr := range se.Attr {
				if attr.Name.Local == "full-path" {
					return attr.Value, nil
				}
			}
		}
	}
	return "", fmt.Errorf("rootfile not found in container.xml")
}

// parseOPF parses the OPF package for metadata, manifest, and spine.
func parseOPF(zr *zip.Reader, opfPath string) (epubMetadata, map[string]epubManifestItem, []string, error) {
	data, err := readZipFileByName(zr, opfPath)
	if err != nil {
		return epubMetadata{}, nil, nil, err
	}

	var meta epubMetadata
	manifest := make(map[string]epubManifestItem)
	var spine []string

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var inMetadata bool
	var currentTag string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "metadata":
				inMetadata = true
			case "title", "creator", "language", "description":
				if inMetadata {
					currentTag = t.Name.Local
				}
			case "item":
				var item epubManifestItem
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "id":
						item.id = attr.Value
					case "href":
						item.href = attr.Value
					case "media-type":
						item.mediaType = attr.Value
					}
				}
				if item.id != "" {
					manifest[item.id] = item
				}
			case "itemref":
				for _, attr := range t.Attr {
					if attr.Name.Local == "idref" {
						spine = append(spine, attr.Value)
					}
				}
			}
		case xml.CharData:
			if !inMetadata || currentTag == "" {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			switch currentTag {
			case "title":
				if meta.title == "" {
					meta.title = text
				}
			case "creator":
				meta.authors = append(meta.authors, text)
			case "language":
				meta.language = text
			case "description":
				meta.description = text
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "metadata":
				inMetadata = false
			case "title", "creator", "language", "description":
				currentTag = ""
			}
		}
	}

	return meta, manifest, spine, nil
}
