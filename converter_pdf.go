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
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFConverter extracts the text layer of a PDF. It is the fast strategy:
// no rasterization, no OCR.
type PDFConverter struct {
	cfg Config
}

// NewPDFConverter creates a PDFConverter.
func NewPDFConverter(cfg Config) *PDFConverter {
	return &PDFConverter{cfg: cfg}
}

func (c *PDFConverter) Name() string { return "pdf-text" }
func (c *PDFConverter) Available() bool { return true }
func (c *PDFConverter) SupportsOCR() bool { return false }
func (c *PDFConverter) Extensions() []string { return []string{".pdf"} }

func (c *PDFConverter) Convert(path string) (*Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	var md strings.Builder
	var images []ExtractedImage
	totalWords := 0

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		if c.cfg.ExtractImages {
			images = append(images, extractPageImages(page, i)...)
		}

		text := strings.TrimSpace(extractPageText(page))
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
		Images:   images,
		Metadata: Metadata{
			SourcePath:    path,
			ConverterName: c.Name(),
			PageCount:     numPages,
			TotalWords:    totalWords,
		},
	}
	if info, err := os.Stat(path); err == nil {
		result.Metadata.SourceSizeBytes = info.Size()
	}
	if strings.TrimSpace(result.Markdown) == "" {
		result.Metadata.Warnings = append(result.Metadata.Warnings,
			"no readable text layer found in PDF")
	}
	return result, nil
}

// samplePDFText reports the total extracted-text length over the first
// min(maxPages, pageCount) pages. The auto-strategy heuristic uses it to
// classify a PDF as scanned.
func samplePDFText(path string, maxPages int) (int, int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	total := 0
	sampled := 0
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			sampled++
			continue
		}
		text := strings.TrimSpace(extractPageText(page))
		total += len(text)
		sampled++
	}
	return total, sampled, nil
}

// pdfTextElement is a positioned text fragment on a page.
type pdfTextElement struct {
	x    float64
	y    float64
	text string
	size float64
}

// pdfLine groups fragments sharing a baseline.
type pdfLine struct {
	y        float64
	elements []pdfTextElement
}

// extractPageText extracts text using GetTextByRow, falling back to
// position-based grouping of Content().Text when row extraction yields
// nothing.
func extractPageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var result strings.Builder
		for _, row := range rows {
			var lineText strings.Builder
			prevWasEmpty := false
			for _, word := range row.Content {
				s := word.S
				if s == "" {
					prevWasEmpty = true
					continue
				}
				if lineText.Len() > 0 && prevWasEmpty {
					// Empty string between non-empty strings marks a word
					// boundary.
					last := lineText.String()
					if len(last) > 0 && last[len(last)-1] != ' ' {
						lineText.WriteString(" ")
					}
				}
				lineText.WriteString(s)
				prevWasEmpty = false
			}
			text := strings.TrimSpace(lineText.String())
			if text != "" {
				result.WriteString(text)
				result.WriteString("\n")
			}
		}
		if strings.TrimSpace(result.String()) != "" {
			return result.String()
		}
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	var elements []pdfTextElement
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		elements = append(elements, pdfTextElement{x: t.X, y: t.Y, text: t.S, size: t.FontSize})
	}
	if len(elements) == 0 {
		return ""
	}

	// Group fragments into lines by Y proximity, tolerance relative to the
	// font size.
	yTolerance := 3.0
	if elements[0].size > 0 {
		yTolerance = elements[0].size * 0.3
	}

	var lines []pdfLine
	for _, elem := range elements {
		found := false
		for i := range lines {
			if absFloat(lines[i].y-elem.y) < yTolerance {
				lines[i].elements = append(lines[i].elements, elem)
				found = true
				break
			}
		}
		if !found {
			lines = append(lines, pdfLine{y: elem.y, elements: []pdfTextElement{elem}})
		}
	}

	// PDF coordinates grow upward: sort lines top to bottom.
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})

	var result strings.Builder
	for _, ln := range lines {
		sort.Slice(ln.elements, func(i, j int) bool {
			return ln.elements[i].x < ln.elements[j].x
		})

		var lineText strings.Builder
		var lastX, lastWidth float64
		first := true

		for _, elem := range ln.elements {
			if !first {
				gap := elem.x - (lastX + lastWidth)
				threshold := elem.size * 0.2
				if threshold < 1.0 {
					threshold = 1.0
				}
				if gap > threshold {
					lineText.WriteString(" ")
				}
			}
			lineText.WriteString(elem.text)
			lastX = elem.x
			lastWidth = float64(len([]rune(elem.text))) * elem.size * 0.55
			first = false
		}

		if text := lineText.String(); strings.TrimSpace(text) != "" {
			result.WriteString(text)
			result.WriteString("\n")
		}
	}

	return result.String()
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// extractPageImages enumerates the image XObjects in a page's resource
// dictionary and re-encodes the decodable ones as base64 PNG. Images behind
// stream filters the reader cannot decompress (DCTDecode and friends) are
// skipped rather than failing the conversion.
func extractPageImages(page pdf.Page, pageNum int) []ExtractedImage {
	xobjects := page.Resources().Key("XObject")
	if xobjects.Kind() != pdf.Dict {
		return nil
	}

	var images []ExtractedImage
	for _, name := range xobjects.Keys() {
		obj := xobjects.Key(name)
		if obj.Key("Subtype").Name() != "Image" {
			continue
		}
		img, ok := decodeImageXObject(obj)
		if !ok {
			continue
		}
		img.Page = pageNum
		img.Index = len(images)
		images = append(images, img)
	}
	return images
}

// decodeImageXObject turns one image XObject into an extracted image.
// Only 8-bit DeviceGray and DeviceRGB samples behind no filter or
// FlateDecode are handled.
func decodeImageXObject(obj pdf.Value) (img ExtractedImage, ok bool) {
	// The stream reader panics on malformed or unsupported streams.
	defer func() {
		if recover() != nil {
			img, ok = ExtractedImage{}, false
		}
	}()

	width := int(obj.Key("Width").Int64())
	height := int(obj.Key("Height").Int64())
	if width <= 0 || height <= 0 {
		return ExtractedImage{}, false
	}
	if obj.Key("BitsPerComponent").Int64() != 8 {
		return ExtractedImage{}, false
	}
	switch filter := obj.Key("Filter"); filter.Kind() {
	case pdf.Null:
	case pdf.Name:
		if filter.Name() != "FlateDecode" {
			return ExtractedImage{}, false
		}
	default:
		return ExtractedImage{}, false
	}

	var components int
	switch obj.Key("ColorSpace").Name() {
	case "DeviceGray":
		components = 1
	case "DeviceRGB":
		components = 3
	default:
		return ExtractedImage{}, false
	}

	r := obj.Reader()
	samples, err := io.ReadAll(r)
	r.Close()
	if err != nil || len(samples) < width*height*components {
		return ExtractedImage{}, false
	}
	return encodeImageSamples(samples, width, height, components)
}

// encodeImageSamples packs raw 8-bit samples into a PNG. components is 1
// for grayscale, 3 for RGB.
func encodeImageSamples(samples []byte, width, height, components int) (ExtractedImage, bool) {
	bounds := image.Rect(0, 0, width, height)
	var img image.Image
	switch components {
	case 1:
		gray := image.NewGray(bounds)
		copy(gray.Pix, samples[:width*height])
		img = gray
	case 3:
		rgba := image.NewNRGBA(bounds)
		for i := 0; i < width*height; i++ {
			rgba.Pix[i*4+0] = samples[i*3+0]
			rgba.Pix[i*4+1] = samples[i*3+1]
			rgba.Pix[i*4+2] = samples[i*3+2]
			rgba.Pix[i*4+3] = 0xff
		}
		img = rgba
	default:
		return ExtractedImage{}, false
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ExtractedImage{}, false
	}
	return ExtractedImage{
		Format:     "png",
		Width:      width,
		Height:     height,
		SizeBytes:  buf.Len(),
		Base64Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, true
}
