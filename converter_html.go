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
	"os"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// HTMLConverter converts HTML documents to markdown.
type HTMLConverter struct {
	cfg Config
}

// NewHTMLConverter creates an HTMLConverter.
func NewHTMLConverter(cfg Config) *HTMLConverter {
	return &HTMLConverter{cfg: cfg}
}

func (c *HTMLConverter) Name() string { return "html" }
func (c *HTMLConverter) Available() bool { return true }
func (c *HTMLConverter) SupportsOCR() bool { return false }
func (c *HTMLConverter) Extensions() []string { return []string{".html", ".htm"} }

func (c *HTMLConverter) Convert(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read HTML: %w", err)
	}

	md, title, err := c.convertString(string(data))
	if err != nil {
		return nil, err
	}

	result := &Result{
		Markdown: md,
		Metadata: Metadata{
			SourcePath:      path,
			SourceSizeBytes: int64(len(data)),
			ConverterName:   c.Name(),
			Title:           title,
			PageCount:       1,
			TotalWords:      countWords(md),
		},
	}
	return result, nil
}

// convertString converts an HTML string to markdown and extracts the
// document title. It is also the backend for EPUB chapter conversion.
func (c *HTMLConverter) convertString(htmlStr string) (md, title string, err error) {
	title = extractHTMLTitle(htmlStr)

	htmlStr = removeScriptAndStyle(htmlStr)

	md, err = convertHTMLToMarkdown(htmlStr)
	if err != nil {
		return "", "", fmt.Errorf("convert HTML to markdown: %w", err)
	}

	if !c.cfg.KeepDataURIs {
		md = truncateDataURIs(md)
	}
	return md, title, nil
}

// convertHTMLToMarkdown runs html-to-markdown with the commonmark and
// table plugins.
func convertHTMLToMarkdown(htmlStr string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)

	return conv.ConvertString(htmlStr)
}

var (
	reScript  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	reDataURI = regexp.MustCompile(`(data:[a-zA-Z0-9/+.-]+;base64,)[A-Za-z0-9+/=]{64,}`)
)

// removeScriptAndStyle removes <script> and <style> tags and their content.
func removeScriptAndStyle(htmlStr string) string {
	htmlStr = reScript.ReplaceAllString(htmlStr, "")
	htmlStr = reStyle.ReplaceAllString(htmlStr, "")
	return htmlStr
}

// truncateDataURIs shortens large base64 data URIs to data:mime/type;base64...
func truncateDataURIs(md string) string {
	return reDataURI.ReplaceAllString(md, "${1}...")
}

// extractHTMLTitle extracts the <title> text from an HTML document.
func extractHTMLTitle(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
			if title != "" {
				return
			}
		}
	}
	findTitle(doc)

	return strings.TrimSpace(title)
}
