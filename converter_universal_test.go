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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUniversalConvertCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "name,age,city\nAlice,30,Berlin\nBob,25,Tokyo\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"name", "Alice", "Berlin", "Tokyo", "---"} {
		if !strings.Contains(result.Markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, result.Markdown)
		}
	}
	if len(result.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(result.Tables))
	}
	table := result.Tables[0]
	if table.Rows != 3 || table.Columns != 3 {
		t.Errorf("table %dx%d, want 3x3", table.Rows, table.Columns)
	}
	if table.Headers[0] != "name" {
		t.Errorf("Headers[0] = %q, want name", table.Headers[0])
	}
	if len(table.Data) != 2 || table.Data[1][0] != "Bob" {
		t.Errorf("Data = %v", table.Data)
	}
}

func TestUniversalConvertCSVRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatalf("ragged CSV must not fail: %v", err)
	}
	if !strings.Contains(result.Markdown, "| 1 | 2 |") {
		t.Errorf("ragged row not rendered:\n%s", result.Markdown)
	}
}

func TestUniversalConvertCSVNoTablesWhenDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("x,y\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ExtractTables = false
	c := NewUniversalConverter(cfg)
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Tables) != 0 {
		t.Errorf("tables extracted despite ExtractTables=false: %d", len(result.Tables))
	}
	if !strings.Contains(result.Markdown, "| x | y |") {
		t.Error("markdown table should still render")
	}
}

func TestUniversalConvertCSVUnderUnusualExtension(t *testing.T) {
	// Dispatch follows the detected type: CSV content under an extension
	// the detector does not know must still render as a table.
	path := filepath.Join(t.TempDir(), "export.dat")
	content := "name,role\nAda,engineer\nGrace,admiral\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Markdown, "| name | role |") {
		t.Errorf("CSV content not rendered as a table:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "| Ada | engineer |") {
		t.Errorf("data row missing:\n%s", result.Markdown)
	}
}

func TestUniversalConvertRSS(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Engineering Blog</title>
    <description>Posts about systems</description>
    <item>
      <title>First Post</title>
      <pubDate>Mon, 02 Jan 2006 15:04:05 MST</pubDate>
      <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
    </item>
  </channel>
</rss>`
	path := filepath.Join(t.TempDir(), "feed.rss")
	if err := os.WriteFile(path, []byte(feed), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if result.Metadata.Title != "Engineering Blog" {
		t.Errorf("Title = %q, want Engineering Blog", result.Metadata.Title)
	}
	for _, want := range []string{"# Engineering Blog", "## First Post", "Hello", "world"} {
		if !strings.Contains(result.Markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, result.Markdown)
		}
	}
}

func TestUniversalConvertGenericXMLFallsBackToText(t *testing.T) {
	content := `<?xml version="1.0"?><inventory><item sku="42">widget</item></inventory>`
	path := filepath.Join(t.TempDir(), "inventory.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Markdown, "widget") {
		t.Errorf("fallback text missing content:\n%s", result.Markdown)
	}
}

func TestUniversalConvertPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("just some plain notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Markdown, "just some plain notes") {
		t.Errorf("markdown = %q", result.Markdown)
	}
	if result.Metadata.TotalWords != 4 {
		t.Errorf("TotalWords = %d, want 4", result.Metadata.TotalWords)
	}
}

func TestUniversalConvertLatin1Text(t *testing.T) {
	// "café" in ISO-8859-1: the 0xe9 byte is invalid UTF-8.
	path := filepath.Join(t.TempDir(), "latin.txt")
	if err := os.WriteFile(path, []byte{'c', 'a', 'f', 0xe9}, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Markdown, "caf") {
		t.Errorf("decoded text lost: %q", result.Markdown)
	}
	if strings.ContainsRune(result.Markdown, '\uFFFD') {
		t.Errorf("replacement character in decoded output: %q", result.Markdown)
	}
}

func TestUniversalConvertEPUB(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []struct{ name, content string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0"?>
<container><rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`},
		{"OEBPS/content.opf", `<?xml version="1.0"?>
<package>
  <metadata>
    <dc:title xmlns:dc="http://purl.org/dc/elements/1.1/">Sample Book</dc:title>
    <dc:creator xmlns:dc="http://purl.org/dc/elements/1.1/">Jane Writer</dc:creator>
  </metadata>
  <manifest>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
  </spine>
</package>`},
		{"OEBPS/chapter1.xhtml", `<html><body><h1>Chapter One</h1><p>It begins.</p></body></html>`},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewUniversalConverter(DefaultConfig())
	result, err := c.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if result.Metadata.Title != "Sample Book" {
		t.Errorf("Title = %q, want Sample Book", result.Metadata.Title)
	}
	if result.Metadata.Author != "Jane Writer" {
		t.Errorf("Author = %q, want Jane Writer", result.Metadata.Author)
	}
	for _, want := range []string{"# Sample Book", "Chapter One", "It begins."} {
		if !strings.Contains(result.Markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, result.Markdown)
		}
	}
}
