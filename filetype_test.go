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
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeZipContainer builds a minimal ZIP archive containing the given
// entries, for container-format disambiguation tests.
func writeZipContainer(t *testing.T, name string, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for entryName, content := range entries {
		w, err := zw.Create(entryName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeNamedFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectMissingFile(t *testing.T) {
	d := NewDetector()
	_, err := d.Detect(filepath.Join(t.TempDir(), "nope.pdf"))
	var notFound *FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected FileNotFoundError, got %T: %v", err, err)
	}
}

func TestDetectByExtensionWithMagic(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name    string
		content []byte
		want    FileType
	}{
		{"doc.pdf", []byte("%PDF-1.7\n..."), TypePDF},
		{"pic.png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, TypeImage},
		{"page.html", []byte("<!DOCTYPE html><html></html>"), TypeHTML},
		{"notes.txt", []byte("plain text, no magic"), TypeText},
		{"data.csv", []byte("a,b,c\n1,2,3\n"), TypeCSV},
		{"feed.xml", []byte("<?xml version=\"1.0\"?><rss></rss>"), TypeXML},
	}
	for _, tt := range tests {
		path := writeNamedFile(t, tt.name, tt.content)
		got, err := d.Detect(path)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: Detect = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDetectWrongExtensionFallsThrough(t *testing.T) {
	d := NewDetector()

	// A PDF body behind a .png extension: the extension's magic check
	// fails and content-based stages classify it.
	path := writeNamedFile(t, "mislabeled.png", []byte("%PDF-1.4\nbody"))
	got, err := d.Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != TypePDF {
		t.Errorf("Detect = %q, want pdf from content", got)
	}
}

func TestDetectZipContainers(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name    string
		entries map[string]string
		want    FileType
	}{
		{
			"report.bin",
			map[string]string{
				"[Content_Types].xml": `<Types><Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
				"word/document.xml":   "<document/>",
			},
			TypeDOCX,
		},
		{
			"sheet.bin",
			map[string]string{
				"[Content_Types].xml": `<Types><Override ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/></Types>`,
				"xl/workbook.xml":     "<workbook/>",
			},
			TypeXLSX,
		},
		{
			"slides.bin",
			map[string]string{
				"[Content_Types].xml":  `<Types><Override ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/></Types>`,
				"ppt/presentation.xml": "<presentation/>",
			},
			TypePPTX,
		},
		{
			"book.bin",
			map[string]string{
				"mimetype":               "application/epub+zip",
				"META-INF/container.xml": "<container/>",
			},
			TypeEPUB,
		},
		{
			"archive.bin",
			map[string]string{
				"readme.txt": "just files",
			},
			TypeZIP,
		},
	}
	for _, tt := range tests {
		path := writeZipContainer(t, tt.name, tt.entries)
		got, err := d.Detect(path)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: Detect = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDetectHTMLContentSniff(t *testing.T) {
	d := NewDetector()
	path := writeNamedFile(t, "noext", []byte("  \n<html><body>hi</body></html>"))
	got, err := d.Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != TypeHTML {
		t.Errorf("Detect = %q, want html from content sniff", got)
	}
}

func TestDetectUndetermined(t *testing.T) {
	d := NewDetector()
	path := writeNamedFile(t, "blob", []byte{0x00, 0x01, 0x02, 0x03, 0x7f, 0x80, 0xfe})
	_, err := d.Detect(path)
	var undetermined *UndeterminedTypeError
	if !errors.As(err, &undetermined) {
		t.Fatalf("expected UndeterminedTypeError, got %T: %v", err, err)
	}
	if len(undetermined.Supported) == 0 {
		t.Error("UndeterminedTypeError should list supported types")
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := NewDetector()
	path := writeNamedFile(t, "doc.pdf", []byte("%PDF-1.5\ncontent"))

	first, err := d.Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		got, err := d.Detect(path)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("detection not deterministic: %q then %q", first, got)
		}
	}
}

func TestSupportedTypesSorted(t *testing.T) {
	types := SupportedTypes()
	if len(types) == 0 {
		t.Fatal("no supported types")
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Fatalf("SupportedTypes not sorted or not unique: %v", types)
		}
	}
}
