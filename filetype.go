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
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileType is the canonical format classification assigned to an input file.
// It is a closed enumeration: new values are added only together with new
// detection rules.
type FileType string

const (
	TypeUnknown FileType = ""
	TypePDF     FileType = "pdf"
	TypeHTML    FileType = "html"
	TypeDOCX    FileType = "docx"
	TypeXLSX    FileType = "xlsx"
	TypeXLS     FileType = "xls"
	TypePPTX    FileType = "pptx"
	TypeEPUB    FileType = "epub"
	TypeZIP     FileType = "zip"
	TypeCSV     FileType = "csv"
	TypeJSON    FileType = "json"
	TypeXML     FileType = "xml"
	TypeText    FileType = "text"
	TypeImage   FileType = "image"
	TypeAudio   FileType = "audio"
)

// extensionTypes maps file extensions to their type.
var extensionTypes = map[string]FileType{
	".pdf":      TypePDF,
	".docx":     TypeDOCX,
	".xlsx":     TypeXLSX,
	".xls":      TypeXLS,
	".pptx":     TypePPTX,
	".html":     TypeHTML,
	".htm":      TypeHTML,
	".jpg":      TypeImage,
	".jpeg":     TypeImage,
	".png":      TypeImage,
	".gif":      TypeImage,
	".bmp":      TypeImage,
	".tiff":     TypeImage,
	".tif":      TypeImage,
	".webp":     TypeImage,
	".wav":      TypeAudio,
	".mp3":      TypeAudio,
	".m4a":      TypeAudio,
	".flac":     TypeAudio,
	".ogg":      TypeAudio,
	".epub":     TypeEPUB,
	".json":     TypeJSON,
	".jsonl":    TypeJSON,
	".xml":      TypeXML,
	".rss":      TypeXML,
	".atom":     TypeXML,
	".csv":      TypeCSV,
	".zip":      TypeZIP,
	".txt":      TypeText,
	".text":     TypeText,
	".md":       TypeText,
	".markdown": TypeText,
}

// mimeTypes maps sniffed MIME types to file types.
var mimeTypes = map[string]FileType{
	"application/pdf": TypePDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   TypeDOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         TypeXLSX,
	"application/vnd.ms-excel":                                                  TypeXLS,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": TypePPTX,
	"text/html":             TypeHTML,
	"image/jpeg":            TypeImage,
	"image/png":             TypeImage,
	"image/gif":             TypeImage,
	"image/bmp":             TypeImage,
	"image/tiff":            TypeImage,
	"image/webp":            TypeImage,
	"audio/wav":             TypeAudio,
	"audio/x-wav":           TypeAudio,
	"audio/mpeg":            TypeAudio,
	"audio/mp4":             TypeAudio,
	"audio/flac":            TypeAudio,
	"audio/ogg":             TypeAudio,
	"application/epub+zip":  TypeEPUB,
	"application/rss+xml":   TypeXML,
	"application/atom+xml":  TypeXML,
	"application/json":      TypeJSON,
	"application/xml":       TypeXML,
	"text/xml":              TypeXML,
	"text/csv":              TypeCSV,
	"text/plain":            TypeText,
	"text/markdown":         TypeText,
	"application/zip":       TypeZIP,
}

// zipSignature is the shared outer signature of all ZIP-container formats
// (DOCX, XLSX, PPTX, EPUB, plain ZIP).
var zipSignature = []byte("PK\x03\x04")

// magicEntry pairs a file type with its byte signatures. Kept as an ordered
// slice so content-only detection is deterministic.
type magicEntry struct {
	fileType   FileType
	signatures [][]byte
}

var magicSignatures = []magicEntry{
	{TypePDF, [][]byte{[]byte("%PDF-")}},
	{TypeImage, [][]byte{
		{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
		{0xff, 0xd8, 0xff},
		[]byte("GIF87a"), []byte("GIF89a"),
		[]byte("BM"),
		[]byte("II*\x00"), []byte("MM\x00*"),
	}},
	{TypeAudio, [][]byte{
		[]byte("RIFF"),
		[]byte("ID3"),
		{0xff, 0xfb}, {0xff, 0xf3}, {0xff, 0xf2},
		[]byte("fLaC"),
		[]byte("OggS"),
	}},
	{TypeHTML, [][]byte{[]byte("<!DOCTYPE"), []byte("<!doctype"), []byte("<html"), []byte("<HTML")}},
	// All ZIP-container formats share this entry; a match triggers container
	// disambiguation.
	{TypeZIP, [][]byte{zipSignature}},
	{TypeXML, [][]byte{[]byte("<?xml")}},
}

// magicFor returns the signatures to verify an extension-derived type
// against, or nil when the type has no known signature.
func magicFor(t FileType) [][]byte {
	switch t {
	case TypeDOCX, TypeXLSX, TypePPTX, TypeEPUB, TypeZIP:
		return [][]byte{zipSignature}
	}
	for _, e := range magicSignatures {
		if e.fileType == t {
			return e.signatures
		}
	}
	return nil
}

// htmlMarkers are case-insensitive tokens used by the content-heuristic
// fallback stage.
var htmlMarkers = []string{"<!doctype", "<html", "<head", "<body", "<div"}

// Detector classifies files using extension, MIME sniffing, magic bytes and
// content heuristics, in that order. Detection is a pure function of the
// file's name and content: calling it twice on an unchanged file returns the
// same type.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the FileType of the file at path. It returns a
// FileNotFoundError when the path does not exist and an
// UndeterminedTypeError when no rule matches.
func (d *Detector) Detect(path string) (FileType, error) {
	if _, err := os.Stat(path); err != nil {
		return TypeUnknown, &FileNotFoundError{Path: path}
	}

	header := readHeader(path, 512)

	// Stage 1: extension lookup, verified by magic bytes where a signature
	// for the type is known. A failed verification does not reject the
	// file; the extension type is only a candidate and detection continues.
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		if matchesMagic(header, magicFor(t)) {
			return t, nil
		}
	}

	// Stage 2: MIME sniffing. Sniffed text types carry a charset parameter
	// ("text/csv; charset=utf-8"); the lookup uses the bare media type.
	if mtype, err := mimetype.DetectFile(path); err == nil {
		mime := mtype.String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = strings.TrimSpace(mime[:i])
		}
		if t, ok := mimeTypes[mime]; ok {
			if t == TypeZIP {
				return resolveZipContainer(path), nil
			}
			return t, nil
		}
	}

	// Stage 3: magic bytes alone. A ZIP signature is ambiguous between the
	// container formats and is resolved by inspecting the archive listing.
	for _, e := range magicSignatures {
		for _, sig := range e.signatures {
			if bytes.HasPrefix(header, sig) {
				if e.fileType == TypeZIP {
					return resolveZipContainer(path), nil
				}
				return e.fileType, nil
			}
		}
	}

	// Stage 4: content heuristic. Decode the head as text and look for
	// markup tokens.
	if t, ok := sniffContent(path); ok {
		return t, nil
	}

	return TypeUnknown, &UndeterminedTypeError{Path: path, Supported: SupportedTypes()}
}

// SupportedTypes returns every type the detector can assign, sorted.
func SupportedTypes() []FileType {
	seen := make(map[FileType]bool)
	for _, t := range extensionTypes {
		seen[t] = true
	}
	types := make([]FileType, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// readHeader reads up to n leading bytes of the file. Errors degrade to an
// empty header; later stages then simply fail to match.
func readHeader(path string, n int) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]byte, n)
	read, _ := f.Read(buf)
	return buf[:read]
}

// matchesMagic reports whether the header starts with any of the
// signatures. An empty signature list means there is nothing to verify
// against, so the candidate passes.
func matchesMagic(header []byte, signatures [][]byte) bool {
	if len(signatures) == 0 {
		return true
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig) {
			return true
		}
	}
	return false
}

// resolveZipContainer distinguishes the ZIP-based formats by the archive's
// internal layout: word-processing marker, then spreadsheet, then
// presentation, then the EPUB mimetype entry, then [Content_Types].xml
// hints, otherwise plain archive.
func resolveZipContainer(path string) FileType {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return TypeZIP
	}
	defer zr.Close()

	var hasWord, hasXL, hasPPT bool
	var mimetypeEntry, contentTypes *zip.File

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			hasWord = true
		case strings.HasPrefix(f.Name, "xl/"):
			hasXL = true
		case strings.HasPrefix(f.Name, "ppt/"):
			hasPPT = true
		case f.Name == "mimetype":
			mimetypeEntry = f
		case f.Name == "[Content_Types].xml":
			contentTypes = f
		}
	}

	switch {
	case hasWord:
		return TypeDOCX
	case hasXL:
		return TypeXLSX
	case hasPPT:
		return TypePPTX
	}

	if mimetypeEntry != nil {
		if data, err := readZipEntry(mimetypeEntry); err == nil {
			if strings.TrimSpace(string(data)) == "application/epub+zip" {
				return TypeEPUB
			}
		}
	}

	if contentTypes != nil {
		if data, err := readZipEntry(contentTypes); err == nil {
			content := string(data)
			switch {
			case strings.Contains(content, "wordprocessingml"):
				return TypeDOCX
			case strings.Contains(content, "spreadsheetml"):
				return TypeXLSX
			case strings.Contains(content, "presentationml"):
				return TypePPTX
			}
		}
	}

	return TypeZIP
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sniffContent reads the head of the file as text and looks for markup
// tokens indicating a web document.
func sniffContent(path string) (FileType, bool) {
	head := readHeader(path, 1024)
	if len(head) == 0 {
		return TypeUnknown, false
	}

	content := strings.ToLower(string(head))
	for _, marker := range htmlMarkers {
		if strings.Contains(content, marker) {
			return TypeHTML, true
		}
	}
	return TypeUnknown, false
}
