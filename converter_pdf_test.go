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
	"image/png"
	"testing"
)

func TestEncodeImageSamplesGray(t *testing.T) {
	width, height := 4, 3
	samples := make([]byte, width*height)
	for i := range samples {
		samples[i] = byte(i * 20)
	}

	img, ok := encodeImageSamples(samples, width, height, 1)
	if !ok {
		t.Fatal("grayscale samples not encoded")
	}
	if img.Format != "png" || img.Width != width || img.Height != height {
		t.Errorf("image = %s %dx%d, want png %dx%d", img.Format, img.Width, img.Height, width, height)
	}

	raw, err := base64.StdEncoding.DecodeString(img.Base64Data)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if img.SizeBytes != len(raw) {
		t.Errorf("SizeBytes = %d, want %d", img.SizeBytes, len(raw))
	}

	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != width || decoded.Bounds().Dy() != height {
		t.Errorf("decoded bounds = %v", decoded.Bounds())
	}
	r, _, _, _ := decoded.At(1, 0).RGBA()
	if byte(r>>8) != 20 {
		t.Errorf("pixel (1,0) = %d, want 20", r>>8)
	}
}

func TestEncodeImageSamplesRGB(t *testing.T) {
	// One red and one blue pixel.
	samples := []byte{0xff, 0, 0, 0, 0, 0xff}

	img, ok := encodeImageSamples(samples, 2, 1, 3)
	if !ok {
		t.Fatal("RGB samples not encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(img.Base64Data)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a valid PNG: %v", err)
	}

	r, g, b, _ := decoded.At(0, 0).RGBA()
	if byte(r>>8) != 0xff || g != 0 || b != 0 {
		t.Errorf("pixel (0,0) = (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
	_, _, b, _ = decoded.At(1, 0).RGBA()
	if byte(b>>8) != 0xff {
		t.Errorf("pixel (1,0) blue = %d, want 255", b>>8)
	}
}

func TestEncodeImageSamplesUnsupportedComponents(t *testing.T) {
	if _, ok := encodeImageSamples(make([]byte, 8), 2, 1, 4); ok {
		t.Error("CMYK-like sample layout should be rejected")
	}
}
