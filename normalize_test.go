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
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "crlf to lf",
			in:   "line one\r\nline two\rline three\n",
			want: "line one\nline two\nline three",
		},
		{
			name: "strip control characters",
			in:   "before\x00\x07after\tkeep\ttabs",
			want: "beforeafter\tkeep\ttabs",
		},
		{
			name: "trailing whitespace removed",
			in:   "heading   \nbody\t\nlast  ",
			want: "heading\nbody\nlast",
		},
		{
			name: "collapse blank line runs",
			in:   "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "trim surrounding whitespace",
			in:   "\n\n  content  \n\n",
			want: "content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeOutput(tt.in)
			if got != tt.want {
				t.Errorf("normalizeOutput(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeOutputInvalidUTF8(t *testing.T) {
	in := "valid " + string([]byte{0xff, 0xfe}) + " text"
	got := normalizeOutput(in)
	if !utf8.ValidString(got) {
		t.Error("output must be valid UTF-8")
	}
	if !strings.Contains(got, "valid") || !strings.Contains(got, "text") {
		t.Errorf("valid portions lost: %q", got)
	}
}
