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
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// FileNotFoundError is returned when the input path does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return fs.ErrNotExist }

// UndeterminedTypeError is returned when no detection rule matches the file.
// The message enumerates the supported types so the caller can self-correct.
type UndeterminedTypeError struct {
	Path      string
	Supported []FileType
}

func (e *UndeterminedTypeError) Error() string {
	types := make([]string, len(e.Supported))
	for i, t := range e.Supported {
		types[i] = string(t)
	}
	return fmt.Sprintf("could not determine file type for %s (supported types: %s)",
		e.Path, strings.Join(types, ", "))
}

// UnsupportedFormatError is returned when the file type was recognized but
// no converter at all is registered for it.
type UnsupportedFormatError struct {
	Path string
	Type FileType
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("no converter registered for file type %q (%s)", e.Type, e.Path)
}

// NoConverterError is returned when the file type is supported but the
// resolved strategy has no registered converter. The message lists every
// other strategy registered for the type; callers rely on that enumeration.
type NoConverterError struct {
	Type       FileType
	Strategy   Strategy
	Registered []Strategy
}

func (e *NoConverterError) Error() string {
	names := make([]string, len(e.Registered))
	for i, s := range e.Registered {
		names[i] = string(s)
	}
	return fmt.Sprintf("no converter available for strategy %q on file type %q (registered strategies: %s)",
		e.Strategy, e.Type, strings.Join(names, ", "))
}

// ConversionError is returned when a converter was invoked but failed. The
// underlying cause is preserved for diagnostics. Conversions are never
// retried automatically.
type ConversionError struct {
	Converter string
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed (%s): %v", e.Converter, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// IsFileNotFound reports whether the error is a FileNotFoundError.
func IsFileNotFound(err error) bool {
	var target *FileNotFoundError
	return errors.As(err, &target)
}

// IsNoConverter reports whether the error is a NoConverterError.
func IsNoConverter(err error) bool {
	var target *NoConverterError
	return errors.As(err, &target)
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError
// or an UndeterminedTypeError.
func IsUnsupportedFormat(err error) bool {
	var unsupported *UnsupportedFormatError
	var undetermined *UndeterminedTypeError
	return errors.As(err, &unsupported) || errors.As(err, &undetermined)
}
