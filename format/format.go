// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

// Package format decodes the supported file formats into structures the redact package can walk, and encodes them
// back to bytes. The adapter for a file is chosen by its extension.
package format

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pii-obfuscator/obfuscator/redact"
)

// Adapter decodes one file format.
type Adapter interface {
	// Name is the short, lower-case name of the format, e.g. "csv".
	Name() string
	// Decode parses data. It fails with a FormatError when data is not valid for the format.
	Decode(data []byte) (Document, error)
}

// Document is a decoded file that can be redacted in place and encoded back into its format.
type Document interface {
	// Redact replaces the values of fields and returns how many values were replaced.
	Redact(fields redact.Fields) int
	Encode() ([]byte, error)
}

var adapters = map[string]Adapter{
	".csv":     CSV{},
	".json":    JSON{},
	".parquet": Parquet{},
	".yaml":    YAML{},
	".yml":     YAML{},
}

// ForPath returns the adapter for the extension of p, which may be a filesystem path, an object key or a full URI.
// Matching is case-insensitive.
func ForPath(p string) (Adapter, error) {
	ext := strings.ToLower(path.Ext(p))
	a, ok := adapters[ext]
	if !ok {
		return nil, UnsupportedFormatError{path: p, ext: ext}
	}
	return a, nil
}

// Extensions lists the supported file extensions.
func Extensions() []string {
	exts := make([]string, 0, len(adapters))
	for ext := range adapters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

type UnsupportedFormatError struct {
	path string
	ext  string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format, path=%s, extension=%q, supported=%s",
		e.path, e.ext, strings.Join(Extensions(), ","))
}

type FormatError struct {
	format string
	err    error
}

func (e FormatError) Error() string {
	return fmt.Sprintf("unable to decode %s, err=%s", e.format, e.err.Error())
}

func (e FormatError) Unwrap() error {
	return e.err
}

// ErrInvalidUTF8 is wrapped by the FormatError of a text format whose input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// checkUTF8 reports the offset of the first byte that is not part of a valid UTF-8 sequence.
func checkUTF8(data []byte) error {
	if utf8.Valid(data) {
		return nil
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("%w, offset=%d", ErrInvalidUTF8, i)
		}
		i += size
	}
	return ErrInvalidUTF8
}
