// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

// Package location splits object-store URIs such as s3://bucket/path/to/file.csv into the container and key that a
// storage gateway understands.
package location

import "strings"

const schemeSep = "://"

// Location identifies an object by the scheme it was addressed with, the container (bucket) it lives in, and its
// key within that container.
type Location struct {
	Scheme    string `json:"scheme,omitempty"`
	Container string `json:"container"`
	Key       string `json:"key"`
}

// Parse strips the scheme prefix from uri, takes the first path segment as the container and rejoins the remaining
// segments with "/" as the key. A uri with no remaining segments has an empty key.
//
// Parse performs no validation: a malformed uri produces a plausible but wrong split rather than an error.
func Parse(uri string) Location {
	var loc Location
	rest := uri
	if i := strings.Index(uri, schemeSep); i >= 0 {
		loc.Scheme = uri[:i]
		rest = uri[i+len(schemeSep):]
	}

	container, key, _ := strings.Cut(rest, "/")
	loc.Container = container
	loc.Key = key
	return loc
}

// Path rejoins the container and key. It is the exact inverse of the split performed by Parse, so for a plain
// filesystem path it returns the path unchanged.
func (l Location) Path() string {
	if l.Key == "" {
		return l.Container
	}
	return l.Container + "/" + l.Key
}

// String renders the Location back into URI form.
func (l Location) String() string {
	if l.Scheme == "" {
		return l.Path()
	}
	return l.Scheme + schemeSep + l.Path()
}
