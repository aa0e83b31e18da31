// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

// Package redact replaces the values of caller-designated PII fields with a fixed marker.
//
// Every shape of data (flat rows, nested documents and tables) follows the same primary-key rule: the first field a
// record declares identifies the record and is never redacted, even when its name is one of the PII fields.
package redact

import (
	"sort"
)

// Marker replaces every redacted value, regardless of the value's original type.
const Marker = "***"

// Fields is the set of field names whose values must be redacted.
type Fields map[string]struct{}

// NewFields builds a Fields set from names. Duplicates collapse and order is irrelevant.
func NewFields(names ...string) Fields {
	f := make(Fields, len(names))
	for _, n := range names {
		f[n] = struct{}{}
	}
	return f
}

// Has reports whether name is a PII field.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Record is a flat row. Values[i] belongs to Columns[i], and Columns[0] is the row's primary key.
type Record struct {
	Columns []string
	Values  []string
}

// Get returns the value of the named column.
func (r Record) Get(name string) (string, bool) {
	for i, c := range r.Columns {
		if c == name && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return "", false
}

// Row replaces the value of every column named in fields with Marker, except the first column. The record is mutated
// and returned.
func Row(r Record, fields Fields) Record {
	for i, c := range r.Columns {
		if i == 0 || i >= len(r.Values) {
			continue
		}
		if fields.Has(c) {
			r.Values[i] = Marker
		}
	}
	return r
}

// Columns returns the indexes of the columns in names that must be overwritten for fields. The first column is the
// table's primary key and is never returned.
func Columns(names []string, fields Fields) []int {
	var idx []int
	for i, n := range names {
		if i > 0 && fields.Has(n) {
			idx = append(idx, i)
		}
	}
	return idx
}
