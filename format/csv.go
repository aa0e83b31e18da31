// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/pii-obfuscator/obfuscator/redact"
)

// CSV reads comma-separated text whose first row is the header.
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (c CSV) Decode(data []byte) (Document, error) {
	if err := checkUTF8(data); err != nil {
		return nil, FormatError{format: c.Name(), err: err}
	}
	r := &csvReader{Reader: csv.NewReader(bytes.NewReader(data)), data: data}

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &csvDocument{}, nil
	}
	if err != nil {
		return nil, FormatError{format: c.Name(), err: err}
	}

	doc := &csvDocument{header: header}
	for {
		values, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, FormatError{format: c.Name(), err: err}
		}
		doc.rows = append(doc.rows, redact.Record{Columns: header, Values: values})
	}
	return doc, nil
}

// csvReader restores the carriage returns that csv.Reader drops from line breaks inside quoted fields, so those
// values survive the round trip byte for byte.
type csvReader struct {
	*csv.Reader
	data  []byte
	lines []int // offset of the start of each line, built on first use
}

func (r *csvReader) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err != nil {
		return nil, err
	}
	for i, v := range record {
		if !strings.Contains(v, "\n") {
			continue
		}
		line, col := r.FieldPos(i)
		if raw, ok := unquote(r.data, r.offset(line, col)); ok {
			record[i] = raw
		}
	}
	return record, nil
}

// offset converts the 1-based line and byte column reported by FieldPos into an offset into data.
func (r *csvReader) offset(line, col int) int {
	if r.lines == nil {
		r.lines = []int{0}
		for i, b := range r.data {
			if b == '\n' {
				r.lines = append(r.lines, i+1)
			}
		}
	}
	if line < 1 || line > len(r.lines) {
		return -1
	}
	return r.lines[line-1] + col - 1
}

// unquote returns the value of the quoted field starting at off, exactly as written.
func unquote(data []byte, off int) (string, bool) {
	if off < 0 || off >= len(data) || data[off] != '"' {
		return "", false
	}
	var b strings.Builder
	for i := off + 1; i < len(data); i++ {
		if data[i] != '"' {
			b.WriteByte(data[i])
			continue
		}
		if i+1 < len(data) && data[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		return b.String(), true
	}
	return "", false
}

type csvDocument struct {
	header []string
	rows   []redact.Record
}

func (d *csvDocument) Redact(fields redact.Fields) int {
	for i := range d.rows {
		d.rows[i] = redact.Row(d.rows[i], fields)
	}
	return len(redact.Columns(d.header, fields)) * len(d.rows)
}

func (d *csvDocument) Encode() ([]byte, error) {
	if d.header == nil {
		return []byte{}, nil
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := writeRecord(w, buf, d.header); err != nil {
		return nil, err
	}
	for _, row := range d.rows {
		if err := writeRecord(w, buf, row.Values); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeRecord writes a record holding a single empty value as "" because csv.Writer would emit a blank line, which
// readers skip.
func writeRecord(w *csv.Writer, buf *bytes.Buffer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return w.Write(record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	_, err := buf.WriteString("\"\"\n")
	return err
}
