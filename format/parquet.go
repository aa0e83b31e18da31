// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"bytes"
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/pii-obfuscator/obfuscator/redact"
)

// Parquet reads a Parquet file into an Arrow table. Redaction is column-wise: every value of a PII column is
// overwritten, and the column becomes a string column.
type Parquet struct{}

func (Parquet) Name() string { return "parquet" }

func (p Parquet) Decode(data []byte) (Document, error) {
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(data),
		parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, FormatError{format: p.Name(), err: err}
	}
	return &tableDocument{table: tbl, mem: mem}, nil
}

// tableDocument buffers come from the Go allocator, so tables that are replaced are left to the garbage collector
// rather than released.
type tableDocument struct {
	table arrow.Table
	mem   memory.Allocator
}

func (d *tableDocument) columnNames() []string {
	fields := d.table.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func (d *tableDocument) Redact(fields redact.Fields) int {
	names := d.columnNames()
	targets := redact.Columns(names, fields)
	if len(targets) == 0 {
		return 0
	}

	rows := d.table.NumRows()
	marker := markerArray(d.mem, rows)

	outFields := make([]arrow.Field, len(names))
	copy(outFields, d.table.Schema().Fields())
	data := make([][]arrow.Array, len(names))
	for i := range names {
		data[i] = d.table.Column(i).Data().Chunks()
	}
	for _, i := range targets {
		outFields[i] = arrow.Field{Name: names[i], Type: arrow.BinaryTypes.String, Nullable: outFields[i].Nullable}
		data[i] = []arrow.Array{marker}
	}

	// The original schema metadata describes the original column types, so it is not carried over.
	d.table = array.NewTableFromSlice(arrow.NewSchema(outFields, nil), data)
	return len(targets) * int(rows)
}

func (d *tableDocument) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	props := parquet.NewWriterProperties(parquet.WithAllocator(d.mem))
	// One row group for the whole table; the chunk size must be positive even for an empty table.
	chunkSize := max(d.table.NumRows(), 1)
	if err := pqarrow.WriteTable(d.table, buf, chunkSize, props, pqarrow.DefaultWriterProps()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func markerArray(mem memory.Allocator, rows int64) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.Reserve(int(rows))
	for i := int64(0); i < rows; i++ {
		b.Append(redact.Marker)
	}
	return b.NewArray()
}
