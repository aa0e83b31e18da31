// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"bytes"
	"encoding/json"

	"github.com/pii-obfuscator/obfuscator/redact"
)

// JSON reads any JSON document. Object member order and number literals survive the round trip.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (j JSON) Decode(data []byte) (Document, error) {
	if err := checkUTF8(data); err != nil {
		return nil, FormatError{format: j.Name(), err: err}
	}
	root := new(redact.Node)
	if err := json.Unmarshal(data, root); err != nil {
		return nil, FormatError{format: j.Name(), err: err}
	}
	return &treeDocument{root: root, encode: encodeJSON}, nil
}

// treeDocument is a decoded semi-structured document, shared by the JSON and YAML adapters.
type treeDocument struct {
	root   *redact.Node
	encode func(*redact.Node) ([]byte, error)
}

func (d *treeDocument) Redact(fields redact.Fields) int {
	return redact.Tree(d.root, fields)
}

func (d *treeDocument) Encode() ([]byte, error) {
	return d.encode(d.root)
}

func encodeJSON(root *redact.Node) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
