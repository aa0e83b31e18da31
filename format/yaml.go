// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"bytes"
	"fmt"

	"github.com/pii-obfuscator/obfuscator/redact"
	"gopkg.in/yaml.v3"
)

// YAML reads a single YAML document. Mapping order survives the round trip; comments and anchors do not, since
// aliases are expanded into copies of the value they refer to.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (y YAML) Decode(data []byte) (Document, error) {
	if err := checkUTF8(data); err != nil {
		return nil, FormatError{format: y.Name(), err: err}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, FormatError{format: y.Name(), err: err}
	}

	// An empty stream is a null document.
	root := redact.NewNull()
	if doc.Kind != 0 {
		var err error
		root, err = fromYAML(&doc)
		if err != nil {
			return nil, FormatError{format: y.Name(), err: err}
		}
	}
	return &treeDocument{root: root, encode: encodeYAML}, nil
}

func fromYAML(n *yaml.Node) (*redact.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return redact.NewNull(), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		obj := redact.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: only scalar mapping keys are supported", k.Line)
			}
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := redact.NewArray()
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return redact.NewNull(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return redact.NewBool(b), nil
		case "!!int", "!!float":
			return redact.NewNumber(n.Value), nil
		case "!!str":
			return redact.NewString(n.Value), nil
		default:
			// !!timestamp, !!binary and application tags keep their tag so unredacted values keep their type.
			s := redact.NewString(n.Value)
			s.Tag = n.ShortTag()
			return s, nil
		}
	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node kind %d", n.Line, n.Kind)
	}
}

func toYAML(n *redact.Node) *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}

	switch n.Kind {
	case redact.String:
		tag := n.Tag
		if tag == "" {
			tag = "!!str"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.Scalar}
	case redact.Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: n.Scalar}
	case redact.Bool:
		v := "false"
		if n.Truth {
			v = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
	case redact.Object:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range n.Keys() {
			v, _ := n.Get(k)
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toYAML(v))
		}
		return m
	case redact.Array:
		s := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			s.Content = append(s.Content, toYAML(item))
		}
		return s
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func encodeYAML(root *redact.Node) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(root)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
