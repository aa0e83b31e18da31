// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package redact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	Null Kind = iota
	String
	Number
	Bool
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one value of a semi-structured document. Which fields are meaningful depends on Kind:
// Scalar holds a String's value or a Number's literal text, Truth holds a Bool, Members holds an Object's
// key/value pairs in insertion order and Items holds an Array's elements. The zero Node is null.
//
// Tag is the source tag of a String decoded from a typed scalar (e.g. a YAML !!timestamp); it is empty for plain
// strings and is dropped when the value is redacted.
type Node struct {
	Kind    Kind
	Scalar  string
	Tag     string
	Truth   bool
	Members *orderedmap.OrderedMap[string, *Node]
	Items   []*Node
}

func NewNull() *Node { return &Node{Kind: Null} }

func NewString(s string) *Node { return &Node{Kind: String, Scalar: s} }

// NewNumber keeps the literal text of a number, so that re-encoding reproduces it exactly.
func NewNumber(literal string) *Node { return &Node{Kind: Number, Scalar: literal} }

func NewBool(b bool) *Node { return &Node{Kind: Bool, Truth: b} }

func NewObject() *Node {
	return &Node{Kind: Object, Members: orderedmap.New[string, *Node]()}
}

func NewArray(items ...*Node) *Node {
	return &Node{Kind: Array, Items: items}
}

// Set adds or replaces a member of an Object. A replaced member keeps its original position.
func (n *Node) Set(key string, v *Node) {
	if n.Members == nil {
		n.Members = orderedmap.New[string, *Node]()
	}
	n.Members.Set(key, v)
}

// Get returns a member of an Object.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind != Object || n.Members == nil {
		return nil, false
	}
	return n.Members.Get(key)
}

// Keys returns an Object's member names in insertion order.
func (n *Node) Keys() []string {
	if n.Kind != Object || n.Members == nil {
		return nil
	}
	keys := make([]string, 0, n.Members.Len())
	for pair := n.Members.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON renders the node as compact JSON, preserving member order and number literals.
func (n *Node) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeJSON(buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes any JSON value into the node, keeping object member order.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after top-level value")
	}
	*n = *v
	return nil
}

func decodeJSON(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not a string", kt)
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			// closing '}'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		return NewString(v), nil
	case json.Number:
		return NewNumber(v.String()), nil
	case bool:
		return NewBool(v), nil
	case nil:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

func writeJSON(buf *bytes.Buffer, n *Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case Null:
		buf.WriteString("null")
	case String:
		return writeJSONString(buf, n.Scalar)
	case Number:
		buf.WriteString(n.Scalar)
	case Bool:
		if n.Truth {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Object:
		buf.WriteByte('{')
		first := true
		for pair := oldest(n); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case Array:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("cannot encode node of kind %s", n.Kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func oldest(n *Node) *orderedmap.Pair[string, *Node] {
	if n.Members == nil {
		return nil
	}
	return n.Members.Oldest()
}
