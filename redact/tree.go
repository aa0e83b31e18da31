// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package redact

// Tree redacts a nested document in place and returns the number of values replaced.
//
// Within an Object, a String or Number member whose key is in fields becomes the string Marker; a Number therefore
// turns into a string. Bool and Null members are left alone, and Object or Array members are walked whatever their
// key, so a container is never replaced itself. The first member of a top-level Object is the document's primary key
// and is exempt. The same key nested deeper is not exempt. The elements of a top-level Array are each treated as a
// top-level record.
func Tree(root *Node, fields Fields) int {
	return walk(root, fields, true)
}

func walk(n *Node, fields Fields, top bool) int {
	if n == nil {
		return 0
	}

	var count int
	switch n.Kind {
	case Object:
		first := true
		for pair := oldest(n); pair != nil; pair = pair.Next() {
			exempt := top && first
			first = false

			v := pair.Value
			if v == nil {
				continue
			}
			switch v.Kind {
			case String, Number:
				if !exempt && fields.Has(pair.Key) {
					*v = Node{Kind: String, Scalar: Marker}
					count++
				}
			case Object, Array:
				count += walk(v, fields, false)
			case Bool, Null:
			}
		}
	case Array:
		for _, item := range n.Items {
			count += walk(item, fields, top)
		}
	case String, Number, Bool, Null:
	}
	return count
}
