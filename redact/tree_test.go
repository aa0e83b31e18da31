// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package redact

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, doc string) *Node {
	t.Helper()
	var n Node
	require.NoError(t, json.Unmarshal([]byte(doc), &n))
	return &n
}

func render(t *testing.T, n *Node) string {
	t.Helper()
	bts, err := n.MarshalJSON()
	require.NoError(t, err)
	return string(bts)
}

func TestTree(t *testing.T) {
	tcs := []struct {
		name   string
		doc    string
		fields []string
		expect string
		count  int
	}{
		{
			name:   "empty object",
			doc:    `{}`,
			fields: []string{"name"},
			expect: `{}`,
		},
		{
			name:   "no fields passes the document through undisturbed",
			doc:    `{"id":1,"hello":"there","array":["one","two"],"m":{"ello":"hthere"}}`,
			expect: `{"id":1,"hello":"there","array":["one","two"],"m":{"ello":"hthere"}}`,
		},
		{
			name:   "top-level first key is exempt and nested duplicate is not",
			doc:    `{"id":7,"name":"Jane","details":{"name":"Jane","phone":"555"}}`,
			fields: []string{"name", "phone"},
			expect: `{"id":7,"name":"***","details":{"name":"***","phone":"***"}}`,
			count:  3,
		},
		{
			name:   "first key is exempt even when it is a PII field",
			doc:    `{"name":"Jane Ford","email":"jane@example.com","details":{"phone":"1234567890","address":"123 Main St"}}`,
			fields: []string{"name", "email", "phone"},
			expect: `{"name":"Jane Ford","email":"***","details":{"phone":"***","address":"123 Main St"}}`,
			count:  2,
		},
		{
			name:   "numbers widen to the string marker",
			doc:    `{"id":1,"age":30,"score":1.5e3}`,
			fields: []string{"age", "score"},
			expect: `{"id":1,"age":"***","score":"***"}`,
			count:  2,
		},
		{
			name:   "booleans and nulls are left alone",
			doc:    `{"id":1,"active":true,"email":null}`,
			fields: []string{"active", "email"},
			expect: `{"id":1,"active":true,"email":null}`,
		},
		{
			name:   "containers under a PII key are walked, not replaced",
			doc:    `{"id":1,"name":{"first":"Jane","last":"Ford"},"email":["a@x.com",{"email":"b@x.com"}]}`,
			fields: []string{"name", "email", "last"},
			expect: `{"id":1,"name":{"first":"Jane","last":"***"},"email":["a@x.com",{"email":"***"}]}`,
			count:  2,
		},
		{
			name:   "every element of a top-level array is a record",
			doc:    `[{"id":1,"name":"Jane"},{"id":2,"name":"John","friends":[{"id":3,"name":"Jim"}]}]`,
			fields: []string{"id", "name"},
			expect: `[{"id":1,"name":"***"},{"id":2,"name":"***","friends":[{"id":"***","name":"***"}]}]`,
			count:  4,
		},
		{
			name:   "deeply nested objects",
			doc:    `{"id":1,"a":{"b":{"c":{"d":[{"e":{"ssn":"123-45-6789"}}]}}}}`,
			fields: []string{"ssn"},
			expect: `{"id":1,"a":{"b":{"c":{"d":[{"e":{"ssn":"***"}}]}}}}`,
			count:  1,
		},
		{
			name:   "scalar root is a no-op",
			doc:    `"name"`,
			fields: []string{"name"},
			expect: `"name"`,
		},
		{
			name:   "null root is a no-op",
			doc:    `null`,
			fields: []string{"name"},
			expect: `null`,
		},
	}

	for _, tc := range tcs {
		n := parse(t, tc.doc)
		count := Tree(n, NewFields(tc.fields...))
		assert.Equal(t, tc.expect, render(t, n), tc.name)
		assert.Equal(t, tc.count, count, tc.name)
	}
}

func TestTree_Idempotent(t *testing.T) {
	fields := NewFields("name", "phone", "age")
	n := parse(t, `{"id":7,"name":"Jane","age":41,"details":{"name":"Jane","phone":"555"}}`)

	Tree(n, fields)
	once := render(t, n)
	Tree(n, fields)
	assert.Equal(t, once, render(t, n))
}

func TestTree_NumberBecomesString(t *testing.T) {
	n := parse(t, `{"id":1,"age":30}`)
	Tree(n, NewFields("age"))

	age, ok := n.Get("age")
	require.True(t, ok)
	assert.Equal(t, String, age.Kind)
	assert.Equal(t, Marker, age.Scalar)

	id, ok := n.Get("id")
	require.True(t, ok)
	assert.Equal(t, Number, id.Kind)
	assert.Equal(t, "1", id.Scalar)
}

func TestNode_JSONRoundTrip(t *testing.T) {
	docs := []string{
		`{"z":1,"a":2,"m":3}`,
		`[1,2.50,-3e10,"x",true,false,null]`,
		`{"html":"<b>&</b>","unicode":"héllo","escaped":"a\"b\\c\n"}`,
		`{"nested":{"deep":[{"k":[]},{}]}}`,
	}
	for _, doc := range docs {
		assert.Equal(t, doc, render(t, parse(t, doc)), doc)
	}
}

func TestNode_UnmarshalInvalid(t *testing.T) {
	for _, doc := range []string{`{"a":}`, `[1,2`, ``, `{"a":1} {"b":2}`} {
		var n Node
		assert.Error(t, json.Unmarshal([]byte(doc), &n), doc)
	}
}

func TestNode_Keys(t *testing.T) {
	n := parse(t, `{"c":1,"a":2,"b":3}`)
	assert.Equal(t, []string{"c", "a", "b"}, n.Keys())

	n.Set("a", NewString("x"))
	n.Set("d", NewBool(true))
	assert.Equal(t, []string{"c", "a", "b", "d"}, n.Keys())
	assert.Nil(t, NewArray().Keys())
}
