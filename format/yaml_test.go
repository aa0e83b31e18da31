// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYAML(t *testing.T) {
	tcs := []struct {
		name   string
		input  string
		fields []string
		expect string
		count  int
	}{
		{
			name: "nested mapping",
			input: `id: 7
name: Jane
details:
  name: Jane
  phone: "555"
  vip: true
`,
			fields: []string{"name", "phone", "vip"},
			expect: `id: 7
name: '***'
details:
  name: '***'
  phone: '***'
  vip: true
`,
			count: 3,
		},
		{
			name: "sequence of records and numbers",
			input: `- id: 1
  age: 30
- id: 2
  age: 41
`,
			fields: []string{"age"},
			expect: `- id: 1
  age: '***'
- id: 2
  age: '***'
`,
			count: 2,
		},
		{
			name: "aliases are expanded",
			input: `id: 1
home: &addr
  street: 1 Main St
work: *addr
`,
			fields: []string{"street"},
			expect: `id: 1
home:
  street: '***'
work:
  street: '***'
`,
			count: 2,
		},
		{
			name: "strings that look like numbers stay strings",
			input: `id: "1"
zip: "02134"
`,
			fields: []string{"nothing"},
			expect: `id: "1"
zip: "02134"
`,
		},
		{
			name: "typed scalars keep their tags",
			input: `id: 1
graduated: 2024-03-31
photo: !!binary aGVsbG8=
grade: !grade A+
`,
			fields: []string{"nothing"},
			expect: `id: 1
graduated: 2024-03-31
photo: !!binary aGVsbG8=
grade: !grade A+
`,
		},
		{
			name: "redacted typed scalars become plain strings",
			input: `id: 1
graduated: 2024-03-31
grade: !grade A+
`,
			fields: []string{"graduated", "grade"},
			expect: `id: 1
graduated: '***'
grade: '***'
`,
			count: 2,
		},
	}

	for _, tc := range tcs {
		out, n := obfuscate(t, YAML{}, tc.input, tc.fields...)
		assert.Equal(t, tc.expect, out, tc.name)
		assert.Equal(t, tc.count, n, tc.name)
	}
}

func TestYAML_Malformed(t *testing.T) {
	for _, input := range []string{"a: [1, 2", "a: b: c", "? [a]\n: 1\n", "id: 1\ncity: Par\xffis\n"} {
		_, err := YAML{}.Decode([]byte(input))
		var formatErr FormatError
		assert.True(t, errors.As(err, &formatErr), input)
	}
}
