// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pii-obfuscator/obfuscator/redact"
)

func obfuscate(t *testing.T, a Adapter, input string, fields ...string) (string, int) {
	t.Helper()
	doc, err := a.Decode([]byte(input))
	require.NoError(t, err)
	n := doc.Redact(redact.NewFields(fields...))
	out, err := doc.Encode()
	require.NoError(t, err)
	return string(out), n
}

func TestCSV(t *testing.T) {
	tcs := []struct {
		name   string
		input  string
		fields []string
		expect string
		count  int
	}{
		{
			name:   "student record keeps its id",
			input:  "student_id,name,email\n1234,John Smith,j@x.com\n",
			fields: []string{"name", "email"},
			expect: "student_id,name,email\n1234,***,***\n",
			count:  2,
		},
		{
			name:   "first column is exempt",
			input:  "name,email,age\nJane Ford,jane@example.com,30\nJohn Smith,john@example.com,25",
			fields: []string{"name", "email"},
			expect: "name,email,age\nJane Ford,***,30\nJohn Smith,***,25\n",
			count:  2,
		},
		{
			name:   "quoted values keep their quoting convention",
			input:  "id,name,address\n1,\"Smith, John\",\"1 Main St, \"\"Apt\"\" 2\"\n",
			fields: []string{"name"},
			expect: "id,name,address\n1,***,\"1 Main St, \"\"Apt\"\" 2\"\n",
			count:  1,
		},
		{
			name:   "CRLF input is normalised",
			input:  "id,name\r\n1,Jane\r\n",
			fields: []string{"name"},
			expect: "id,name\n1,***\n",
			count:  1,
		},
		{
			name:   "line breaks inside quoted values are kept exactly",
			input:  "id,note,name\n1,\"line1\r\nline2\",Jo\n2,\"a\nb \"\"c\"\"\",Al\n",
			fields: []string{"name"},
			expect: "id,note,name\n1,\"line1\r\nline2\",***\n2,\"a\nb \"\"c\"\"\",***\n",
			count:  2,
		},
		{
			name:   "header only",
			input:  "id,name,email\n",
			fields: []string{"name"},
			expect: "id,name,email\n",
		},
		{
			name:   "empty input",
			input:  "",
			fields: []string{"name"},
			expect: "",
		},
		{
			name:   "unknown fields change nothing",
			input:  "id,course,cohort\n1,Software,2024-03-31\n",
			fields: []string{"name"},
			expect: "id,course,cohort\n1,Software,2024-03-31\n",
		},
	}

	for _, tc := range tcs {
		out, n := obfuscate(t, CSV{}, tc.input, tc.fields...)
		assert.Equal(t, tc.expect, out, tc.name)
		assert.Equal(t, tc.count, n, tc.name)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	input := "student_id,name,course,cohort,graduation_date,email_address\n" +
		"1234,John Smith,Software,Spring,2024-03-31,j.smith@email.com\n" +
		"1235,Ann Lee,Data,Autumn,2024-09-30,a.lee@email.com\n"

	out, _ := obfuscate(t, CSV{}, input, "name", "email_address")

	doc, err := CSV{}.Decode([]byte(out))
	require.NoError(t, err)
	rows := doc.(*csvDocument).rows
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"student_id", "name", "course", "cohort", "graduation_date", "email_address"}, rows[0].Columns)
	assert.Equal(t, []string{"1234", "***", "Software", "Spring", "2024-03-31", "***"}, rows[0].Values)
	assert.Equal(t, []string{"1235", "***", "Data", "Autumn", "2024-09-30", "***"}, rows[1].Values)
}

func TestCSV_RoundTripSingleEmptyValue(t *testing.T) {
	input := "id\n\"\"\n2\n"

	out, _ := obfuscate(t, CSV{}, input, "id")
	assert.Equal(t, input, out)

	doc, err := CSV{}.Decode([]byte(out))
	require.NoError(t, err)
	rows := doc.(*csvDocument).rows
	require.Len(t, rows, 2)
	assert.Equal(t, []string{""}, rows[0].Values)
	assert.Equal(t, []string{"2"}, rows[1].Values)
}

func TestCSV_Malformed(t *testing.T) {
	inputs := map[string]string{
		"bare quote":       "id,name\n1,Jo\"hn\n",
		"unterminated":     "id,name\n1,\"John\n",
		"ragged row":       "id,name\n1,John,extra\n",
		"ragged short row": "id,name,email\n1,John\n",
		"invalid UTF-8":    "id,city\n1,Par\xffis\n",
	}
	for name, input := range inputs {
		_, err := CSV{}.Decode([]byte(input))
		var formatErr FormatError
		assert.True(t, errors.As(err, &formatErr), name)
	}
}
