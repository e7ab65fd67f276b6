package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reergymerej/poor-nosql/internal/store"
)

func TestParseRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []store.Record
		wantErr bool
	}{
		{
			name:  "single object",
			input: `{"foo": "bar"}`,
			want:  []store.Record{{"foo": "bar"}},
		},
		{
			name:  "array",
			input: `[{"a": 1}, {"a": 2}]`,
			want:  []store.Record{{"a": json.Number("1")}, {"a": json.Number("2")}},
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  []store.Record{},
		},
		{
			name:  "jsonl",
			input: "{\"a\": 1}\n\n{\"b\": true}\n",
			want:  []store.Record{{"a": json.Number("1")}, {"b": true}},
		},
		{
			name:  "surrounding whitespace",
			input: "  \n {\"x\": null} \n",
			want:  []store.Record{{"x": nil}},
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "null",
			input:   "null",
			wantErr: true,
		},
		{
			name:    "scalar",
			input:   "42",
			wantErr: true,
		},
		{
			name:    "jsonl null line",
			input:   "{\"a\": 1}\nnull\n",
			wantErr: true,
		},
		{
			name:    "array with null",
			input:   `[{"a": 1}, null]`,
			wantErr: true,
		},
		{
			name:    "bad jsonl line",
			input:   "{\"a\": 1}\n{not json}\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRecords([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecords_JSONLLineNumber(t *testing.T) {
	_, err := parseRecords([]byte("{\"a\": 1}\n{\"b\": 2}\n{oops}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadJSONL(t *testing.T) {
	got, err := readJSONL(strings.NewReader("{\"n\": 1}\n{\"n\": 2}\n"))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReadJSONL_NullLine(t *testing.T) {
	_, err := readJSONL(strings.NewReader("{\"n\": 1}\nnull\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseRecords_KeepsLargeIntegers(t *testing.T) {
	got, err := parseRecords([]byte(`{"n": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), got[0]["n"])
}

func TestParseRecord(t *testing.T) {
	got, err := parseRecord([]byte(` {"donkey": "face"} `))
	require.NoError(t, err)
	assert.Equal(t, store.Record{"donkey": "face"}, got)

	for _, input := range []string{"", "null", "[1]", `"text"`} {
		_, err := parseRecord([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}
