package store

import (
	"encoding/json"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	var v any
	if err := DecodeJSON([]byte(" 12345678901234567890 \n"), &v); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if v != json.Number("12345678901234567890") {
		t.Errorf("decoded %#v, want json.Number", v)
	}

	for _, input := range []string{"1,2", "0 garbage", `3 {"a":{}}`, `{} {}`, ""} {
		var v any
		if err := DecodeJSON([]byte(input), &v); err == nil {
			t.Errorf("DecodeJSON(%q) succeeded, want error", input)
		}
	}
}
