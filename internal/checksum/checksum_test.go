package checksum

import (
	"encoding/json"
	"testing"
)

func TestForBytes(t *testing.T) {
	tests := []struct {
		name    string
		domainA string
		dataA   string
		domainB string
		dataB   string
		equal   bool
	}{
		{
			name:    "same domain and data are equal",
			domainA: "document-text", dataA: "hello",
			domainB: "document-text", dataB: "hello",
			equal: true,
		},
		{
			name:    "different data differs",
			domainA: "document-text", dataA: "hello",
			domainB: "document-text", dataB: "world",
			equal: false,
		},
		{
			name:    "same data under different domains differs",
			domainA: "document-text", dataA: "hello",
			domainB: "document-attributes", dataB: "hello",
			equal: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := ForBytes(tc.domainA, []byte(tc.dataA))
			b := ForBytes(tc.domainB, []byte(tc.dataB))
			if (a == b) != tc.equal {
				t.Errorf("ForBytes equality = %v, expected %v", a == b, tc.equal)
			}
		})
	}
}

func TestForBytesNotZero(t *testing.T) {
	c := ForBytes("document-text", nil)
	if c.IsZero() {
		t.Error("checksum of empty payload must not be the zero sentinel")
	}
}

func TestParseRoundTrip(t *testing.T) {
	original := ForBytes("document-text", []byte("hello"))

	parsed, err := Parse(original.String())
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", original.String(), err)
	}
	if parsed != original {
		t.Errorf("Parse round trip: got %s, expected %s", parsed, original)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not hex", input: "zzzz"},
		{name: "wrong length", input: "deadbeef"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.input); err == nil {
				t.Errorf("Parse(%q) succeeded, expected error", tc.input)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	original := ForBytes("project-state", []byte("payload"))

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Checksum
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded != original {
		t.Errorf("JSON round trip: got %s, expected %s", decoded, original)
	}
}
