package state

import (
	"encoding/json"
	"fmt"

	"wsync/internal/asset"
)

// Encode marshals a payload into the canonical record form for its kind.
// Encoding is byte-stable for a given value: struct fields marshal in
// declaration order and map keys marshal sorted, so equal values always
// produce equal checksums.
func Encode(kind asset.Kind, v any) (asset.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return asset.Record{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	return asset.Record{Kind: kind, Data: data}, nil
}

// Decode unmarshals a record into the payload type for the expected kind.
func Decode[T any](rec asset.Record, kind asset.Kind) (T, error) {
	var v T
	if rec.Kind != kind {
		return v, fmt.Errorf("decode %s: record has kind %s", kind, rec.Kind)
	}
	if err := json.Unmarshal(rec.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", kind, err)
	}
	return v, nil
}

// TextRecord wraps raw document text in its record form. Text is stored as
// the exact bytes, not JSON.
func TextRecord(text []byte) asset.Record {
	return asset.Record{Kind: asset.KindDocumentText, Data: text}
}
