package source

import "wsync/internal/checksum"

// Wire types shared by the remote source and the provider's HTTP service.
// Data marshals as base64 per encoding/json's []byte convention.

// WireAsset is one resolved record on the wire.
type WireAsset struct {
	Checksum checksum.Checksum `json:"checksum"`
	Kind     string            `json:"kind"`
	Data     []byte            `json:"data"`
}

// BatchRequest asks for a deduplicated set of checksums under one path.
type BatchRequest struct {
	Kind      string              `json:"kind"`
	Owner     string              `json:"owner,omitempty"`
	Checksums []checksum.Checksum `json:"checksums"`
}

// BatchResponse carries every requested record.
type BatchResponse struct {
	Assets []WireAsset `json:"assets"`
}

// ErrorResponse is the provider's error body.
type ErrorResponse struct {
	Error    string `json:"error"`
	Checksum string `json:"checksum,omitempty"`
}
