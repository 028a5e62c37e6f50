package source

import (
	"errors"
	"fmt"

	"wsync/internal/asset"
	"wsync/internal/checksum"
)

// ErrAssetNotFound matches any NotFoundError via errors.Is.
var ErrAssetNotFound = errors.New("asset not found")

// ErrChecksumMismatch matches any MismatchError via errors.Is.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// NotFoundError reports that a source could not resolve a requested
// checksum: either a source-side bug or a stale checksum. It is not retried
// locally.
type NotFoundError struct {
	Path     asset.Path
	Checksum checksum.Checksum
}

func (e *NotFoundError) Error() string {
	if e.Path.Owner != "" {
		return fmt.Sprintf("asset not found: %s %s (owner %s)", e.Path.Kind, e.Checksum, e.Path.Owner)
	}
	return fmt.Sprintf("asset not found: %s %s", e.Path.Kind, e.Checksum)
}

// Is makes errors.Is(err, ErrAssetNotFound) work.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrAssetNotFound
}

// MismatchError reports that a resolved payload's recomputed checksum
// disagrees with the requested one: corruption or a non-idempotent source.
type MismatchError struct {
	Kind     asset.Kind
	Expected checksum.Checksum
	Actual   checksum.Checksum
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Kind, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrChecksumMismatch) work.
func (e *MismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
