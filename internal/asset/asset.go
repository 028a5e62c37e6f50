// Package asset defines the typed unit of content-addressed storage and the
// scoping keys used to route checksum lookups. A single checksum value space
// is shared by heterogeneous payload kinds, so every lookup carries an
// AssetPath naming the kind (and, for project-scoped kinds, the owner).
package asset

import "wsync/internal/checksum"

// Kind identifies what a checksum resolves to.
type Kind string

const (
	// KindSolutionState is the checksum record for the workspace root.
	KindSolutionState Kind = "solution-state"
	// KindSolutionAttributes is the solution attributes payload.
	KindSolutionAttributes Kind = "solution-attributes"
	// KindGeneratorVersions is the generator-execution-version-map payload.
	KindGeneratorVersions Kind = "generator-versions"
	// KindProjectState is the checksum record for one project.
	KindProjectState Kind = "project-state"
	// KindProjectAttributes is the project attributes payload.
	KindProjectAttributes Kind = "project-attributes"
	// KindCompilationOptions is the compilation options payload.
	KindCompilationOptions Kind = "compilation-options"
	// KindParseOptions is the parse options payload.
	KindParseOptions Kind = "parse-options"
	// KindProjectReference is a project-to-project reference payload.
	KindProjectReference Kind = "project-reference"
	// KindMetadataReference is a metadata reference payload.
	KindMetadataReference Kind = "metadata-reference"
	// KindAnalyzerReference is an analyzer reference payload.
	KindAnalyzerReference Kind = "analyzer-reference"
	// KindDocumentAttributes is a document attributes payload.
	KindDocumentAttributes Kind = "document-attributes"
	// KindDocumentText is raw document text.
	KindDocumentText Kind = "document-text"
)

// Path scopes a checksum lookup: what kind of node the checksum resolves to
// and, for per-owner caches, which owner it belongs to. Owner is empty for
// solution-level kinds.
type Path struct {
	Kind  Kind
	Owner string
}

// NewPath returns an unowned path for a solution-level kind.
func NewPath(kind Kind) Path {
	return Path{Kind: kind}
}

// NewOwnedPath returns a path scoped to an owning project.
func NewOwnedPath(kind Kind, owner string) Path {
	return Path{Kind: kind, Owner: owner}
}

// Record is the stored and wire unit: a kind plus the payload bytes the
// checksum was computed over.
type Record struct {
	Kind Kind   `json:"kind"`
	Data []byte `json:"data"`
}

// Checksum recomputes the record's content identity. Storage and transport
// layers compare this against the requested checksum to detect corruption.
func (r Record) Checksum() checksum.Checksum {
	return checksum.ForBytes(string(r.Kind), r.Data)
}
