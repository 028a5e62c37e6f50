// Package state defines the checksum records that describe a workspace, the
// payload types they point at, and the immutable snapshot tree produced by
// reconstruction.
package state

import "github.com/google/uuid"

// idNamespace seeds deterministic (name-based) IDs so ingesting the same
// manifest twice yields the same identity tree and therefore the same root
// checksum.
var idNamespace = uuid.MustParse("8f1d3a52-74c1-4b8e-9f26-5dd14b6a0e37")

// SolutionID identifies a solution across snapshots.
type SolutionID string

// ProjectID identifies a logical project; it is stable across syncs of the
// same project.
type ProjectID string

// DocumentID identifies a logical document within a project.
type DocumentID string

// NewSolutionID returns a random solution ID.
func NewSolutionID() SolutionID {
	return SolutionID(uuid.NewString())
}

// NewProjectID returns a random project ID.
func NewProjectID() ProjectID {
	return ProjectID(uuid.NewString())
}

// NewDocumentID returns a random document ID.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.NewString())
}

// DeriveSolutionID returns the deterministic ID for a solution name.
func DeriveSolutionID(name string) SolutionID {
	return SolutionID(uuid.NewSHA1(idNamespace, []byte("solution:"+name)).String())
}

// DeriveProjectID returns the deterministic ID for a project name within a
// solution.
func DeriveProjectID(solution, project string) ProjectID {
	return ProjectID(uuid.NewSHA1(idNamespace, []byte("project:"+solution+"/"+project)).String())
}

// DeriveDocumentID returns the deterministic ID for a document path within a
// project.
func DeriveDocumentID(project ProjectID, path string) DocumentID {
	return DocumentID(uuid.NewSHA1(idNamespace, []byte("document:"+string(project)+"/"+path)).String())
}
