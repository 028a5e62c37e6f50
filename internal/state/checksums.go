package state

import (
	"fmt"

	"wsync/internal/checksum"
)

// SolutionStateChecksums is the checksum record for the workspace root: a
// directory node whose fields are themselves checksums. Exactly one root
// exists per synchronization call.
type SolutionStateChecksums struct {
	Attributes         checksum.Checksum   `json:"attributes"`
	GeneratorVersions  checksum.Checksum   `json:"generatorVersions"`
	Projects           checksum.Collection `json:"projects"`
	AnalyzerReferences checksum.Collection `json:"analyzerReferences"`
}

// ProjectStateChecksums is the checksum record for one project.
type ProjectStateChecksums struct {
	ProjectID               ProjectID               `json:"projectId"`
	Attributes              checksum.Checksum       `json:"attributes"`
	CompilationOptions      checksum.Checksum       `json:"compilationOptions"`
	ParseOptions            checksum.Checksum       `json:"parseOptions"`
	ProjectReferences       checksum.Collection     `json:"projectReferences"`
	MetadataReferences      checksum.Collection     `json:"metadataReferences"`
	AnalyzerReferences      checksum.Collection     `json:"analyzerReferences"`
	Documents               DocumentChecksumsAndIDs `json:"documents"`
	AdditionalDocuments     DocumentChecksumsAndIDs `json:"additionalDocuments"`
	AnalyzerConfigDocuments DocumentChecksumsAndIDs `json:"analyzerConfigDocuments"`
}

// Validate checks the structural invariants of the record.
func (p ProjectStateChecksums) Validate() error {
	if p.ProjectID == "" {
		return fmt.Errorf("project state record missing project id")
	}
	for _, docs := range []struct {
		name string
		d    DocumentChecksumsAndIDs
	}{
		{"documents", p.Documents},
		{"additionalDocuments", p.AdditionalDocuments},
		{"analyzerConfigDocuments", p.AnalyzerConfigDocuments},
	} {
		if err := docs.d.Validate(); err != nil {
			return fmt.Errorf("project %s %s: %w", p.ProjectID, docs.name, err)
		}
	}
	return nil
}

// DocumentChecksumsAndIDs is the parallel triple-collection describing the
// documents of one kind within a project. Index i in all three sequences
// refers to the same logical document.
type DocumentChecksumsAndIDs struct {
	Attributes []checksum.Checksum `json:"attributes"`
	Texts      []checksum.Checksum `json:"texts"`
	IDs        []DocumentID        `json:"ids"`
}

// Len returns the number of documents described.
func (d DocumentChecksumsAndIDs) Len() int {
	return len(d.IDs)
}

// Validate checks that the three sequences are index-aligned.
func (d DocumentChecksumsAndIDs) Validate() error {
	if len(d.Attributes) != len(d.IDs) || len(d.Texts) != len(d.IDs) {
		return fmt.Errorf("misaligned document collections: %d attributes, %d texts, %d ids",
			len(d.Attributes), len(d.Texts), len(d.IDs))
	}
	return nil
}
