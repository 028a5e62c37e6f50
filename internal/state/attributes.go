package state

// SolutionAttributes is the leaf payload carrying solution-level metadata.
type SolutionAttributes struct {
	ID       SolutionID `json:"id"`
	Name     string     `json:"name"`
	FilePath string     `json:"filePath,omitempty"`
	Version  string     `json:"version,omitempty"`
}

// ProjectAttributes is the leaf payload carrying project-level metadata. The
// declared language gates reconstruction: projects whose language has no
// registered builder fail the whole reconstruction.
type ProjectAttributes struct {
	ID           ProjectID `json:"id"`
	Name         string    `json:"name"`
	Language     string    `json:"language"`
	AssemblyName string    `json:"assemblyName,omitempty"`
	FilePath     string    `json:"filePath,omitempty"`
	OutputPath   string    `json:"outputPath,omitempty"`
}

// DocumentAttributes is the leaf payload carrying document-level metadata.
type DocumentAttributes struct {
	ID       DocumentID `json:"id"`
	Name     string     `json:"name"`
	FilePath string     `json:"filePath"`
}

// GeneratorVersions maps generator identities to the version that last ran
// against the workspace.
type GeneratorVersions map[string]string
