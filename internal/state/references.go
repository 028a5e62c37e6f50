package state

// ProjectReference points one project at another project in the same
// solution.
type ProjectReference struct {
	ProjectID ProjectID `json:"projectId"`
	Aliases   []string  `json:"aliases,omitempty"`
}

// MetadataReference points a project at a compiled metadata artifact.
type MetadataReference struct {
	FilePath   string            `json:"filePath"`
	Properties map[string]string `json:"properties,omitempty"`
}

// AnalyzerReference points a project or solution at an analyzer artifact.
type AnalyzerReference struct {
	FullPath string `json:"fullPath"`
}
