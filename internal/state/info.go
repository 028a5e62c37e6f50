package state

// SolutionInfo is the root of the reconstructed snapshot: a fully
// materialized, immutable value tree. It is produced only from resolved leaf
// payloads and is never partially populated.
type SolutionInfo struct {
	Attributes         SolutionAttributes
	GeneratorVersions  GeneratorVersions
	Projects           []ProjectInfo
	AnalyzerReferences []AnalyzerReference
}

// ProjectInfo is one fully materialized project within a snapshot.
type ProjectInfo struct {
	Attributes              ProjectAttributes
	CompilationOptions      CompilationOptions
	ParseOptions            ParseOptions
	ProjectReferences       []ProjectReference
	MetadataReferences      []MetadataReference
	AnalyzerReferences      []AnalyzerReference
	Documents               []DocumentInfo
	AdditionalDocuments     []DocumentInfo
	AnalyzerConfigDocuments []DocumentInfo
}

// DocumentInfo is one fully materialized document: attributes plus text.
type DocumentInfo struct {
	Attributes DocumentAttributes
	Text       string
}
