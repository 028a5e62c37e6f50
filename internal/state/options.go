package state

import "path/filepath"

// CompilationOptions is the compiler configuration payload for one project.
// Concrete semantics of the key/value set belong to the language's compiler;
// this layer treats them as opaque apart from path normalization.
type CompilationOptions struct {
	Language   string            `json:"language"`
	OutputKind string            `json:"outputKind,omitempty"`
	OutputPath string            `json:"outputPath,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Normalize applies the post-fetch rewriting the project attributes require
// before the options are considered final: relative output paths are resolved
// against the directory of the project file.
func (o CompilationOptions) Normalize(attrs ProjectAttributes) CompilationOptions {
	if o.OutputPath == "" || filepath.IsAbs(o.OutputPath) || attrs.FilePath == "" {
		return o
	}
	normalized := o
	normalized.OutputPath = filepath.Join(filepath.Dir(attrs.FilePath), o.OutputPath)
	return normalized
}

// ParseOptions is the parser configuration payload for one project.
type ParseOptions struct {
	Language            string   `json:"language"`
	LanguageVersion     string   `json:"languageVersion,omitempty"`
	PreprocessorSymbols []string `json:"preprocessorSymbols,omitempty"`
	DocumentationMode   string   `json:"documentationMode,omitempty"`
}
