package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes a workspace to ingest: one solution with an ordered
// list of projects, each naming its documents by path relative to the
// manifest's directory.
type Manifest struct {
	Solution string            `yaml:"solution"`
	Version  string            `yaml:"version"`
	Projects []ManifestProject `yaml:"projects"`
}

// ManifestProject describes one project within a manifest.
type ManifestProject struct {
	Name                    string   `yaml:"name"`
	Language                string   `yaml:"language"`
	AssemblyName            string   `yaml:"assemblyName"`
	FilePath                string   `yaml:"filePath"`
	OutputKind              string   `yaml:"outputKind"`
	OutputPath              string   `yaml:"outputPath"`
	LanguageVersion         string   `yaml:"languageVersion"`
	PreprocessorSymbols     []string `yaml:"preprocessorSymbols"`
	Documents               []string `yaml:"documents"`
	AdditionalDocuments     []string `yaml:"additionalDocuments"`
	AnalyzerConfigDocuments []string `yaml:"analyzerConfigDocuments"`
	ProjectReferences       []string `yaml:"projectReferences"`
	MetadataReferences      []string `yaml:"metadataReferences"`
	AnalyzerReferences      []string `yaml:"analyzerReferences"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate checks the manifest for structural problems before ingestion.
func (m *Manifest) Validate() error {
	if m.Solution == "" {
		return fmt.Errorf("manifest missing solution name")
	}
	names := make(map[string]struct{}, len(m.Projects))
	for _, project := range m.Projects {
		if project.Name == "" {
			return fmt.Errorf("manifest project missing name")
		}
		if project.Language == "" {
			return fmt.Errorf("project %s missing language", project.Name)
		}
		if _, ok := names[project.Name]; ok {
			return fmt.Errorf("duplicate project name %s", project.Name)
		}
		names[project.Name] = struct{}{}
	}
	for _, project := range m.Projects {
		for _, ref := range project.ProjectReferences {
			if _, ok := names[ref]; !ok {
				return fmt.Errorf("project %s references unknown project %s", project.Name, ref)
			}
		}
	}
	return nil
}
