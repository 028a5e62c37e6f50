package provider

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"wsync/internal/engine"
	"wsync/internal/slogutil"
	"wsync/internal/source"
)

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  bool
	}{
		{
			name: "valid",
			manifest: Manifest{
				Solution: "app",
				Projects: []ManifestProject{
					{Name: "core", Language: "csharp"},
					{Name: "cli", Language: "csharp", ProjectReferences: []string{"core"}},
				},
			},
		},
		{
			name:     "missing solution name",
			manifest: Manifest{Projects: []ManifestProject{{Name: "core", Language: "csharp"}}},
			wantErr:  true,
		},
		{
			name: "missing project name",
			manifest: Manifest{
				Solution: "app",
				Projects: []ManifestProject{{Language: "csharp"}},
			},
			wantErr: true,
		},
		{
			name: "missing language",
			manifest: Manifest{
				Solution: "app",
				Projects: []ManifestProject{{Name: "core"}},
			},
			wantErr: true,
		},
		{
			name: "duplicate project name",
			manifest: Manifest{
				Solution: "app",
				Projects: []ManifestProject{
					{Name: "core", Language: "csharp"},
					{Name: "core", Language: "csharp"},
				},
			},
			wantErr: true,
		},
		{
			name: "unknown project reference",
			manifest: Manifest{
				Solution: "app",
				Projects: []ManifestProject{
					{Name: "cli", Language: "csharp", ProjectReferences: []string{"nope"}},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{
		"workspace.yaml": `solution: app
version: "1.0"
projects:
  - name: core
    language: csharp
    documents:
      - src/a.txt
`,
	})

	manifest, err := LoadManifest(filepath.Join(dir, "workspace.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if manifest.Solution != "app" || len(manifest.Projects) != 1 {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
	if got := manifest.Projects[0].Documents; len(got) != 1 || got[0] != "src/a.txt" {
		t.Errorf("documents = %v", got)
	}
}

func TestIngestDeterministicRoot(t *testing.T) {
	manifest := &Manifest{
		Solution: "app",
		Version:  "1.0",
		Projects: []ManifestProject{
			{Name: "core", Language: "csharp", Documents: []string{"a.txt", "b.txt"}},
		},
	}
	dir := writeWorkspace(t, map[string]string{"a.txt": "hello", "b.txt": "world"})

	first, err := NewIngester(source.NewMemoryStore(), slogutil.NewDiscardLogger()).Ingest(context.Background(), manifest, dir)
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	second, err := NewIngester(source.NewMemoryStore(), slogutil.NewDiscardLogger()).Ingest(context.Background(), manifest, dir)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	if first != second {
		t.Errorf("root checksums differ across identical ingests: %s vs %s", first, second)
	}
}

func TestIngestRootChangesWithContent(t *testing.T) {
	manifest := &Manifest{
		Solution: "app",
		Projects: []ManifestProject{
			{Name: "core", Language: "csharp", Documents: []string{"a.txt"}},
		},
	}
	dirA := writeWorkspace(t, map[string]string{"a.txt": "hello"})
	dirB := writeWorkspace(t, map[string]string{"a.txt": "changed"})

	rootA, err := NewIngester(source.NewMemoryStore(), slogutil.NewDiscardLogger()).Ingest(context.Background(), manifest, dirA)
	if err != nil {
		t.Fatal(err)
	}
	rootB, err := NewIngester(source.NewMemoryStore(), slogutil.NewDiscardLogger()).Ingest(context.Background(), manifest, dirB)
	if err != nil {
		t.Fatal(err)
	}
	if rootA == rootB {
		t.Error("root checksum did not change when document content changed")
	}
}

func TestIngestMissingDocumentFails(t *testing.T) {
	manifest := &Manifest{
		Solution: "app",
		Projects: []ManifestProject{
			{Name: "core", Language: "csharp", Documents: []string{"absent.txt"}},
		},
	}
	_, err := NewIngester(source.NewMemoryStore(), slogutil.NewDiscardLogger()).Ingest(context.Background(), manifest, t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing document file")
	}
}

// TestIngestServeReconstruct exercises the full path: ingest a workspace,
// serve it over HTTP, and reconstruct it through a remote source backed by a
// local cache. The remote pull and a direct in-process reconstruction must
// agree exactly.
func TestIngestServeReconstruct(t *testing.T) {
	manifest := &Manifest{
		Solution: "app",
		Version:  "2.0",
		Projects: []ManifestProject{
			{
				Name:                "core",
				Language:            "csharp",
				AssemblyName:        "Core",
				FilePath:            "core/core.proj",
				OutputKind:          "library",
				OutputPath:          "bin",
				LanguageVersion:     "latest",
				PreprocessorSymbols: []string{"DEBUG"},
				Documents:           []string{"core/a.txt", "core/b.txt"},
				AdditionalDocuments: []string{"core/notes.md"},
				MetadataReferences:  []string{"lib/runtime.dll"},
			},
			{
				Name:              "cli",
				Language:          "csharp",
				FilePath:          "cli/cli.proj",
				Documents:         []string{"cli/main.txt"},
				ProjectReferences: []string{"core"},
			},
		},
	}
	dir := writeWorkspace(t, map[string]string{
		"core/a.txt":    "hello",
		"core/b.txt":    "world",
		"core/notes.md": "# notes",
		"cli/main.txt":  "entry",
	})

	store := source.NewMemoryStore()
	logger := slogutil.NewDiscardLogger()
	root, err := NewIngester(store, logger).Ingest(context.Background(), manifest, dir)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	server := NewServer("127.0.0.1:0", store, logger)
	ts := httptest.NewServer(server)
	defer ts.Close()

	remote := source.NewRemoteSource(ts.URL, logger)
	cached := source.NewCachingSource(remote, source.NewMemoryStore(), logger)

	pulled, err := engine.New(cached, engine.WithLogger(logger)).ReconstructSolution(context.Background(), root)
	if err != nil {
		t.Fatalf("remote reconstruction failed: %v", err)
	}
	local, err := engine.New(store, engine.WithLogger(logger)).ReconstructSolution(context.Background(), root)
	if err != nil {
		t.Fatalf("local reconstruction failed: %v", err)
	}

	if !reflect.DeepEqual(pulled, local) {
		t.Error("remote and local reconstructions diverge")
	}
	if pulled.Attributes.Name != "app" || pulled.Attributes.Version != "2.0" {
		t.Errorf("solution attributes = %+v", pulled.Attributes)
	}
	if len(pulled.Projects) != 2 {
		t.Fatalf("got %d projects, expected 2", len(pulled.Projects))
	}

	core := pulled.Projects[0]
	if core.Attributes.Name != "core" {
		t.Fatalf("project order not preserved, first project is %s", core.Attributes.Name)
	}
	if len(core.Documents) != 2 || core.Documents[0].Text != "hello" || core.Documents[1].Text != "world" {
		t.Errorf("core documents = %+v", core.Documents)
	}
	if len(core.AdditionalDocuments) != 1 || core.AdditionalDocuments[0].Text != "# notes" {
		t.Errorf("core additional documents = %+v", core.AdditionalDocuments)
	}
	if len(core.MetadataReferences) != 1 || core.MetadataReferences[0].FilePath != "lib/runtime.dll" {
		t.Errorf("core metadata references = %+v", core.MetadataReferences)
	}

	cli := pulled.Projects[1]
	if cli.Attributes.Name != "cli" {
		t.Fatalf("second project is %s, expected cli", cli.Attributes.Name)
	}
	if len(cli.ProjectReferences) != 1 || cli.ProjectReferences[0].ProjectID != core.Attributes.ID {
		t.Errorf("cli project references = %+v, core id %s", cli.ProjectReferences, core.Attributes.ID)
	}
}
