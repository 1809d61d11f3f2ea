package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "templates/pabx.html", "<p>[[ contrato_numero ]]</p>")
	path := writeFile(t, dir, "catalog.yaml", `
contract_types:
  - name: PABX em nuvem
    description: Telefonia em nuvem
    template: templates/pabx.html
  - name: Link dedicado
    active: false
    html: "<p>link</p>"
  - name: Sem modelo
`)

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(catalog.ContractTypes) != 3 {
		t.Fatalf("entries = %d, want 3", len(catalog.ContractTypes))
	}

	pabx := catalog.ContractTypes[0]
	if pabx.HTML != "<p>[[ contrato_numero ]]</p>" {
		t.Errorf("template not loaded: %q", pabx.HTML)
	}
	link := catalog.ContractTypes[1]
	if link.Active == nil || *link.Active {
		t.Errorf("active = %v, want false", link.Active)
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no name", "contract_types:\n  - description: x\n"},
		{"duplicate", "contract_types:\n  - name: A\n  - name: A\n"},
		{"both sources", "contract_types:\n  - name: A\n    html: x\n    template: a.html\n"},
		{"bad yaml", "contract_types: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "a.html", "<p/>")
			path := writeFile(t, dir, "catalog.yaml", tt.content)

			_, err := LoadCatalog(path)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("LoadCatalog() error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestLoadCatalog_MissingTemplate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalog.yaml", "contract_types:\n  - name: A\n    template: missing.html\n")

	_, err := LoadCatalog(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadCatalog() error = %v, want not exist", err)
	}
}

func TestImportCatalog(t *testing.T) {
	api, client := newFakeAPI(t, ContractTypeResponse{ID: "existing", Name: "PABX em nuvem"})

	catalog := &Catalog{ContractTypes: []CatalogEntry{
		{Name: "PABX em nuvem", HTML: "<p>v2</p>"},
		{Name: "Link dedicado", HTML: "<p>link</p>"},
		{Name: "Sem modelo"},
	}}

	results, err := ImportCatalog(client, catalog)
	if err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}

	want := []ImportResult{
		{TypeID: "existing", Name: "PABX em nuvem", Created: false, Version: 1},
		{TypeID: "type-Link dedicado", Name: "Link dedicado", Created: true, Version: 1},
		{TypeID: "type-Sem modelo", Name: "Sem modelo", Created: true},
	}
	if len(results) != len(want) {
		t.Fatalf("results = %+v", results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %+v, want %+v", i, results[i], want[i])
		}
	}
	if api.uploaded["existing"] != "<p>v2</p>" {
		t.Errorf("uploaded = %q", api.uploaded["existing"])
	}
}
