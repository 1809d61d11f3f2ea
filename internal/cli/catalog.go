package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog: каталог не прошёл проверку.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog описывает набор типов контрактов для импорта.
//
//	contract_types:
//	  - name: PABX em nuvem
//	    description: Telefonia em nuvem
//	    template: templates/pabx.html
//	  - name: Link dedicado
//	    active: false
//	    html: "<p>[[ contrato_numero ]]</p>"
type Catalog struct {
	ContractTypes []CatalogEntry `yaml:"contract_types"`
}

// CatalogEntry: один тип контракта в каталоге.
type CatalogEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Active      *bool  `yaml:"active"`

	// Template: путь к HTML относительно файла каталога.
	Template string `yaml:"template"`

	// HTML: шаблон inline; взаимоисключающий с Template.
	HTML string `yaml:"html"`
}

// ImportResult: итог импорта одного типа.
type ImportResult struct {
	TypeID  string `json:"type_id"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
	Version int    `json:"version,omitempty"`
}

// LoadCatalog читает каталог и подставляет содержимое файлов шаблонов.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	seen := make(map[string]bool)
	base := filepath.Dir(path)
	for i := range catalog.ContractTypes {
		entry := &catalog.ContractTypes[i]

		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidCatalog, i+1)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidCatalog, entry.Name)
		}
		seen[entry.Name] = true

		if entry.Template == "" {
			continue
		}
		if entry.HTML != "" {
			return nil, fmt.Errorf("%w: %q sets both template and html", ErrInvalidCatalog, entry.Name)
		}
		file := entry.Template
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		html, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read template for %q: %w", entry.Name, err)
		}
		entry.HTML = string(html)
	}

	return &catalog, nil
}

// ImportCatalog создаёт недостающие типы и загружает новую версию шаблона
// для каждого типа, у которого в каталоге есть HTML.
// Существующие типы сопоставляются по имени.
func ImportCatalog(client *Client, catalog *Catalog) ([]ImportResult, error) {
	existing, err := client.ListContractTypes()
	if err != nil {
		return nil, fmt.Errorf("list contract types: %w", err)
	}
	byName := make(map[string]string, len(existing))
	for _, ct := range existing {
		byName[ct.Name] = ct.ID
	}

	results := make([]ImportResult, 0, len(catalog.ContractTypes))
	for _, entry := range catalog.ContractTypes {
		res := ImportResult{Name: entry.Name, TypeID: byName[entry.Name]}

		if res.TypeID == "" {
			ct, err := client.CreateContractType(CreateContractTypeRequest{
				Name:        entry.Name,
				Description: entry.Description,
				IsActive:    entry.Active,
			})
			if err != nil {
				return results, fmt.Errorf("create %q: %w", entry.Name, err)
			}
			res.TypeID = ct.ID
			res.Created = true
		}

		if entry.HTML != "" {
			tv, err := client.UploadTemplate(res.TypeID, entry.HTML)
			if err != nil {
				return results, fmt.Errorf("upload template for %q: %w", entry.Name, err)
			}
			res.Version = tv.Version
		}

		results = append(results, res)
	}

	return results, nil
}
