package catalog

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/go-while/go-toolsite/internal/models"
)

//go:embed data/*.json
var EmbeddedDataFS embed.FS

const (
	staticDataFile   = "data/static_tools.json"
	importedDataFile = "data/imported_tools.json"
)

// StaticTools returns the hand-curated bundled dataset
func StaticTools() ([]models.ToolEntry, error) {
	return readDataset(staticDataFile)
}

// ImportedTools returns the dataset generated from external spreadsheets
func ImportedTools() ([]models.ToolEntry, error) {
	return readDataset(importedDataFile)
}

// LoadDatasets reads both bundled datasets, the static one must not be empty
func LoadDatasets() (static, imported []models.ToolEntry, err error) {
	static, err = StaticTools()
	if err != nil {
		return nil, nil, err
	}
	if len(static) == 0 {
		return nil, nil, fmt.Errorf("bundled dataset %s is empty", staticDataFile)
	}
	imported, err = ImportedTools()
	if err != nil {
		return nil, nil, err
	}
	return static, imported, nil
}

func readDataset(name string) ([]models.ToolEntry, error) {
	body, err := fs.ReadFile(EmbeddedDataFS, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded dataset %s: %w", name, err)
	}
	entries, err := DecodeTools(body)
	if err != nil {
		return nil, fmt.Errorf("embedded dataset %s: %w", name, err)
	}
	return entries, nil
}
