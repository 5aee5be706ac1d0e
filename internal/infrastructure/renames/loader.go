// Package renames loads the versioned product rename table used to map
// spreadsheet spellings onto catalog names.
package renames

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/balcao/backend/internal/domain/bulk"
	"gopkg.in/yaml.v3"
)

//go:embed default_renames.yaml
var defaultTable []byte

// ErrTableNotFound is returned when a configured table file does not exist
var ErrTableNotFound = errors.New("rename table not found")

type tableFile struct {
	Version string            `yaml:"version"`
	Renames map[string]string `yaml:"renames"`
}

// Default returns the rename table shipped with the binary
func Default() (bulk.RenameTable, error) {
	return LoadFromBytes(defaultTable)
}

// Load reads the table at path, or the built-in table when path is empty
func Load(path string) (bulk.RenameTable, error) {
	if path == "" {
		return Default()
	}
	return LoadFromFile(path)
}

// LoadFromFile loads a rename table from a YAML file
func LoadFromFile(path string) (bulk.RenameTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bulk.RenameTable{}, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return bulk.RenameTable{}, fmt.Errorf("reading rename table: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a rename table from YAML bytes
func LoadFromBytes(data []byte) (bulk.RenameTable, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return bulk.RenameTable{}, fmt.Errorf("parsing rename table: %w", err)
	}
	if f.Version == "" {
		return bulk.RenameTable{}, errors.New("rename table: version is required")
	}
	return bulk.NewRenameTable(f.Version, f.Renames)
}
