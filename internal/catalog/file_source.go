package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// ErrEmptyPath is returned when a FileSource has no path configured
var ErrEmptyPath = errors.New("catalog path is empty")

// FileSource reads the catalog from a JSON array, or from YAML when the
// file extension is .yaml or .yml
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Products implements Source
func (f *FileSource) Products(_ context.Context) ([]models.Product, error) {
	if f.Path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []models.Product
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &products)
	default:
		err = json.Unmarshal(data, &products)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", f.Path, err)
	}

	// Match the database source: absent lists and maps serialize as [] and {}
	for i := range products {
		if products[i].Features == nil {
			products[i].Features = []string{}
		}
		if products[i].Specifications == nil {
			products[i].Specifications = map[string]string{}
		}
	}
	return products, nil
}
