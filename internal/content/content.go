// Package content loads the static pathway and quiz tables
package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"coachpath/internal/coaching"
	"coachpath/internal/models"
)

//go:embed pathways.json
var defaultContent []byte

type document struct {
	Questions []models.QuizQuestion   `json:"questions"`
	Pathways  []models.PathwayContent `json:"pathways"`
}

// Default returns the catalog built from the embedded content
func Default() (*coaching.Catalog, error) {
	return Parse(bytes.NewReader(defaultContent))
}

// Load reads a content file; an empty path returns the embedded content
func Load(path string) (*coaching.Catalog, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open content file: %w", err)
	}
	defer f.Close()

	catalog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// Parse decodes a content document and validates it into a catalog
func Parse(r io.Reader) (*coaching.Catalog, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	return coaching.NewCatalog(doc.Pathways, doc.Questions)
}
