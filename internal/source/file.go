package source

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// FileLoader reads a JSON, CSV, or XLSX dataset from disk. The format follows
// the file extension.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the dataset at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Name implements Loader.
func (l *FileLoader) Name() string { return "file:" + l.path }

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) ([]domain.RawIncident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	raws, err := Decode(f, FormatFromName(l.path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.path, err)
	}
	return raws, nil
}
