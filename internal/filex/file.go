// Package filex contains local file helpers used by the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/skincare/internal/client/models"
)

// EnsureDir creates the parent directory of path (for example the local
// SQLite database file) if it does not exist yet.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadImage loads a local file and detects its content type from the data,
// not from the file extension.
func ReadImage(path string) (models.ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ImageFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	mtype := mimetype.Detect(data)

	return models.ImageFile{
		Name:        filepath.Base(path),
		ContentType: mtype.String(),
		Data:        data,
	}, nil
}
