package archive

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is the pair of temporary paths used by one ingestion: the
// downloaded archive and the directory it is extracted into.
type Workspace struct {
	Archive string
	Dir     string
}

// NewWorkspace names a fresh SK-{uuid} directory and SK-{uuid}.zip archive
// under base, defaulting to os.TempDir(). Nothing is created on disk.
func NewWorkspace(base string) Workspace {
	if base == "" {
		base = os.TempDir()
	}

	name := "SK-" + uuid.NewString()
	return Workspace{
		Archive: filepath.Join(base, name+".zip"),
		Dir:     filepath.Join(base, name),
	}
}

// Cleanup removes the archive and the extraction directory. Paths that were
// never created are ignored.
func (w Workspace) Cleanup() error {
	var errs []error
	if err := os.Remove(w.Archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
