package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks the zip archive at archivePath into targetDir, creating it.
// Entries resolving outside targetDir are rejected.
func Extract(archivePath, targetDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrCorruptArchive, archivePath, err)
	}
	defer r.Close()

	root, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving extraction directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating extraction directory: %w", err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, root); err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(f *zip.File, root string) error {
	path := filepath.Join(root, filepath.FromSlash(f.Name))
	if path != root && !strings.HasPrefix(path, root+string(os.PathSeparator)) {
		return fmt.Errorf("%w: entry %q escapes the extraction directory", ErrCorruptArchive, f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: opening entry %q: %v", ErrCorruptArchive, f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: reading entry %q: %v", ErrCorruptArchive, f.Name, err)
	}

	return dst.Close()
}
