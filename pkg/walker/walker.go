// Package walker lists the files of an extracted repository archive.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultPattern is used when ListFiles is given an empty pattern.
const DefaultPattern = "*.md"

// ErrInvalidPattern is returned for malformed glob patterns.
var ErrInvalidPattern = errors.New("invalid search pattern")

// File is a regular file found under the walked root.
type File struct {
	// Path is the absolute filesystem path.
	Path string

	// URI is the forward-slash path relative to the root, without the
	// archive's injected top-level folder.
	URI string

	// Ext is the file extension including the dot, e.g. ".md".
	Ext string
}

// ValidatePattern reports whether pattern is a well-formed glob.
func ValidatePattern(pattern string) error {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return nil
}

// ListFiles walks root recursively and returns every regular file whose base
// name matches pattern. injectedFolder, when it is the first path component
// below root, is stripped from the resulting URIs. No matches yields an
// empty slice.
func ListFiles(root, pattern, injectedFolder string) ([]File, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	files := []File{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		matched, _ := filepath.Match(pattern, d.Name())
		if !matched {
			return nil
		}

		files = append(files, File{
			Path: path,
			URI:  FileURI(root, path, injectedFolder),
			Ext:  filepath.Ext(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}

// FileURI computes the URI of path below root. Applying it to its own output
// as a relative path returns the same value.
func FileURI(root, path, injectedFolder string) string {
	rel := strings.TrimPrefix(path, root)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))

	if injectedFolder != "" {
		rel = strings.TrimPrefix(rel, injectedFolder+string(filepath.Separator))
	}

	return filepath.ToSlash(rel)
}
