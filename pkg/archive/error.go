package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when the repository URL or branch is empty
	// or cannot be turned into a request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNetwork is returned when the archive download fails in transport or
	// is cancelled.
	ErrNetwork = errors.New("network failure")

	// ErrCorruptArchive is returned when the downloaded file is not a readable
	// zip archive.
	ErrCorruptArchive = errors.New("corrupt archive")
)

// DownloadError is returned when the archive host answers with a non-2xx status.
type DownloadError struct {
	StatusCode int
	Status     string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("archive download failed: %s", e.Status)
}
