package memory

import "errors"

// ErrInvalidRecord is returned when a record has no collection or id.
var ErrInvalidRecord = errors.New("invalid memory record")
