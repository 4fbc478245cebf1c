package recall

import (
	"errors"

	"github.com/papercomputeco/repomem/pkg/llm"
)

var (
	// ErrRecall is returned when the memory store search fails.
	ErrRecall = errors.New("memory recall failed")

	// ErrGeneration is returned when the answer generator fails.
	ErrGeneration = llm.ErrGeneration
)
