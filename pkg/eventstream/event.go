// Package eventstream describes the events repomem emits after ingestion and
// the publishers that deliver them.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRepositoryIngested is emitted after a repository is ingested.
	EventTypeRepositoryIngested = "repomem.repository.ingested"
)

// RepositoryIngestedEvent is a transport-neutral event payload for a
// completed ingestion.
type RepositoryIngestedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// Repository is the API URI of the ingested repository.
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
	Collection string `json:"collection"`
	Pattern    string `json:"pattern"`

	Files      int   `json:"files"`
	Records    int   `json:"records"`
	DurationMs int64 `json:"duration_ms"`
	Summarized bool  `json:"summarized"`
}

// NewRepositoryIngestedEvent returns an event stamped with a fresh id and
// the current time.
func NewRepositoryIngestedEvent(repository, branch, collection string) *RepositoryIngestedEvent {
	return &RepositoryIngestedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeRepositoryIngested,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Repository:    repository,
		Branch:        branch,
		Collection:    collection,
	}
}

// Key is the partitioning key, so events of one repository stay ordered.
func (e *RepositoryIngestedEvent) Key() string {
	return e.Repository + "@" + e.Branch
}
