package ingest

// State is a stage of one ingestion.
type State string

const (
	StateIdle        State = "idle"
	StateDownloading State = "downloading"
	StateExtracting  State = "extracting"
	StateWalking     State = "walking"
	StateSummarizing State = "summarizing"
	StateResponding  State = "responding"
	StateCleanedUp   State = "cleaned_up"
)
