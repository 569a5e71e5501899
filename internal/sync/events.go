package sync

import "time"

// Event types broadcast over the sync transports during an import run.
const (
	EventImportStarted  = "import.started"
	EventImportGame     = "import.game"
	EventImportFinished = "import.finished"
)

// ImportEvent is one progress update from the aggregator. Fields are
// populated per event type; zero values are omitted on the wire.
type ImportEvent struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`

	// import.game
	GameID    string `json:"game_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Installed bool   `json:"installed,omitempty"`
	New       bool   `json:"new,omitempty"`

	// import.finished
	Total      int   `json:"total,omitempty"`
	NewCount   int   `json:"new_count,omitempty"`
	DurationMS int64 `json:"duration_ms,omitempty"`

	At time.Time `json:"at"`
}
