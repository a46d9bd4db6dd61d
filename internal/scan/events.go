package scan

import "github.com/devscope/devscope/internal/project"

// EventType discriminates the progress event stream.
type EventType string

const (
	EventScanStarted       EventType = "scan-started"
	EventProjectDiscovered EventType = "project-discovered"
	EventScanCompleted     EventType = "scan-completed"
	EventScanError         EventType = "scan-error"
	// EventProjectUpdated carries out-of-band updates pushed via Broadcast,
	// independent of any active session.
	EventProjectUpdated EventType = "project-updated"
)

// Distinguished scan-error reasons. Subscribers can treat a cancellation
// as a normal outcome instead of a fault.
const (
	ReasonConflict  = "scan already in progress"
	ReasonCancelled = "cancelled"
)

// Event is one progress notification. Fields are populated per type:
// discoveries carry Path/Saved/Total, completions carry Total, errors
// carry Reason.
type Event struct {
	Type   EventType      `json:"type"`
	Path   string         `json:"project_path,omitempty"`
	Saved  *project.Saved `json:"project,omitempty"`
	Total  int            `json:"total_discovered,omitempty"`
	Reason string         `json:"error,omitempty"`
}
