package session

import "time"

// Actor identifies who requested an action in the system.
type Actor struct {
	// Hostname is the machine name where the action was requested.
	Hostname string `json:"hostname"`
	// Username is the system user who requested the action.
	Username string `json:"username"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// State describes where a recording session is in its lifecycle.
type State string

const (
	// StatePending means the session is created but capture has not started.
	StatePending State = "pending"
	// StateRecording means capture is in progress.
	StateRecording State = "recording"
	// StateConverting means capture finished and post-processing is running.
	StateConverting State = "converting"
	// StateCompleted means the session finished and produced output files.
	StateCompleted State = "completed"
	// StateStopped means the session was stopped by a user request.
	StateStopped State = "stopped"
	// StateFailed means capture produced nothing or aborted abnormally.
	StateFailed State = "failed"
)

// IsTerminal reports whether the state allows no further transitions.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateStopped, StateFailed:
		return true
	default:
		return false
	}
}

// Session represents one recording of one stream URL.
type Session struct {
	// ID is a short unique token identifying the session.
	ID string `json:"id"`
	// URL is the stream page URL being recorded.
	URL string `json:"url"`
	// Platform is the detected streaming platform name.
	Platform string `json:"platform"`
	// Quality is the requested stream quality.
	Quality string `json:"quality"`
	// Format is the post-processing output format.
	Format string `json:"format"`
	// State is the current lifecycle state.
	State State `json:"state"`
	// Error holds the failure reason for failed sessions.
	Error string `json:"error,omitempty"`
	// OutputFiles lists the files the session produced, in order.
	OutputFiles []string `json:"output_files,omitempty"`
	// BytesWritten counts captured bytes across all segments.
	BytesWritten int64 `json:"bytes_written"`
	// StartedBy records who requested the recording.
	StartedBy *Actor `json:"started_by,omitempty"`
	// StartedAt is when the session was created.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the session reached a terminal state.
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Clone returns a copy of the session to avoid leaking internal references.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.StartedBy = s.StartedBy.Clone()
	cloned.OutputFiles = append([]string(nil), s.OutputFiles...)

	return &cloned
}
