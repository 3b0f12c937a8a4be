package models

// SessionState names a stage of the acquisition state machine.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateAdding    SessionState = "adding"
	StatePolling   SessionState = "polling"
	StateReady     SessionState = "ready"
	StateFailed    SessionState = "failed"
	StateCancelled SessionState = "cancelled"
)

// Terminal reports whether the state machine has settled.
func (s SessionState) Terminal() bool {
	return s == StateReady || s == StateFailed || s == StateCancelled
}

// FileEntry is one playable file resolved from a finished acquisition.
type FileEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Link string `json:"link"`
}

// SessionSnapshot is a point-in-time copy of an acquisition session, safe to
// hand to the host UI while the session keeps running.
type SessionSnapshot struct {
	Hash     string       `json:"hash"`
	Title    string       `json:"title"`
	RemoteID string       `json:"remoteId,omitempty"`
	State    SessionState `json:"state"`
	Attempt  int          `json:"attempt"`

	// Progress is normalized to [0,100] regardless of how the remote
	// reports it.
	Progress float64 `json:"progress"`
	Speed    int64   `json:"speed"`      // bytes/second
	ETA      int64   `json:"etaSeconds"` // seconds, 0 when unknown

	Files        []FileEntry `json:"files,omitempty"`
	ErrorKind    string      `json:"errorKind,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}
