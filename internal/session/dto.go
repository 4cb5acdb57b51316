package session

// SessionView decorates a session with the "is this the caller's own
// session" flag used by the session list UI.
type SessionView struct {
	Session
	Current bool `json:"current"`
}

type TerminateAllDTO struct {
	ExcludeSessionID string `json:"exclude_session_id,omitempty"`
}

type ExtendDTO struct {
	Minutes int `json:"minutes,omitempty"`
}
