package sessions

// SessionSelectedMsg is sent when a session is chosen from the list.
type SessionSelectedMsg struct {
	SessionID string
}

// NewSessionMsg is sent to create a new session.
type NewSessionMsg struct{}
