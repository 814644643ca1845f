package domain

import "time"

// Session is the single authenticated slot of a runtime context. It is always
// replaced wholesale, never partially updated.
type Session struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session has not yet expired at the given instant.
func (s *Session) ValidAt(now time.Time) bool {
	return s != nil && !now.After(s.ExpiresAt)
}

// FlowState holds the ephemeral values of one in-flight login attempt. It is
// single-use: cleared unconditionally once the callback has been processed.
type FlowState struct {
	CSRFState    string `json:"csrfState"`
	PKCEVerifier string `json:"pkceVerifier"`
}
