package model

import "time"

// Session is a server-side login session. The browser only holds a signed
// token referencing ID; deleting the row logs the session out.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
