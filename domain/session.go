package domain

import "time"

// Session is the immutable authenticated context for one caller. It is built
// once per request (server side) or once per login (client side) and passed
// explicitly; logout replaces it rather than clearing ambient state.
type Session struct {
	UserID     int64     `json:"user_id"`
	Role       string    `json:"role"`
	RegisterID *int64    `json:"register_id,omitempty"`
	Token      string    `json:"token,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Valid reports whether the session carries an unexpired token.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}
