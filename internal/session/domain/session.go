package domain

import "time"

// Session is the server-held record of one authenticated client. The id is
// opaque to the client; the cookie carries it inside a signed token.
type Session struct {
	ID         string
	UserID     int64
	Username   string
	CreatedAt  time.Time
	LastSeenAt time.Time
}
