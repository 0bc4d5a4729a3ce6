package domain

import "time"

// ID is assigned by the store on creation and never changes.
type ID int64

type User struct {
	ID           ID
	Username     string
	Email        *string
	PasswordHash string
	CreatedAt    time.Time
}
