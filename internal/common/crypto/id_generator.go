package crypto

import "github.com/google/uuid"

// IDGenerator mints the identifiers that session rows are keyed by.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random v4 UUIDs, matching the UUID primary key
// of the sessions table.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}
