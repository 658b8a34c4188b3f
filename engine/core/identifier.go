package core

import "github.com/google/uuid"

// Identifier tags loads and saved sessions so log lines can be correlated.
type Identifier string

// NewIdentifier returns a fresh random identifier.
func NewIdentifier() Identifier {
	return Identifier(uuid.NewString())
}

// ParseIdentifier validates a persisted identifier. Anything that is not a
// UUID is rejected.
func ParseIdentifier(s string) (Identifier, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return Identifier(id.String()), nil
}

func (id Identifier) String() string {
	return string(id)
}

// Short returns the first block of the identifier, enough for log output.
func (id Identifier) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}
