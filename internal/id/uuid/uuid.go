// Package uuid generates run and request identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator implements news.IDGenerator.
type Generator struct {
	source func() (uuid.UUID, error)
}

// New returns a Generator of time-ordered UUIDv7 values, used for collection
// run IDs so they sort by start time.
func New() *Generator {
	return &Generator{source: uuid.NewV7}
}

// NewRandom returns a Generator of UUIDv4 values for request IDs.
func NewRandom() *Generator {
	return &Generator{source: uuid.NewRandom}
}

// NewID returns the next identifier.
func (g *Generator) NewID() (string, error) {
	id, err := g.source()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}
