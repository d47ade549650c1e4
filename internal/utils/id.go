package utils

import "github.com/google/uuid"

// NewID returns a random identifier for connections and rendered widgets.
func NewID() string {
	return uuid.NewString()
}
