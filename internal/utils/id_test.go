package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewIDIsUUID(t *testing.T) {
	a, b := NewID(), NewID()
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("NewID() = %q: %v", a, err)
	}
	if a == b {
		t.Fatalf("NewID repeated %q", a)
	}
}
