package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("  550E8400-E29B-41D4-A716-446655440000 ")
	if err != nil {
		t.Fatalf("Expected valid id, got error: %v", err)
	}
	if id != DefaultUserID {
		t.Errorf("Expected canonical lower-case id, got %s", id)
	}

	for _, bad := range []string{"", "   ", "not-a-uuid"} {
		if _, err := ParseID(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestNotFoundErrors(t *testing.T) {
	err := NewNotFoundError("dataset", "abc")
	if !IsNotFoundError(err) {
		t.Error("Expected NewNotFoundError to be a not-found error")
	}
	if !errors.Is(ErrChartNotFound, ErrNotFound) {
		t.Error("Expected ErrChartNotFound to wrap ErrNotFound")
	}
	if IsNotFoundError(errors.New("other")) {
		t.Error("Expected unrelated error not to be a not-found error")
	}
}
