package events

import "time"

// EventStorage defines the interface for event storage operations.
type EventStorage interface {
	// StoreEvent stores a single event
	StoreEvent(event Event) error

	// ListEvents lists events matching the provided filters, newest first
	ListEvents(filters EventFilters) ([]Event, error)

	// GetEventsByResource retrieves events for a specific resource key
	GetEventsByResource(key string, limit int) ([]Event, error)

	// GetRecentErrors retrieves recent error events
	GetRecentErrors(limit int) ([]Event, error)

	// CleanupOldEvents removes events older than the specified time
	CleanupOldEvents(before time.Time) (int, error)
}

// Recorder is the write side of EventStorage.
type Recorder interface {
	StoreEvent(event Event) error
}

var _ EventStorage = (*Storage)(nil)
