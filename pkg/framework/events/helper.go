package events

import "github.com/go-logr/logr"

// StoreEventSafe records event and only logs when that fails.
func StoreEventSafe(recorder Recorder, logger logr.Logger, event Event) {
	if recorder == nil {
		return
	}
	if err := recorder.StoreEvent(event); err != nil {
		logger.V(1).Info("failed to store event",
			"error", err,
			"type", event.Type,
			"resourceKey", event.ResourceKey,
			"message", event.Message)
	}
}
