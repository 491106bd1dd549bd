package events

import "time"

func newEvent(t EventType, resourceKey, operation, message string) Event {
	return Event{
		Type:        t,
		ResourceKey: resourceKey,
		Message:     message,
		Timestamp:   time.Now(),
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

func Success(resourceKey, operation, message string) Event {
	return newEvent(EventTypeSuccess, resourceKey, operation, message)
}

func Error(resourceKey, operation, message string, err error) Event {
	event := newEvent(EventTypeError, resourceKey, operation, message)
	if err != nil {
		event.Error = err.Error()
	}
	return event
}

func Info(resourceKey, operation, message string) Event {
	return newEvent(EventTypeInfo, resourceKey, operation, message)
}

func Warning(resourceKey, operation, message string) Event {
	return newEvent(EventTypeWarning, resourceKey, operation, message)
}

// WithDetail returns e with one more detail set.
func (e Event) WithDetail(key string, value interface{}) Event {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}
