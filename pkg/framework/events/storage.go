package events

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/garunski/extension-conductor/pkg/framework/database"
	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
)

const (
	eventsPrefix     = "events/all/"
	byResourcePrefix = "events/by-resource/"
	byTypePrefix     = "events/by-type/"
)

type Storage struct {
	db     *database.DB
	logger logr.Logger
}

func NewStorage(db *database.DB, logger logr.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// keys returns the primary key followed by its index keys.
func keys(event Event) []string {
	stamp := fmt.Sprintf("%020d/%s", event.Timestamp.UnixNano(), event.ID)
	out := []string{eventsPrefix + stamp}
	if event.ResourceKey != "" {
		out = append(out, byResourcePrefix+url.PathEscape(event.ResourceKey)+"/"+stamp)
	}
	return append(out, byTypePrefix+string(event.Type)+"/"+stamp)
}

func (s *Storage) StoreEvent(event Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %w", apperrors.ErrEventStore, err)
	}

	items := make(map[string][]byte, 3)
	for _, key := range keys(event) {
		items[key] = data
	}
	if err := s.db.BatchSet(items); err != nil {
		return fmt.Errorf("%w: failed to store event: %w", apperrors.ErrEventStore, err)
	}

	return nil
}

func (s *Storage) ListEvents(filters EventFilters) ([]Event, error) {
	prefix := eventsPrefix
	switch {
	case filters.ResourceKey != "":
		prefix = byResourcePrefix + url.PathEscape(filters.ResourceKey) + "/"
	case filters.Type != "":
		prefix = byTypePrefix + string(filters.Type) + "/"
	}

	allItems, err := s.db.List(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list events: %w", apperrors.ErrEventStore, err)
	}

	events := make([]Event, 0, len(allItems))
	for key, data := range allItems {
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			s.logger.Error(err, "failed to unmarshal event", "key", key)
			continue
		}

		if filters.ResourceKey != "" && event.ResourceKey != filters.ResourceKey {
			continue
		}
		if filters.Type != "" && event.Type != filters.Type {
			continue
		}
		if !filters.Since.IsZero() && event.Timestamp.Before(filters.Since) {
			continue
		}
		if !filters.Until.IsZero() && event.Timestamp.After(filters.Until) {
			continue
		}

		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		return []Event{}, nil
	}
	events = events[offset:]

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(events) > limit {
		events = events[:limit]
	}

	return events, nil
}

func (s *Storage) GetEventsByResource(key string, limit int) ([]Event, error) {
	return s.ListEvents(EventFilters{ResourceKey: key, Limit: limit})
}

func (s *Storage) GetRecentErrors(limit int) ([]Event, error) {
	return s.ListEvents(EventFilters{Type: EventTypeError, Limit: limit})
}

// CleanupOldEvents deletes every event older than before together with its
// index keys and returns how many events were removed.
func (s *Storage) CleanupOldEvents(before time.Time) (int, error) {
	allItems, err := s.db.List(eventsPrefix)
	if err != nil {
		return 0, apperrors.WrapStorage(err, "failed to list events for cleanup")
	}

	var stale [][]string
	for key, data := range allItems {
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			// unreadable, drop the primary key only
			stale = append(stale, []string{key})
			continue
		}
		if event.Timestamp.Before(before) {
			stale = append(stale, keys(event))
		}
	}

	deleted := 0
	for i := 0; i < len(stale); i += DefaultBatchSize {
		end := i + DefaultBatchSize
		if end > len(stale) {
			end = len(stale)
		}

		var batch []string
		for _, ks := range stale[i:end] {
			batch = append(batch, ks...)
		}
		if err := s.db.BatchDelete(batch); err != nil {
			return deleted, fmt.Errorf("%w: cleanup: %w", apperrors.ErrEventStore, err)
		}
		deleted += end - i
	}

	s.logger.Info("Cleaned up old events", "deleted", deleted, "before", before)
	return deleted, nil
}
