package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/google/uuid"

	"schedcal/internal/fsutil"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
)

var ErrNotFound = errors.New("store: event not found")

// fileFormat is the on-disk layout: {"events": [...]}.
type fileFormat struct {
	Events []model.Event `json:"events"`
}

// Store keeps events in memory and mirrors every change to a JSON file.
// Each mutation builds a new slice, persists it, and only then swaps it in,
// so a failed write leaves the previous state intact.
type Store struct {
	mu     sync.RWMutex
	path   string
	events []model.Event
	newID  func() string
}

// Open loads path, or starts empty if it does not exist yet. An empty path
// gives a memory-only store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		newID: func() string { return uuid.New().String() },
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Info("event store not found; starting empty", "path", path)
			return s, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	s.events = ff.Events
	appLog.Info("event store loaded", "path", path, "event_count", len(s.events))
	return s, nil
}

// List returns a copy of all events in insertion order.
func (s *Store) List() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Get(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.events[i], nil
	}
	return model.Event{}, ErrNotFound
}

// Create assigns a fresh ID (any ID on ev is ignored) and stores ev.
func (s *Store) Create(ev model.Event) (model.Event, error) {
	out, err := s.CreateMany([]model.Event{ev})
	if err != nil {
		return model.Event{}, err
	}
	return out[0], nil
}

// CreateMany stores evs atomically, e.g. all occurrences of a series.
func (s *Store) CreateMany(evs []model.Event) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]model.Event, len(evs))
	next := make([]model.Event, len(s.events), len(s.events)+len(evs))
	copy(next, s.events)
	for i, ev := range evs {
		ev.ID = s.newID()
		created[i] = ev
		next = append(next, ev)
	}
	if err := s.commit(next); err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces the event stored under id; the stored ID is kept.
func (s *Store) Update(id string, ev model.Event) (model.Event, error) {
	ev.ID = id
	out, err := s.UpdateMany([]model.Event{ev})
	if err != nil {
		return model.Event{}, err
	}
	return out[0], nil
}

// UpdateMany replaces every event by its ID. If any ID is unknown nothing
// is changed and ErrNotFound is returned.
func (s *Store) UpdateMany(evs []model.Event) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Event, len(s.events))
	copy(next, s.events)
	for _, ev := range evs {
		i := indexIn(next, ev.ID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ev.ID)
		}
		next[i] = ev
	}
	if err := s.commit(next); err != nil {
		return nil, err
	}
	out := make([]model.Event, len(evs))
	copy(out, evs)
	return out, nil
}

func (s *Store) Delete(id string) error {
	return s.DeleteMany([]string{id})
}

// DeleteMany removes all ids, or none if any is unknown.
func (s *Store) DeleteMany(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.index(id) < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		drop[id] = struct{}{}
	}
	next := make([]model.Event, 0, len(s.events))
	for _, ev := range s.events {
		if _, ok := drop[ev.ID]; !ok {
			next = append(next, ev)
		}
	}
	return s.commit(next)
}

// index must be called with mu held.
func (s *Store) index(id string) int {
	return indexIn(s.events, id)
}

func indexIn(evs []model.Event, id string) int {
	if id == "" {
		return -1
	}
	for i, ev := range evs {
		if ev.ID == id {
			return i
		}
	}
	return -1
}

// commit persists next and swaps it in. mu must be held for writing.
func (s *Store) commit(next []model.Event) error {
	if s.path != "" {
		if err := writeFile(s.path, next); err != nil {
			appLog.Error("event store write failed", err, "path", s.path)
			return err
		}
	}
	s.events = next
	return nil
}

// writeFile encodes events and replaces path with them.
func writeFile(path string, events []model.Event) error {
	if events == nil {
		events = []model.Event{}
	}
	data, err := json.MarshalIndent(fileFormat{Events: events}, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
