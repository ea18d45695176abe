package entity

import (
	"slices"
	"sync"
	"time"
)

// Event is the canonical live instance for a public event. As with User, the
// cache keeps a single *Event per id and mutates it in place from newer
// snapshots.
type Event struct {
	id int64

	mu           sync.RWMutex
	name         string
	description  string
	creatorID    int64
	start        time.Time
	end          time.Time
	location     Position
	locationName string
	participants []int64
}

// NewEvent materializes an event live instance from a snapshot.
func NewEvent(s EventSnapshot) *Event {
	return &Event{
		id:           s.ID,
		name:         s.Name,
		description:  s.Description,
		creatorID:    s.CreatorID,
		start:        s.Start,
		end:          s.End,
		location:     s.Location,
		locationName: s.LocationName,
		participants: slices.Clone(s.Participants),
	}
}

func (e *Event) ID() int64 { return e.id }

func (e *Event) Name() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.name
}

func (e *Event) Description() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.description
}

func (e *Event) CreatorID() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.creatorID
}

func (e *Event) Start() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.start
}

func (e *Event) End() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.end
}

func (e *Event) Location() Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.location
}

func (e *Event) LocationName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.locationName
}

// Participants returns a copy of the participant id list.
func (e *Event) Participants() []int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.participants)
}

// IsLive reports whether t falls inside the event's time window.
func (e *Event) IsLive(t time.Time) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !t.Before(e.start) && !t.After(e.end)
}

// Subtitle is the one-line description shown next to the event's name.
func (e *Event) Subtitle() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.locationName == "" {
		return e.start.Format("Jan 2 15:04")
	}
	return e.start.Format("Jan 2 15:04") + " at " + e.locationName
}

// Update merges a newer snapshot into the live instance in place. Snapshots
// for a different id are ignored.
func (e *Event) Update(s EventSnapshot) {
	if s.ID != e.id {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = s.Name
	e.description = s.Description
	e.creatorID = s.CreatorID
	e.start = s.Start
	e.end = s.End
	e.location = s.Location
	e.locationName = s.LocationName
	e.participants = slices.Clone(s.Participants)
}

// Snapshot returns an immutable copy of the current state.
func (e *Event) Snapshot() EventSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return EventSnapshot{
		ID:           e.id,
		Name:         e.name,
		Description:  e.description,
		CreatorID:    e.creatorID,
		Start:        e.start,
		End:          e.end,
		Location:     e.location,
		LocationName: e.locationName,
		Participants: slices.Clone(e.participants),
	}
}
