package entity

import (
	"fmt"
	"sync"
	"time"
)

// UserKind separates confirmed friends from users we only know about.
type UserKind int

const (
	KindFriend UserKind = iota
	KindStranger
)

func (k UserKind) String() string {
	switch k {
	case KindFriend:
		return "friend"
	case KindStranger:
		return "stranger"
	default:
		return fmt.Sprintf("UserKind(%d)", int(k))
	}
}

// User is the canonical live instance for a user. The cache keeps at most one
// *User per (kind, id); holders of the pointer observe updates applied through
// Update. The id and kind never change after construction.
type User struct {
	id   int64
	kind UserKind

	mu           sync.RWMutex
	name         string
	phoneNumber  string
	email        string
	location     Position
	locationName string
}

// NewFriend materializes a friend live instance from a snapshot.
func NewFriend(s UserSnapshot) *User { return newUser(KindFriend, s) }

// NewStranger materializes a stranger live instance from a snapshot.
func NewStranger(s UserSnapshot) *User { return newUser(KindStranger, s) }

func newUser(kind UserKind, s UserSnapshot) *User {
	return &User{
		id:           s.ID,
		kind:         kind,
		name:         s.Name,
		phoneNumber:  s.PhoneNumber,
		email:        s.Email,
		location:     s.Location,
		locationName: s.LocationName,
	}
}

func (u *User) ID() int64      { return u.id }
func (u *User) Kind() UserKind { return u.kind }

func (u *User) Name() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.name
}

func (u *User) PhoneNumber() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.phoneNumber
}

func (u *User) Email() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.email
}

func (u *User) Location() Position {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.location
}

func (u *User) LocationName() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.locationName
}

// LastSeen is the timestamp of the most recent position update.
func (u *User) LastSeen() time.Time {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.location.Time
}

// Subtitle is the one-line description shown next to the user's name.
func (u *User) Subtitle() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.locationName == "" {
		return "position unknown"
	}
	return "near " + u.locationName
}

// Update merges a newer snapshot into the live instance in place. Snapshots
// for a different id are ignored.
func (u *User) Update(s UserSnapshot) {
	if s.ID != u.id {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.name = s.Name
	u.phoneNumber = s.PhoneNumber
	u.email = s.Email
	u.location = s.Location
	u.locationName = s.LocationName
}

// Snapshot returns an immutable copy of the current state.
func (u *User) Snapshot() UserSnapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return UserSnapshot{
		ID:           u.id,
		Name:         u.name,
		PhoneNumber:  u.phoneNumber,
		Email:        u.email,
		Location:     u.location,
		LocationName: u.locationName,
	}
}
