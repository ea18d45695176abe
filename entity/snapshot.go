// Package entity defines the SmartMap domain model: immutable transfer
// snapshots produced by the persistent store and the network client, and the
// canonical mutable live instances exposed to the application.
package entity

import "time"

// UserSnapshot is an immutable transfer value for a user. It is produced by
// the store/network layer and merged into a live *User; it is never mutated
// after construction.
type UserSnapshot struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	PhoneNumber  string   `json:"phoneNumber,omitempty"`
	Email        string   `json:"email,omitempty"`
	Location     Position `json:"location"`
	LocationName string   `json:"locationName,omitempty"`
}

// EventSnapshot is an immutable transfer value for a public event.
type EventSnapshot struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CreatorID    int64     `json:"creatorId"`
	Start        time.Time `json:"startDate"`
	End          time.Time `json:"endDate"`
	Location     Position  `json:"location"`
	LocationName string    `json:"locationName,omitempty"`
	Participants []int64   `json:"participants,omitempty"`
}
