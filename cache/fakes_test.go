package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/rbsteinm/SmartMap2/entity"
	"github.com/rbsteinm/SmartMap2/remote"
)

// fakeStore is an in-memory store.Store with per-method call counters and
// an injectable read error.
type fakeStore struct {
	mu          sync.Mutex
	friends     map[int64]entity.UserSnapshot
	events      map[int64]entity.EventSnapshot
	invitations map[int64]entity.Invitation
	filters     map[int64]entity.Filter
	nextInvID   int64

	readErr    error
	friendGets int
	eventGets  int
	saves      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		friends:     make(map[int64]entity.UserSnapshot),
		events:      make(map[int64]entity.EventSnapshot),
		invitations: make(map[int64]entity.Invitation),
		filters:     make(map[int64]entity.Filter),
	}
}

func (s *fakeStore) Friend(_ context.Context, id int64) (*entity.UserSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendGets++
	if s.readErr != nil {
		return nil, s.readErr
	}
	if snap, ok := s.friends[id]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (s *fakeStore) Friends(context.Context) ([]entity.UserSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make([]entity.UserSnapshot, 0, len(s.friends))
	for _, snap := range s.friends {
		out = append(out, snap)
	}
	return out, nil
}

func (s *fakeStore) SaveFriend(_ context.Context, snap entity.UserSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.friends[snap.ID] = snap
	return nil
}

func (s *fakeStore) DeleteFriend(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends, id)
	return nil
}

func (s *fakeStore) Event(_ context.Context, id int64) (*entity.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventGets++
	if s.readErr != nil {
		return nil, s.readErr
	}
	if snap, ok := s.events[id]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (s *fakeStore) Events(context.Context) ([]entity.EventSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make([]entity.EventSnapshot, 0, len(s.events))
	for _, snap := range s.events {
		out = append(out, snap)
	}
	return out, nil
}

func (s *fakeStore) SaveEvent(_ context.Context, snap entity.EventSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.events[snap.ID] = snap
	return nil
}

func (s *fakeStore) DeleteEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

func (s *fakeStore) UnansweredInvitations(context.Context) ([]entity.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Invitation
	for _, inv := range s.invitations {
		if !inv.Status.Answered() {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveInvitation(_ context.Context, inv entity.Invitation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextInvID++
	inv.ID = s.nextInvID
	s.invitations[inv.ID] = inv
	return inv.ID, nil
}

func (s *fakeStore) UpdateInvitation(_ context.Context, inv entity.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations[inv.ID] = inv
	return nil
}

func (s *fakeStore) Filters(context.Context) ([]entity.Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Filter, 0, len(s.filters))
	for _, f := range s.filters {
		out = append(out, f)
	}
	return out, nil
}

func (s *fakeStore) SaveFilter(_ context.Context, f entity.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[f.ID] = f
	return nil
}

func (s *fakeStore) Close() error { return nil }

// fakeRemote serves canned snapshots and counts round trips.
type fakeRemote struct {
	mu     sync.Mutex
	users  map[int64]entity.UserSnapshot
	events map[int64]entity.EventSnapshot
	err    error

	userCalls  int
	batchCalls int
	eventCalls int
	batchIDs   [][]int64
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		users:  make(map[int64]entity.UserSnapshot),
		events: make(map[int64]entity.EventSnapshot),
	}
}

func (r *fakeRemote) UserInfo(_ context.Context, id int64) (*entity.UserSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userCalls++
	if r.err != nil {
		return nil, r.err
	}
	if snap, ok := r.users[id]; ok {
		return &snap, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, remote.ErrNotFound)
}

func (r *fakeRemote) UsersInfo(_ context.Context, ids []int64) ([]entity.UserSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	r.batchIDs = append(r.batchIDs, ids)
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.UserSnapshot
	for _, id := range ids {
		if snap, ok := r.users[id]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (r *fakeRemote) FindUsers(context.Context, string) ([]entity.UserSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userCalls++
	var out []entity.UserSnapshot
	for _, snap := range r.users {
		out = append(out, snap)
	}
	return out, nil
}

func (r *fakeRemote) FriendsPositions(context.Context) ([]entity.UserSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.UserSnapshot
	for _, snap := range r.users {
		out = append(out, snap)
	}
	return out, nil
}

func (r *fakeRemote) EventInfo(_ context.Context, id int64) (*entity.EventSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventCalls++
	if r.err != nil {
		return nil, r.err
	}
	if snap, ok := r.events[id]; ok {
		return &snap, nil
	}
	return nil, fmt.Errorf("event %d: %w", id, remote.ErrNotFound)
}

func (r *fakeRemote) EventsInfo(_ context.Context, ids []int64) ([]entity.EventSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	r.batchIDs = append(r.batchIDs, ids)
	var out []entity.EventSnapshot
	for _, id := range ids {
		if snap, ok := r.events[id]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (r *fakeRemote) PublicEvents(_ context.Context, _, _, _ float64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.events))
	for id := range r.events {
		out = append(out, id)
	}
	return out, nil
}

func (r *fakeRemote) InviteFriend(context.Context, int64) error     { return nil }
func (r *fakeRemote) AcceptInvitation(context.Context, int64) error { return nil }
func (r *fakeRemote) DeclineInvitation(context.Context, int64) error {
	return nil
}
