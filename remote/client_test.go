package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rbsteinm/SmartMap2/entity"
)

func TestClientEndpoints(t *testing.T) {
	julien := entity.UserSnapshot{ID: 42, Name: "Julien", Email: "julien@example.com"}
	balelec := entity.EventSnapshot{ID: 3, Name: "Balelec", CreatorID: 42}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/42":
			_ = json.NewEncoder(w).Encode(&julien)
		case r.Method == http.MethodPost && r.URL.Path == "/api/users/batch":
			var in idsPayload
			_ = json.NewDecoder(r.Body).Decode(&in)
			if len(in.IDs) != 2 {
				t.Errorf("expected 2 ids in batch, got %v", in.IDs)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"users": []entity.UserSnapshot{julien}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/search":
			if r.URL.Query().Get("q") != "ju" {
				t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"users": []entity.UserSnapshot{julien}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/positions":
			_ = json.NewEncoder(w).Encode(map[string]any{"users": []entity.UserSnapshot{julien}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/events/3":
			_ = json.NewEncoder(w).Encode(&balelec)
		case r.Method == http.MethodGet && r.URL.Path == "/api/events/near":
			_ = json.NewEncoder(w).Encode(map[string]any{"eventIds": []int64{3}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/invitations/42/accept":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	ctx := context.Background()

	u, err := c.UserInfo(ctx, 42)
	if err != nil {
		t.Fatalf("UserInfo: %v", err)
	}
	if u.Name != "Julien" {
		t.Fatalf("unexpected user %+v", u)
	}

	batch, err := c.UsersInfo(ctx, []int64{42, 43})
	if err != nil {
		t.Fatalf("UsersInfo: %v", err)
	}
	if len(batch) != 1 || batch[0].ID != 42 {
		t.Fatalf("unexpected batch %+v", batch)
	}

	found, err := c.FindUsers(ctx, "ju")
	if err != nil || len(found) != 1 {
		t.Fatalf("FindUsers: %v %+v", err, found)
	}

	pos, err := c.FriendsPositions(ctx)
	if err != nil || len(pos) != 1 {
		t.Fatalf("FriendsPositions: %v %+v", err, pos)
	}

	ev, err := c.EventInfo(ctx, 3)
	if err != nil || ev.Name != "Balelec" {
		t.Fatalf("EventInfo: %v %+v", err, ev)
	}

	ids, err := c.PublicEvents(ctx, 46.5, 6.6, 1000)
	if err != nil || len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("PublicEvents: %v %v", err, ids)
	}

	if err := c.AcceptInvitation(ctx, 42); err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}
}

func TestClientNotFoundVsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/1":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	ctx := context.Background()

	_, err := c.UserInfo(ctx, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrAccess) {
		t.Fatal("absence must not look like an access failure")
	}

	_, err = c.UserInfo(ctx, 2)
	if !errors.Is(err, ErrAccess) {
		t.Fatalf("expected ErrAccess, got %v", err)
	}

	// Transport-level failure is also an access error.
	srv.Close()
	_, err = c.UserInfo(ctx, 3)
	if !errors.Is(err, ErrAccess) {
		t.Fatalf("expected ErrAccess after close, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrNotFound, false},
		{&StatusError{Op: "x", StatusCode: 500}, true},
		{&StatusError{Op: "x", StatusCode: 503}, true},
		{&StatusError{Op: "x", StatusCode: 429}, true},
		{&StatusError{Op: "x", StatusCode: 408}, true},
		{&StatusError{Op: "x", StatusCode: 400}, false},
		{&StatusError{Op: "x", StatusCode: 403}, false},
		{wrapTransport("x", errors.New("conn refused")), true},
		{errors.New("unrelated"), false},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
