// smartmap-devserver is a stub SmartMap API for local development. It
// serves a small fixed world out of memory so the client core and the CLI
// can be exercised without the real backend.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rbsteinm/SmartMap2/entity"
	"github.com/rbsteinm/SmartMap2/internal/logger"
)

type world struct {
	mu     sync.Mutex
	users  map[int64]entity.UserSnapshot
	events map[int64]entity.EventSnapshot
	log    zerolog.Logger
}

func fixtures(log zerolog.Logger) *world {
	now := time.Now()
	return &world{
		log: log,
		users: map[int64]entity.UserSnapshot{
			1: {ID: 1, Name: "Alice Martin", PhoneNumber: "+41790000001", Email: "alice@example.com",
				Location:     entity.Position{Latitude: 46.5197, Longitude: 6.5668, Time: now},
				LocationName: "Lausanne"},
			2: {ID: 2, Name: "Bob Keller", PhoneNumber: "+41790000002", Email: "bob@example.com",
				Location:     entity.Position{Latitude: 46.2044, Longitude: 6.1432, Time: now.Add(-5 * time.Minute)},
				LocationName: "Geneva"},
			3: {ID: 3, Name: "Carla Fontana", PhoneNumber: "+41790000003", Email: "carla@example.com"},
		},
		events: map[int64]entity.EventSnapshot{
			10: {ID: 10, Name: "Balelec", Description: "Open-air festival on campus", CreatorID: 1,
				Start:        now.Add(2 * time.Hour),
				End:          now.Add(10 * time.Hour),
				Location:     entity.Position{Latitude: 46.5191, Longitude: 6.5668, Time: now},
				LocationName: "EPFL", Participants: []int64{1, 2}},
			11: {ID: 11, Name: "Jazz at the lake", CreatorID: 2,
				Start:        now.Add(24 * time.Hour),
				End:          now.Add(28 * time.Hour),
				Location:     entity.Position{Latitude: 46.2084, Longitude: 6.1500, Time: now},
				LocationName: "Geneva waterfront"},
		},
	}
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := logger.New("smartmap-devserver")
	w := fixtures(log)

	r := mux.NewRouter()
	r.HandleFunc("/api/users/search", w.findUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/users/batch", w.usersBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{id}", w.userInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id}/invite", w.invite).Methods(http.MethodPost)
	r.HandleFunc("/api/positions", w.positions).Methods(http.MethodGet)
	r.HandleFunc("/api/events/near", w.nearEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/events/batch", w.eventsBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/events/{id}", w.eventInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/invitations/{id}/accept", w.answerInvitation).Methods(http.MethodPost)
	r.HandleFunc("/api/invitations/{id}/decline", w.answerInvitation).Methods(http.MethodPost)

	log.Info().Str("addr", *addr).Msg("dev server listening")
	srv := &http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("dev server stopped")
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(rw).Encode(v)
	}
}

func pathID(req *http.Request) (int64, bool) {
	raw := mux.Vars(req)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func (w *world) userInfo(rw http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		writeJSON(rw, http.StatusBadRequest, nil)
		return
	}
	w.mu.Lock()
	u, found := w.users[id]
	w.mu.Unlock()
	if !found {
		writeJSON(rw, http.StatusNotFound, nil)
		return
	}
	writeJSON(rw, http.StatusOK, u)
}

func (w *world) usersBatch(rw http.ResponseWriter, req *http.Request) {
	var in struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeJSON(rw, http.StatusBadRequest, nil)
		return
	}
	w.mu.Lock()
	out := make([]entity.UserSnapshot, 0, len(in.IDs))
	for _, id := range in.IDs {
		if u, ok := w.users[id]; ok {
			out = append(out, u)
		}
	}
	w.mu.Unlock()
	writeJSON(rw, http.StatusOK, map[string]any{"users": out})
}

func (w *world) findUsers(rw http.ResponseWriter, req *http.Request) {
	q := req.URL.Query().Get("q")
	w.mu.Lock()
	var out []entity.UserSnapshot
	for _, u := range w.users {
		if q == "" || containsFold(u.Name, q) {
			out = append(out, u)
		}
	}
	w.mu.Unlock()
	writeJSON(rw, http.StatusOK, map[string]any{"users": out})
}

func (w *world) positions(rw http.ResponseWriter, req *http.Request) {
	w.mu.Lock()
	out := make([]entity.UserSnapshot, 0, len(w.users))
	for _, u := range w.users {
		if !u.Location.IsZero() {
			out = append(out, u)
		}
	}
	w.mu.Unlock()
	writeJSON(rw, http.StatusOK, map[string]any{"users": out})
}

func (w *world) eventInfo(rw http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		writeJSON(rw, http.StatusBadRequest, nil)
		return
	}
	w.mu.Lock()
	e, found := w.events[id]
	w.mu.Unlock()
	if !found {
		writeJSON(rw, http.StatusNotFound, nil)
		return
	}
	writeJSON(rw, http.StatusOK, e)
}

func (w *world) eventsBatch(rw http.ResponseWriter, req *http.Request) {
	var in struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeJSON(rw, http.StatusBadRequest, nil)
		return
	}
	w.mu.Lock()
	out := make([]entity.EventSnapshot, 0, len(in.IDs))
	for _, id := range in.IDs {
		if e, ok := w.events[id]; ok {
			out = append(out, e)
		}
	}
	w.mu.Unlock()
	writeJSON(rw, http.StatusOK, map[string]any{"events": out})
}

func (w *world) nearEvents(rw http.ResponseWriter, req *http.Request) {
	lat, err1 := strconv.ParseFloat(req.URL.Query().Get("latitude"), 64)
	lon, err2 := strconv.ParseFloat(req.URL.Query().Get("longitude"), 64)
	radius, err3 := strconv.ParseFloat(req.URL.Query().Get("radius"), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		writeJSON(rw, http.StatusBadRequest, nil)
		return
	}

	from := entity.Position{Latitude: lat, Longitude: lon}
	w.mu.Lock()
	var ids []int64
	for id, e := range w.events {
		if from.DistanceTo(e.Location) <= radius {
			ids = append(ids, id)
		}
	}
	w.mu.Unlock()
	writeJSON(rw, http.StatusOK, map[string]any{"eventIds": ids})
}

func (w *world) invite(rw http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		writeJSON(rw, http.StatusBadRequest, nil)
		return
	}
	w.mu.Lock()
	_, found := w.users[id]
	w.mu.Unlock()
	if !found {
		writeJSON(rw, http.StatusNotFound, nil)
		return
	}
	w.log.Info().Int64("user", id).Msg("friend request recorded")
	writeJSON(rw, http.StatusNoContent, nil)
}

func (w *world) answerInvitation(rw http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req)
	if !ok {
		writeJSON(rw, http.StatusBadRequest, nil)
		return
	}
	w.log.Info().Int64("user", id).Str("path", req.URL.Path).Msg("invitation answered")
	writeJSON(rw, http.StatusNoContent, nil)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
