// Package sqlite persists SmartMap entities in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rbsteinm/SmartMap2/entity"
	"github.com/rbsteinm/SmartMap2/store"
)

// SqliteStore implements store.Store on a SQLite file.
type SqliteStore struct {
	db *sql.DB
}

var _ store.Store = (*SqliteStore)(nil)

// New opens (or creates) the database at path and bootstraps the schema.
func New(path string) (*SqliteStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires an existing connection (used by tests and the composition
// root when it owns the connection).
func NewWithDB(db *sql.DB) (*SqliteStore, error) {
	if err := bootstrap(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

// DB exposes the underlying connection for local tooling.
func (s *SqliteStore) DB() *sql.DB { return s.db }

func (s *SqliteStore) Close() error { return s.db.Close() }

// --- Friends ---

func (s *SqliteStore) Friend(ctx context.Context, id int64) (*entity.UserSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT Id, Name, PhoneNumber, Email, Latitude, Longitude, PositionTime, LocationName FROM Friends WHERE Id = ?`, id)
	u, err := scanFriend(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SqliteStore) Friends(ctx context.Context) ([]entity.UserSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT Id, Name, PhoneNumber, Email, Latitude, Longitude, PositionTime, LocationName FROM Friends ORDER BY Id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.UserSnapshot
	for rows.Next() {
		u, err := scanFriend(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *SqliteStore) SaveFriend(ctx context.Context, u entity.UserSnapshot) error {
	var posTime any
	if !u.Location.Time.IsZero() {
		posTime = u.Location.Time.UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO Friends (Id, Name, PhoneNumber, Email, Latitude, Longitude, PositionTime, LocationName)
		 VALUES (?,?,?,?,?,?,?,?)
		 ON CONFLICT(Id) DO UPDATE SET
			Name=excluded.Name, PhoneNumber=excluded.PhoneNumber, Email=excluded.Email,
			Latitude=excluded.Latitude, Longitude=excluded.Longitude,
			PositionTime=excluded.PositionTime, LocationName=excluded.LocationName`,
		u.ID, u.Name, u.PhoneNumber, u.Email, u.Location.Latitude, u.Location.Longitude, posTime, u.LocationName)
	return err
}

func (s *SqliteStore) DeleteFriend(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Friends WHERE Id = ?`, id)
	return err
}

// --- Events ---

func (s *SqliteStore) Event(ctx context.Context, id int64) (*entity.EventSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT Id, Name, Description, CreatorId, StartTime, EndTime, Latitude, Longitude, LocationName, Participants FROM Events WHERE Id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SqliteStore) Events(ctx context.Context) ([]entity.EventSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT Id, Name, Description, CreatorId, StartTime, EndTime, Latitude, Longitude, LocationName, Participants FROM Events ORDER BY Id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.EventSnapshot
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *SqliteStore) SaveEvent(ctx context.Context, e entity.EventSnapshot) error {
	participants, err := json.Marshal(e.Participants)
	if err != nil {
		return err
	}
	var start, end any
	if !e.Start.IsZero() {
		start = e.Start.UTC()
	}
	if !e.End.IsZero() {
		end = e.End.UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO Events (Id, Name, Description, CreatorId, StartTime, EndTime, Latitude, Longitude, LocationName, Participants)
		 VALUES (?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(Id) DO UPDATE SET
			Name=excluded.Name, Description=excluded.Description, CreatorId=excluded.CreatorId,
			StartTime=excluded.StartTime, EndTime=excluded.EndTime,
			Latitude=excluded.Latitude, Longitude=excluded.Longitude,
			LocationName=excluded.LocationName, Participants=excluded.Participants`,
		e.ID, e.Name, e.Description, e.CreatorID, start, end,
		e.Location.Latitude, e.Location.Longitude, e.LocationName, string(participants))
	return err
}

func (s *SqliteStore) DeleteEvent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Events WHERE Id = ?`, id)
	return err
}

// --- Invitations ---

func (s *SqliteStore) UnansweredInvitations(ctx context.Context) ([]entity.Invitation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT Id, Kind, SubjectId, Status, CreatedAt FROM Invitations WHERE Status IN (?, ?) ORDER BY Id`,
		int(entity.StatusUnread), int(entity.StatusRead))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Invitation
	for rows.Next() {
		var inv entity.Invitation
		var kind, status int
		if err := rows.Scan(&inv.ID, &kind, &inv.SubjectID, &status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Kind = entity.InvitationKind(kind)
		inv.Status = entity.InvitationStatus(status)
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *SqliteStore) SaveInvitation(ctx context.Context, inv entity.Invitation) (int64, error) {
	created := inv.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO Invitations (Kind, SubjectId, Status, CreatedAt) VALUES (?,?,?,?)`,
		int(inv.Kind), inv.SubjectID, int(inv.Status), created)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SqliteStore) UpdateInvitation(ctx context.Context, inv entity.Invitation) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE Invitations SET Status = ? WHERE Id = ?`, int(inv.Status), inv.ID)
	return err
}

// --- Filters ---

func (s *SqliteStore) Filters(ctx context.Context) ([]entity.Filter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT Id, Name, Members, Active FROM Filters ORDER BY Id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Filter
	for rows.Next() {
		var f entity.Filter
		var members string
		if err := rows.Scan(&f.ID, &f.Name, &members, &f.Active); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(members), &f.Members); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SqliteStore) SaveFilter(ctx context.Context, f entity.Filter) error {
	members, err := json.Marshal(f.Members)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO Filters (Id, Name, Members, Active) VALUES (?,?,?,?)
		 ON CONFLICT(Id) DO UPDATE SET Name=excluded.Name, Members=excluded.Members, Active=excluded.Active`,
		f.ID, f.Name, string(members), f.Active)
	return err
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFriend(row rowScanner) (*entity.UserSnapshot, error) {
	var u entity.UserSnapshot
	var posTime sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.PhoneNumber, &u.Email,
		&u.Location.Latitude, &u.Location.Longitude, &posTime, &u.LocationName); err != nil {
		return nil, err
	}
	if posTime.Valid {
		u.Location.Time = posTime.Time.UTC()
	}
	return &u, nil
}

func scanEvent(row rowScanner) (*entity.EventSnapshot, error) {
	var e entity.EventSnapshot
	var start, end sql.NullTime
	var participants string
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.CreatorID, &start, &end,
		&e.Location.Latitude, &e.Location.Longitude, &e.LocationName, &participants); err != nil {
		return nil, err
	}
	if start.Valid {
		e.Start = start.Time.UTC()
	}
	if end.Valid {
		e.End = end.Time.UTC()
	}
	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return nil, err
	}
	return &e, nil
}
