package sqlite

import (
	"context"
	"database/sql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS Friends (
		Id           INTEGER PRIMARY KEY,
		Name         TEXT NOT NULL,
		PhoneNumber  TEXT NOT NULL DEFAULT '',
		Email        TEXT NOT NULL DEFAULT '',
		Latitude     REAL NOT NULL DEFAULT 0,
		Longitude    REAL NOT NULL DEFAULT 0,
		PositionTime TIMESTAMP,
		LocationName TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS Events (
		Id           INTEGER PRIMARY KEY,
		Name         TEXT NOT NULL,
		Description  TEXT NOT NULL DEFAULT '',
		CreatorId    INTEGER NOT NULL,
		StartTime    TIMESTAMP,
		EndTime      TIMESTAMP,
		Latitude     REAL NOT NULL DEFAULT 0,
		Longitude    REAL NOT NULL DEFAULT 0,
		LocationName TEXT NOT NULL DEFAULT '',
		Participants TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS Invitations (
		Id        INTEGER PRIMARY KEY AUTOINCREMENT,
		Kind      INTEGER NOT NULL,
		SubjectId INTEGER NOT NULL,
		Status    INTEGER NOT NULL,
		CreatedAt TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Filters (
		Id      INTEGER PRIMARY KEY,
		Name    TEXT NOT NULL,
		Members TEXT NOT NULL DEFAULT '[]',
		Active  INTEGER NOT NULL DEFAULT 0
	)`,
}

// bootstrap creates the schema when missing. Statements are idempotent so the
// adapter can run them on every open.
func bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
