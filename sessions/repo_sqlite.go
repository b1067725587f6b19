package sessions

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ Store = (*SQLiteStore)(nil)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	identity        TEXT PRIMARY KEY,
	access_token    TEXT NOT NULL,
	id_token        TEXT NOT NULL,
	refresh_token   TEXT NOT NULL,
	secondary_token TEXT NOT NULL DEFAULT '',
	expires_at      INTEGER NOT NULL,
	updated_at      TIMESTAMP NOT NULL
)`

// SQLiteStore is a durable implementation of Store backed by a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and ensures the schema exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("[NewSQLiteStore] db is required")
	}
	if _, err := db.Exec(sessionsSchema); err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteStore] failed to create sessions table")
	}
	return &SQLiteStore{db: db}, nil
}

// Get retrieves the record for an identity
func (s *SQLiteStore) Get(ctx context.Context, identity string) (*Record, error) {
	if identity == "" {
		return nil, errors.New("identity is required")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT identity, access_token, id_token, refresh_token, secondary_token, expires_at, updated_at
		 FROM sessions WHERE identity = ?`, identity)

	var record Record
	err := row.Scan(
		&record.Identity,
		&record.AccessToken,
		&record.IDToken,
		&record.RefreshToken,
		&record.SecondaryToken,
		&record.ExpiresAt,
		&record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[SQLiteStore Get] query failed")
	}
	return &record, nil
}

// Put creates or overwrites the record for record.Identity
func (s *SQLiteStore) Put(ctx context.Context, record *Record) error {
	if record == nil || record.Identity == "" {
		return errors.New("record with identity is required")
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (identity, access_token, id_token, refresh_token, secondary_token, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(identity) DO UPDATE SET
			access_token    = excluded.access_token,
			id_token        = excluded.id_token,
			refresh_token   = excluded.refresh_token,
			secondary_token = excluded.secondary_token,
			expires_at      = excluded.expires_at,
			updated_at      = excluded.updated_at`,
		record.Identity,
		record.AccessToken,
		record.IDToken,
		record.RefreshToken,
		record.SecondaryToken,
		record.ExpiresAt,
		updatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "[SQLiteStore Put] upsert failed")
	}
	return nil
}
