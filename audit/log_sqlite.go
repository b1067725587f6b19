package audit

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ Log = (*SQLiteLog)(nil)

const attemptsSchema = `
CREATE TABLE IF NOT EXISTS login_attempts (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	identity       TEXT NOT NULL,
	attempted_at   TIMESTAMP NOT NULL,
	success        INTEGER NOT NULL,
	client_address TEXT NOT NULL,
	second_factor  INTEGER NOT NULL
)`

// SQLiteLog is a durable implementation of Log backed by a SQLite file.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog ensures the schema exists and returns the log.
func NewSQLiteLog(db *sql.DB) (*SQLiteLog, error) {
	if db == nil {
		return nil, errors.New("[NewSQLiteLog] db is required")
	}
	if _, err := db.Exec(attemptsSchema); err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteLog] failed to create login_attempts table")
	}
	return &SQLiteLog{db: db}, nil
}

// Append records one attempt
func (l *SQLiteLog) Append(ctx context.Context, attempt LoginAttempt) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO login_attempts (identity, attempted_at, success, client_address, second_factor)
		 VALUES (?, ?, ?, ?, ?)`,
		attempt.Identity,
		attempt.Timestamp,
		attempt.Success,
		attempt.ClientAddress,
		attempt.SecondFactorProvided,
	)
	if err != nil {
		return errors.Wrap(err, "[SQLiteLog Append] insert failed")
	}
	return nil
}
