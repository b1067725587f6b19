package audit_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azulbi/go-auth-gateway/audit"
)

func TestSQLiteLogAppend(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log, err := audit.NewSQLiteLog(db)
	require.NoError(t, err)
	ctx := context.Background()

	attempts := []audit.LoginAttempt{
		{Identity: "u@x.com", Timestamp: time.Unix(1000, 0), Success: true, ClientAddress: "203.0.113.7", SecondFactorProvided: true},
		{Identity: "u@x.com", Timestamp: time.Unix(2000, 0), Success: false, ClientAddress: "203.0.113.7"},
	}
	for _, attempt := range attempts {
		require.NoError(t, log.Append(ctx, attempt))
	}

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM login_attempts`).Scan(&count))
	require.Equal(t, 2, count, "appends must accumulate, never overwrite")

	var success bool
	var identity string
	require.NoError(t, db.QueryRow(
		`SELECT identity, success FROM login_attempts ORDER BY id LIMIT 1`).Scan(&identity, &success))
	require.Equal(t, "u@x.com", identity)
	require.True(t, success)
}

func TestInMemoryLogAppend(t *testing.T) {
	log := audit.NewInMemoryLog()
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, audit.LoginAttempt{Identity: "u@x.com", Success: true}))
	require.NoError(t, log.Append(ctx, audit.LoginAttempt{Identity: "v@x.com", Success: false}))

	attempts := log.Attempts()
	require.Len(t, attempts, 2)
	require.Equal(t, "u@x.com", attempts[0].Identity)
	require.False(t, attempts[1].Success)
}
