package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azulbi/go-auth-gateway/sessions"
)

func TestInMemoryStorePutIsUpsert(t *testing.T) {
	store := sessions.NewInMemoryStore()
	ctx := context.Background()

	record := sessions.Record{
		Identity:     "u@x.com",
		AccessToken:  "a1",
		IDToken:      "i1",
		RefreshToken: "r1",
		ExpiresAt:    1000,
	}
	require.NoError(t, store.Put(ctx, &record))

	record.AccessToken = "a2"
	require.NoError(t, store.Put(ctx, &record))

	got, err := store.Get(ctx, "u@x.com")
	require.NoError(t, err)
	require.Equal(t, "a2", got.AccessToken)
	require.Equal(t, "r1", got.RefreshToken)
}

func TestInMemoryStoreGetAbsent(t *testing.T) {
	store := sessions.NewInMemoryStore()

	_, err := store.Get(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestInMemoryStoreReturnsCopies(t *testing.T) {
	store := sessions.NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &sessions.Record{Identity: "u@x.com", AccessToken: "a1"}))

	got, err := store.Get(ctx, "u@x.com")
	require.NoError(t, err)
	got.AccessToken = "mutated"

	again, err := store.Get(ctx, "u@x.com")
	require.NoError(t, err)
	require.Equal(t, "a1", again.AccessToken)
}

func TestRecordValidFor(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	grace := time.Minute

	record := &sessions.Record{AccessToken: "a1", ExpiresAt: now.Add(2 * time.Minute).Unix()}
	require.True(t, record.ValidFor(now, grace))

	record.ExpiresAt = now.Add(30 * time.Second).Unix() // inside grace
	require.False(t, record.ValidFor(now, grace))

	record.ExpiresAt = now.Add(-time.Minute).Unix()
	require.False(t, record.ValidFor(now, grace))

	var nilRecord *sessions.Record
	require.False(t, nilRecord.ValidFor(now, grace))
}
