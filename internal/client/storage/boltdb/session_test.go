package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/client/storage"
)

func TestSaveSession_GetSession(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	session := &storage.Session{
		Username:    "grip_lead",
		AccessToken: "token-123",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}

	require.NoError(t, store.SaveSession(ctx, session))

	loaded, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestGetSession_NotFound(t *testing.T) {
	store := newTestStorage(t)

	loaded, err := store.GetSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.Nil(t, loaded)
}

func TestDeleteSession(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	session := &storage.Session{Username: "grip_lead", AccessToken: "token-123"}
	require.NoError(t, store.SaveSession(ctx, session))

	require.NoError(t, store.DeleteSession(ctx))

	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// Deleting again is a no-op
	assert.NoError(t, store.DeleteSession(ctx))
}

func TestSaveSession_Replaces(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, &storage.Session{Username: "old"}))
	require.NoError(t, store.SaveSession(ctx, &storage.Session{Username: "new"}))

	loaded, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.Username)
}
