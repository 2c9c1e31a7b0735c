// internal/store/memory_test.go
package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

func seedState(version int64) *game.GameState {
	return &game.GameState{
		ID:     "doc-1",
		Status: game.StatusPlaying,
		Players: []models.Player{
			{ID: uuid.New(), Name: "Alice"},
			{ID: uuid.New(), Name: "Bob"},
		},
		IsClockwise: true,
		Version:     version,
	}
}

func TestMemoryStoreReadMissing(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.Read(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreWriteAndRead(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, seedState(1)))

	got, err := m.Read(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	// reads are isolated copies
	got.Players[0].Name = "Mallory"
	again, err := m.Read(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Players[0].Name)
}

func TestMemoryStoreVersionCAS(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, m.Write(ctx, seedState(2)), ErrVersionConflict, "first write must be version 1")
	require.NoError(t, m.Write(ctx, seedState(1)))

	assert.ErrorIs(t, m.Write(ctx, seedState(1)), ErrVersionConflict, "replayed version loses")
	assert.ErrorIs(t, m.Write(ctx, seedState(3)), ErrVersionConflict, "gaps are rejected")
	require.NoError(t, m.Write(ctx, seedState(2)))
}

func TestMemoryStoreSubscribe(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var mu sync.Mutex
	seen := map[int64]bool{}
	unsub, err := m.Subscribe(ctx, "doc-1", func(st *game.GameState) {
		mu.Lock()
		defer mu.Unlock()
		seen[st.Version] = true
	})
	require.NoError(t, err)

	require.NoError(t, m.Write(ctx, seedState(1)))
	require.NoError(t, m.Write(ctx, seedState(2)))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[1] && seen[2]
	}, time.Second, 5*time.Millisecond)

	unsub()
	require.NoError(t, m.Write(ctx, seedState(3)))
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, seen[3], "no notifications after unsubscribe")
}
