// internal/docsync/syncer_test.go
package docsync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/store"
)

func card(color models.CardColor, value models.CardValue) models.Card {
	return models.Card{ID: uuid.New(), Color: color, Value: value}
}

// seedGame writes a deterministic two-player state at version 1. Seat 0 is on
// move with a playable red 7.
func seedGame(t *testing.T, ds store.DocStore) *game.GameState {
	t.Helper()
	st := &game.GameState{
		ID:     "doc-1",
		Status: game.StatusPlaying,
		Players: []models.Player{
			{ID: uuid.New(), Name: "Alice", Hand: []models.Card{
				card(models.ColorRed, "7"), card(models.ColorBlue, "2"),
			}},
			{ID: uuid.New(), Name: "Bob", Hand: []models.Card{
				card(models.ColorYellow, "3"),
			}},
		},
		DiscardPile: []models.Card{card(models.ColorRed, "5")},
		DrawPile:    []models.Card{card(models.ColorGreen, "1"), card(models.ColorGreen, "2")},
		IsClockwise: true,
		Version:     1,
	}
	require.NoError(t, ds.Write(context.Background(), st))
	return st
}

func openSyncer(t *testing.T, ds store.DocStore, playerID uuid.UUID) *Syncer {
	t.Helper()
	s := New(ds, "doc-1", playerID)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(s.Close)
	return s
}

func TestOpenReadsState(t *testing.T) {
	ds := store.NewMemoryStore()
	seed := seedGame(t, ds)

	s := openSyncer(t, ds, seed.Players[0].ID)
	require.NotNil(t, s.State())
	assert.Equal(t, int64(1), s.State().Version)
	assert.Len(t, s.State().Players, 2)
}

func TestPlayCardPersistsAndPropagates(t *testing.T) {
	ds := store.NewMemoryStore()
	seed := seedGame(t, ds)

	alice := openSyncer(t, ds, seed.Players[0].ID)
	bob := openSyncer(t, ds, seed.Players[1].ID)

	next, err := alice.PlayCard(context.Background(), seed.Players[0].Hand[0].ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.Version)
	assert.Equal(t, 1, next.CurrentPlayerIndex)

	// the change feed carries the write to the other participant
	require.Eventually(t, func() bool {
		return bob.State().Version == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, bob.State().CurrentPlayerIndex)

	stored, err := ds.Read(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestTurnGateRejectsOffTurnWrites(t *testing.T) {
	ds := store.NewMemoryStore()
	seed := seedGame(t, ds)

	bob := openSyncer(t, ds, seed.Players[1].ID)

	_, err := bob.PlayCard(context.Background(), seed.Players[1].Hand[0].ID, "")
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	stored, err := ds.Read(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version, "rejected actions never reach the store")
}

func TestDrawThenPass(t *testing.T) {
	ds := store.NewMemoryStore()
	seed := seedGame(t, ds)

	alice := openSyncer(t, ds, seed.Players[0].ID)

	_, err := alice.PassTurn(context.Background())
	assert.ErrorIs(t, err, game.ErrMustDrawFirst)

	next, err := alice.DrawCard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, next.CurrentPlayerIndex, "drawing keeps the turn")
	assert.Len(t, next.Players[0].Hand, 3)

	_, err = alice.DrawCard(context.Background())
	assert.ErrorIs(t, err, game.ErrAlreadyDrawn)

	next, err = alice.PassTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, next.CurrentPlayerIndex)
	assert.Equal(t, int64(3), next.Version)
}

func TestIsPlayableMirrorsRules(t *testing.T) {
	ds := store.NewMemoryStore()
	seed := seedGame(t, ds)

	alice := openSyncer(t, ds, seed.Players[0].ID)
	assert.True(t, alice.IsPlayable(seed.Players[0].Hand[0]), "red 7 on red 5")
	assert.False(t, alice.IsPlayable(seed.Players[0].Hand[1]), "blue 2 on red 5")
}

func TestVersionConflictAbandonsLocalCopy(t *testing.T) {
	ds := store.NewMemoryStore()
	seed := seedGame(t, ds)

	alice := New(ds, "doc-1", seed.Players[0].ID)
	require.NoError(t, alice.Open(context.Background()))
	alice.Close() // detach the feed so a concurrent write goes unseen

	// another participant wins the race for version 2
	remote := seed.Clone()
	remote.Version = 2
	remote.CurrentPlayerIndex = 1
	require.NoError(t, ds.Write(context.Background(), remote))

	_, err := alice.PlayCard(context.Background(), seed.Players[0].Hand[0].ID, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	// the losing writer re-reads instead of retrying its stale transition
	assert.Equal(t, int64(2), alice.State().Version)
	assert.Equal(t, 1, alice.State().CurrentPlayerIndex)
}

func TestRemoteTurnChangeResetsDrawFlag(t *testing.T) {
	ds := store.NewMemoryStore()
	seed := seedGame(t, ds)

	alice := openSyncer(t, ds, seed.Players[0].ID)

	_, err := alice.DrawCard(context.Background())
	require.NoError(t, err)

	// a remote write moves the turn away and back; the local draw flag must
	// not leak into the new turn
	remote := alice.State().Clone()
	remote.Version++
	remote.CurrentPlayerIndex = 1
	require.NoError(t, ds.Write(context.Background(), remote))
	require.Eventually(t, func() bool {
		return alice.State().Version == remote.Version
	}, time.Second, 5*time.Millisecond)

	back := alice.State().Clone()
	back.Version++
	back.CurrentPlayerIndex = 0
	require.NoError(t, ds.Write(context.Background(), back))
	require.Eventually(t, func() bool {
		return alice.State().Version == back.Version
	}, time.Second, 5*time.Millisecond)

	next, err := alice.DrawCard(context.Background())
	require.NoError(t, err)
	assert.Len(t, next.Players[0].Hand, 4)
}
