// internal/game/game_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

// mockBroadcaster captures broadcast and private events for assertions.
type mockBroadcaster struct {
	mu      sync.Mutex
	events  []GameEvent
	private map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{private: make(map[uuid.UUID][]GameEvent)}
}

func (m *mockBroadcaster) broadcast(ev GameEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockBroadcaster) toPlayer(playerID uuid.UUID, ev GameEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.private[playerID] = append(m.private[playerID], ev)
}

func (m *mockBroadcaster) eventsOfType(t GameEventType) []GameEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []GameEvent
	for _, ev := range m.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (m *mockBroadcaster) privateOfType(playerID uuid.UUID, t GameEventType) []GameEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []GameEvent
	for _, ev := range m.private[playerID] {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// setupTestGame builds a director over a deterministic state with timers
// disabled. Seat 0 is on move.
func setupTestGame(t *testing.T, top models.Card, hands ...[]models.Card) (*UnoGame, *mockBroadcaster) {
	t.Helper()
	st := newTestState(top, hands...)
	g := NewUnoGame(st)
	g.TurnDuration = 0
	g.BotDelay = 0
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcast
	g.BroadcastToPlayerFn = mb.toPlayer
	return g, mb
}

func playAction(cardID uuid.UUID) models.GameAction {
	return models.GameAction{
		ActionType: "action_play",
		Payload:    map[string]interface{}{"id": cardID.String()},
	}
}

func TestHandlePlayerActionTurnGating(t *testing.T) {
	intruderCard := card(models.ColorRed, "9")
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{card(models.ColorRed, "7")},
		[]models.Card{intruderCard},
	)
	intruder := g.State.Players[1].ID

	g.Mu.Lock()
	g.HandlePlayerAction(intruder, playAction(intruderCard.ID))
	g.Mu.Unlock()

	rejections := mb.privateOfType(intruder, EventActionRejected)
	require.Len(t, rejections, 1)
	assert.Equal(t, ErrNotYourTurn.Error(), rejections[0].Message)
	assert.Equal(t, int64(1), g.State.Version, "rejected actions never advance the document")
}

func TestHandlePlayCommitsAndAdvances(t *testing.T) {
	play := card(models.ColorRed, "7")
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{play, card(models.ColorBlue, "2")},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	actor := g.State.Players[0].ID

	g.Mu.Lock()
	g.HandlePlayerAction(actor, playAction(play.ID))
	g.Mu.Unlock()

	assert.Equal(t, int64(2), g.State.Version)
	assert.Equal(t, 1, g.State.CurrentPlayerIndex)
	require.Len(t, mb.eventsOfType(EventCardPlayed), 1)
	require.Len(t, mb.eventsOfType(EventPlayerTurn), 1, "the next seat is announced")
}

func TestDrawThenPassSequencing(t *testing.T) {
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{card(models.ColorBlue, "9")},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	actor := g.State.Players[0].ID

	g.Mu.Lock()
	defer g.Mu.Unlock()

	// passing before drawing is rejected
	g.HandlePlayerAction(actor, models.GameAction{ActionType: "action_pass"})
	rejections := mb.privateOfType(actor, EventActionRejected)
	require.Len(t, rejections, 1)
	assert.Equal(t, ErrMustDrawFirst.Error(), rejections[0].Message)

	g.HandlePlayerAction(actor, models.GameAction{ActionType: "action_draw"})
	assert.Equal(t, 0, g.State.CurrentPlayerIndex, "drawing keeps the turn")
	require.Len(t, mb.privateOfType(actor, EventPrivateDrawn), 1, "the drawn card is revealed privately")

	// a second draw in the same turn is rejected
	g.HandlePlayerAction(actor, models.GameAction{ActionType: "action_draw"})
	rejections = mb.privateOfType(actor, EventActionRejected)
	require.Len(t, rejections, 2)
	assert.Equal(t, ErrAlreadyDrawn.Error(), rejections[1].Message)

	g.HandlePlayerAction(actor, models.GameAction{ActionType: "action_pass"})
	assert.Equal(t, 1, g.State.CurrentPlayerIndex)
}

func TestWildColorChoiceSubState(t *testing.T) {
	wild := card(models.ColorWild, models.ValueWild)
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{wild, card(models.ColorBlue, "2")},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	actor := g.State.Players[0].ID

	g.Mu.Lock()
	defer g.Mu.Unlock()

	// a wild without a color suspends into the choice sub-state
	g.HandlePlayerAction(actor, playAction(wild.ID))
	require.Len(t, mb.privateOfType(actor, EventChooseColor), 1)
	assert.Empty(t, mb.eventsOfType(EventCardPlayed), "nothing is committed yet")

	// drawing while the choice is outstanding is rejected
	g.HandlePlayerAction(actor, models.GameAction{ActionType: "action_draw"})
	rejections := mb.privateOfType(actor, EventActionRejected)
	require.Len(t, rejections, 1)
	assert.Equal(t, ErrColorPending.Error(), rejections[0].Message)

	g.HandlePlayerAction(actor, models.GameAction{
		ActionType: "action_choose_color",
		Payload:    map[string]interface{}{"color": "blue"},
	})
	assert.Equal(t, models.ColorBlue, g.State.ChosenColor)
	require.Len(t, mb.eventsOfType(EventCardPlayed), 1)
	assert.Equal(t, 1, g.State.CurrentPlayerIndex)
}

func TestChooseColorRejectsNonBaseColor(t *testing.T) {
	wild := card(models.ColorWild, models.ValueWild)
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{wild, card(models.ColorBlue, "2")},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	actor := g.State.Players[0].ID

	g.Mu.Lock()
	defer g.Mu.Unlock()

	g.HandlePlayerAction(actor, playAction(wild.ID))
	g.HandlePlayerAction(actor, models.GameAction{
		ActionType: "action_choose_color",
		Payload:    map[string]interface{}{"color": "wild"},
	})
	rejections := mb.privateOfType(actor, EventActionRejected)
	require.Len(t, rejections, 1)
	assert.Equal(t, ErrColorRequired.Error(), rejections[0].Message)
}

func TestHumanTimeoutAutoPlays(t *testing.T) {
	play := card(models.ColorRed, "7")
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{play, card(models.ColorBlue, "2")},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	g.TurnDuration = 20 * time.Millisecond

	g.Start()
	require.Eventually(t, func() bool {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		return g.State.CurrentPlayerIndex == 1
	}, time.Second, 5*time.Millisecond, "the timed-out turn should auto-resolve")

	g.Mu.Lock()
	top := g.State.TopDiscard()
	g.Mu.Unlock()
	assert.Equal(t, play.ID, top.ID, "the first playable card was auto-played")
	assert.NotEmpty(t, mb.eventsOfType(EventCardPlayed))
	g.Stop()
}

func TestBotTakesItsTurn(t *testing.T) {
	botCard := card(models.ColorRed, "9")
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{botCard, card(models.ColorBlue, "2")},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	g.State.Players[0].IsBot = true
	g.BotDelay = 10 * time.Millisecond

	g.Start()
	require.Eventually(t, func() bool {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		return g.State.CurrentPlayerIndex == 1
	}, time.Second, 5*time.Millisecond, "the bot should move after its delay")

	assert.NotEmpty(t, mb.eventsOfType(EventCardPlayed))
	g.Stop()
}

func TestGameEndStopsFurtherActions(t *testing.T) {
	last := card(models.ColorRed, "7")
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{last},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	actor := g.State.Players[0].ID
	loser := g.State.Players[1].ID

	ended := 0
	g.OnGameEnd = func(st *GameState) { ended++ }

	g.Mu.Lock()
	g.HandlePlayerAction(actor, playAction(last.ID))

	require.True(t, g.State.IsOver())
	assert.Equal(t, actor, g.State.WinnerID)
	assert.Equal(t, 1, ended)
	require.Len(t, mb.eventsOfType(EventGameEnd), 1)

	g.HandlePlayerAction(loser, models.GameAction{ActionType: "action_draw"})
	g.Mu.Unlock()

	rejections := mb.privateOfType(loser, EventActionRejected)
	require.Len(t, rejections, 1)
	assert.Equal(t, ErrGameOver.Error(), rejections[0].Message)
}

func TestApplyRemoteInstallsNewerSnapshot(t *testing.T) {
	g, _ := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{card(models.ColorBlue, "9")},
		[]models.Card{card(models.ColorYellow, "3")},
	)

	remote := g.State.Clone()
	remote.Version = 5
	remote.CurrentPlayerIndex = 1
	g.ApplyRemote(remote)
	assert.Equal(t, int64(5), g.State.Version)
	assert.Equal(t, 1, g.State.CurrentPlayerIndex)

	stale := g.State.Clone()
	stale.Version = 3
	stale.CurrentPlayerIndex = 0
	g.ApplyRemote(stale)
	assert.Equal(t, int64(5), g.State.Version, "older snapshots are ignored")
}

func TestSyncStateToPlayerObfuscates(t *testing.T) {
	g, mb := setupTestGame(t, card(models.ColorRed, "5"),
		[]models.Card{card(models.ColorBlue, "9"), card(models.ColorRed, "7")},
		[]models.Card{card(models.ColorYellow, "3")},
	)
	viewer := g.State.Players[0].ID

	g.Mu.Lock()
	g.SyncStateToPlayer(viewer)
	g.Mu.Unlock()

	snaps := mb.privateOfType(viewer, EventSyncState)
	require.Len(t, snaps, 1)
	st := snaps[0].State
	require.NotNil(t, st)
	for _, ps := range st.Players {
		if ps.PlayerID == viewer {
			assert.Len(t, ps.Hand, 2, "own hand is visible")
		} else {
			assert.Empty(t, ps.Hand, "opponent hands stay hidden")
			assert.Equal(t, 1, ps.HandSize)
		}
	}
}
