// internal/game/state.go
package game

import (
	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

// Game lifecycle status values as stored in the game document.
const (
	StatusWaiting = "waiting"
	StatusPlaying = "playing"
)

// GameState is the single source of truth for one game. It is the full
// document persisted by the store in networked mode; every rule transition
// produces a fresh copy rather than mutating in place.
//
// Conventions: the top of the discard pile and of the draw pile is the last
// element of the respective slice. Turn order is index order over Players,
// walked forward when IsClockwise and backward otherwise.
type GameState struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	Players            []models.Player `json:"players"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`

	DiscardPile []models.Card `json:"discardPile"`
	DrawPile    []models.Card `json:"drawPile"`

	IsClockwise bool `json:"isClockwise"`

	// ChosenColor is set only while the top discard is a wild card.
	ChosenColor models.CardColor `json:"chosenColor,omitempty"`

	// PendingDraw accumulates unresolved draw2/wild_draw4 effects awaiting a
	// stack response or a forced draw.
	PendingDraw int `json:"pendingDraw"`

	// WinnerID is set once and never cleared; the state is terminal after.
	WinnerID uuid.UUID `json:"winnerId,omitempty"`

	// Version increments on every persisted write. The store rejects writes
	// whose version is not exactly one past the stored document's.
	Version int64 `json:"version"`
}

// Clone returns a deep copy. Rule transitions operate on the clone so the
// input state is never mutated.
func (s *GameState) Clone() *GameState {
	cp := *s
	cp.Players = make([]models.Player, len(s.Players))
	for i, p := range s.Players {
		cp.Players[i] = p
		cp.Players[i].Hand = append([]models.Card(nil), p.Hand...)
	}
	cp.DiscardPile = append([]models.Card(nil), s.DiscardPile...)
	cp.DrawPile = append([]models.Card(nil), s.DrawPile...)
	return &cp
}

// TopDiscard returns the most recently played card, or nil before the
// opening card is placed.
func (s *GameState) TopDiscard() *models.Card {
	if len(s.DiscardPile) == 0 {
		return nil
	}
	return &s.DiscardPile[len(s.DiscardPile)-1]
}

// CurrentPlayer returns the player on move.
func (s *GameState) CurrentPlayer() *models.Player {
	return &s.Players[s.CurrentPlayerIndex]
}

// PlayerByID finds a seat by player id, or nil.
func (s *GameState) PlayerByID(id uuid.UUID) *models.Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// NextIndex returns the seat after from in the current direction.
func (s *GameState) NextIndex(from int) int {
	n := len(s.Players)
	if s.IsClockwise {
		return (from + 1) % n
	}
	return (from - 1 + n) % n
}

// IsOver reports whether a winner has been recorded.
func (s *GameState) IsOver() bool {
	return s.WinnerID != uuid.Nil
}

// Winner returns the winning player, or nil while the game is live.
func (s *GameState) Winner() *models.Player {
	if !s.IsOver() {
		return nil
	}
	return s.PlayerByID(s.WinnerID)
}
