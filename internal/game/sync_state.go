// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

// ObfCard is a card in the requesting player's own hand, annotated with the
// legal-move predicate so the presentation layer can highlight playable cards
// without duplicating rule logic.
type ObfCard struct {
	models.Card
	Playable bool `json:"playable"`
}

// ObfPlayerState is one seat from the perspective of a requesting user:
// opponents reveal hand sizes only.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"player_id"`
	Name          string    `json:"name"`
	IsHost        bool      `json:"isHost"`
	IsBot         bool      `json:"isBot,omitempty"`
	HandSize      int       `json:"hand_size"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	Hand          []ObfCard `json:"hand,omitempty"` // only for self
}

// ObfGameState is the snapshot sent on connect/reconnect and after remote
// state jumps.
type ObfGameState struct {
	GameID          string           `json:"game_id"`
	Status          string           `json:"status"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	DiscardTop      *models.Card     `json:"discardTop,omitempty"`
	ChosenColor     models.CardColor `json:"chosenColor,omitempty"`
	PendingDraw     int              `json:"pendingDraw"`
	IsClockwise     bool             `json:"isClockwise"`
	DrawPileSize    int              `json:"drawPileSize"`
	DiscardSize     int              `json:"discardSize"`
	Players         []ObfPlayerState `json:"players"`
	WinnerID        uuid.UUID        `json:"winnerId,omitempty"`
}

// Obfuscate generates a snapshot of the state for the requesting user.
func (s *GameState) Obfuscate(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:          s.ID,
		Status:          s.Status,
		CurrentPlayerID: s.CurrentPlayer().ID,
		DiscardTop:      s.TopDiscard(),
		ChosenColor:     s.ChosenColor,
		PendingDraw:     s.PendingDraw,
		IsClockwise:     s.IsClockwise,
		DrawPileSize:    len(s.DrawPile),
		DiscardSize:     len(s.DiscardPile),
		WinnerID:        s.WinnerID,
	}
	for i, pl := range s.Players {
		ps := ObfPlayerState{
			PlayerID:      pl.ID,
			Name:          pl.Name,
			IsHost:        pl.IsHost,
			IsBot:         pl.IsBot,
			HandSize:      len(pl.Hand),
			IsCurrentTurn: i == s.CurrentPlayerIndex,
		}
		if pl.ID == forUser {
			ps.Hand = make([]ObfCard, len(pl.Hand))
			for j, c := range pl.Hand {
				ps.Hand[j] = ObfCard{
					Card:     c,
					Playable: IsPlayable(c, s.TopDiscard(), s.ChosenColor, s.PendingDraw),
				}
			}
		}
		obf.Players = append(obf.Players, ps)
	}
	return obf
}
