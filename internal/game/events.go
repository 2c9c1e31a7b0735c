// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventPlayerTurn     GameEventType = "game_player_turn"     // whose turn it is now
	EventCardPlayed     GameEventType = "player_card_played"   // public, includes the card
	EventCardDrawn      GameEventType = "player_card_drawn"    // public, hand/pile sizes only
	EventPrivateDrawn   GameEventType = "private_card_drawn"   // private, reveals the drawn card
	EventTurnPassed     GameEventType = "player_turn_passed"   // public
	EventChooseColor    GameEventType = "private_choose_color" // wild played, color choice outstanding
	EventActionRejected GameEventType = "private_action_rejected"
	EventNotice         GameEventType = "game_notice" // user-facing notice fan-out
	EventGameEnd        GameEventType = "game_end"    // winner set, terminal
	EventSyncState      GameEventType = "private_sync_state"
)

// EventUser identifies the acting player within an event.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// GameEvent is the consistent envelope broadcast to clients. Rule notices
// ride along so the presentation layer never derives feedback from state
// diffs.
type GameEvent struct {
	Type GameEventType `json:"type"`
	User *EventUser    `json:"user,omitempty"`
	Card *models.Card  `json:"card,omitempty"`

	ChosenColor models.CardColor `json:"chosenColor,omitempty"`
	Notice      *Notice          `json:"notice,omitempty"`
	Message     string           `json:"message,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`

	State *ObfGameState `json:"state,omitempty"`
}
