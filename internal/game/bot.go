// internal/game/bot.go
package game

import (
	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

// BotMove is the automated-opponent transition. It shares IsPlayable and
// ApplyPlay with every other driver; the only divergence from timeout
// resolution is preferring a non-wild playable card when one exists.
func BotMove(s *GameState, playerID uuid.UUID) (*GameState, []Notice, error) {
	if s.IsOver() {
		return nil, nil, ErrGameOver
	}
	if s.CurrentPlayer().ID != playerID {
		return nil, nil, ErrNotYourTurn
	}

	hand := s.PlayerByID(playerID).Hand
	playable := s.PlayableCards(playerID)
	if len(playable) > 0 {
		pick := playable[0]
		for _, c := range playable {
			if !c.IsWild() {
				pick = c
				break
			}
		}
		chosen := models.CardColor("")
		if pick.IsWild() {
			chosen = MostFrequentColor(hand, pick.ID)
		}
		return ApplyPlay(s, playerID, pick.ID, chosen)
	}

	// no playable card: fall through to the shared draw-then-act resolution
	return ResolveTimeout(s, playerID)
}
