package models

import "github.com/google/uuid"

// Player is one seat in a game. Owned by the GameState document; the hand is
// mutated only through rule transitions.
type Player struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	IsHost bool      `json:"isHost"`
	IsBot  bool      `json:"isBot,omitempty"`
	Hand   []Card    `json:"hand"`
}

// HasValue reports whether the player holds any card of the given value.
// Used for stack-counter detection on draw2/wild_draw4 plays.
func (p *Player) HasValue(v CardValue) bool {
	for _, c := range p.Hand {
		if c.Value == v {
			return true
		}
	}
	return false
}

// RemoveCard takes the card with the given id out of the hand and returns it.
// The second return is false if the card is not in the hand.
func (p *Player) RemoveCard(cardID uuid.UUID) (Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}
