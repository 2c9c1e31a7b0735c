// internal/models/card.go
package models

import "github.com/google/uuid"

// CardColor is one of the four base colors, or "wild" for wild cards.
type CardColor string

const (
	ColorRed    CardColor = "red"
	ColorYellow CardColor = "yellow"
	ColorGreen  CardColor = "green"
	ColorBlue   CardColor = "blue"
	ColorWild   CardColor = "wild"
)

// BaseColors lists the four playable colors a wild card may be bound to.
var BaseColors = []CardColor{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// CardValue is the rank of a card: "0".."9" or an action value.
type CardValue string

const (
	ValueSkip      CardValue = "skip"
	ValueReverse   CardValue = "reverse"
	ValueDraw2     CardValue = "draw2"
	ValueWild      CardValue = "wild"
	ValueWildDraw4 CardValue = "wild_draw4"
)

// NumberValues holds the ten numeric ranks in ascending order.
var NumberValues = []CardValue{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// Card is immutable once minted by the deck builder.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Color CardColor `json:"color"`
	Value CardValue `json:"value"`
}

// IsWild reports whether the card is a wild or wild draw four.
func (c Card) IsWild() bool {
	return c.Color == ColorWild
}

// DrawAmount returns the forced-draw count the card contributes to a stack
// (2 for draw2, 4 for wild_draw4, 0 otherwise).
func (c Card) DrawAmount() int {
	switch c.Value {
	case ValueDraw2:
		return 2
	case ValueWildDraw4:
		return 4
	}
	return 0
}

// IsBaseColor reports whether col is one of the four playable colors.
func IsBaseColor(col CardColor) bool {
	for _, b := range BaseColors {
		if col == b {
			return true
		}
	}
	return false
}
