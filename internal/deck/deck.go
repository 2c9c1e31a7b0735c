// internal/deck/deck.go
package deck

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

const (
	// DeckSize is the fixed card count of a complete deck.
	DeckSize = 108

	// HandSize is the number of cards dealt to each player.
	HandSize = 7

	// maxSetupRetries caps the rebuild-and-redeal loop for the pathological
	// case where every undealt card is wild. With 8 wilds in 108 cards this
	// is effectively unreachable, but it is not provably impossible.
	maxSetupRetries = 32
)

// ErrAllWild is returned by PickOpeningCard when the pile holds no non-wild
// card to open the discard with.
var ErrAllWild = errors.New("draw pile contains only wild cards")

// BuildDeck mints a complete 108-card deck: per color one "0" and two each of
// "1"-"9", skip, reverse and draw2 (25 cards x 4 colors), plus four wild and
// four wild_draw4. Card ids are freshly generated per build; composition is
// deterministic and ordering is canonical until Shuffle.
func BuildDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	colorValues := append(append([]models.CardValue{}, models.NumberValues...),
		models.ValueSkip, models.ValueReverse, models.ValueDraw2)
	for _, color := range models.BaseColors {
		for _, value := range colorValues {
			count := 2
			if value == "0" {
				count = 1
			}
			for i := 0; i < count; i++ {
				deck = append(deck, models.Card{ID: uuid.New(), Color: color, Value: value})
			}
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, models.Card{ID: uuid.New(), Color: models.ColorWild, Value: models.ValueWild})
		deck = append(deck, models.Card{ID: uuid.New(), Color: models.ColorWild, Value: models.ValueWildDraw4})
	}
	return deck
}

// Shuffle permutes the deck in place with Fisher-Yates. Uniformity matters;
// reproducibility does not.
func Shuffle(deck []models.Card) {
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// Deal removes perPlayer cards per player round-robin from the top (end) of
// the deck and returns the hands plus the remaining draw pile.
func Deal(deck []models.Card, numPlayers, perPlayer int) ([][]models.Card, []models.Card) {
	hands := make([][]models.Card, numPlayers)
	for i := range hands {
		hands[i] = make([]models.Card, 0, perPlayer)
	}
	for i := 0; i < perPlayer; i++ {
		for j := 0; j < numPlayers; j++ {
			card := deck[len(deck)-1]
			deck = deck[:len(deck)-1]
			hands[j] = append(hands[j], card)
		}
	}
	return hands, deck
}

// PickOpeningCard scans from the top of the pile downward for the first
// non-wild card, removes it, and returns it together with the remaining pile.
// The opening discard must never be wild.
func PickOpeningCard(pile []models.Card) (models.Card, []models.Card, error) {
	for i := len(pile) - 1; i >= 0; i-- {
		if !pile[i].IsWild() {
			card := pile[i]
			pile = append(pile[:i], pile[i+1:]...)
			return card, pile, nil
		}
	}
	return models.Card{}, pile, ErrAllWild
}

// NewGameState composes a complete initial state for the given roster: deal
// seven cards per player, pick a non-wild opening discard, clockwise
// direction, uniformly random starting seat. If dealing leaves an all-wild
// pile the whole deck is rebuilt and redealt, bounded by maxSetupRetries.
func NewGameState(id string, roster []models.Player) (*game.GameState, error) {
	if len(roster) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(roster))
	}
	for attempt := 0; attempt < maxSetupRetries; attempt++ {
		d := BuildDeck()
		Shuffle(d)
		hands, pile := Deal(d, len(roster), HandSize)
		opening, pile, err := PickOpeningCard(pile)
		if err != nil {
			continue
		}

		players := make([]models.Player, len(roster))
		for i, p := range roster {
			players[i] = p
			players[i].Hand = hands[i]
		}
		return &game.GameState{
			ID:                 id,
			Status:             game.StatusPlaying,
			Players:            players,
			CurrentPlayerIndex: rand.Intn(len(players)),
			DiscardPile:        []models.Card{opening},
			DrawPile:           pile,
			IsClockwise:        true,
			Version:            1,
		}, nil
	}
	return nil, fmt.Errorf("deck setup failed after %d attempts: %w", maxSetupRetries, ErrAllWild)
}
