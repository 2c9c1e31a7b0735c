// internal/deck/deck_test.go
package deck

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

func testRoster(n int) []models.Player {
	roster := make([]models.Player, n)
	for i := range roster {
		roster[i] = models.Player{ID: uuid.New(), Name: "P" + string(rune('0'+i))}
	}
	return roster
}

func TestBuildDeckComposition(t *testing.T) {
	d := BuildDeck()
	require.Len(t, d, DeckSize)

	perColor := map[models.CardColor]int{}
	perValue := map[models.CardValue]int{}
	ids := map[uuid.UUID]bool{}
	for _, c := range d {
		perColor[c.Color]++
		perValue[c.Value]++
		assert.False(t, ids[c.ID], "card ids must be unique within a deck")
		ids[c.ID] = true
	}

	for _, col := range models.BaseColors {
		assert.Equal(t, 25, perColor[col], "each base color holds 25 cards")
	}
	assert.Equal(t, 8, perColor[models.ColorWild])
	assert.Equal(t, 4, perValue[models.ValueWild])
	assert.Equal(t, 4, perValue[models.ValueWildDraw4])
	assert.Equal(t, 4, perValue["0"], "one zero per color")
	assert.Equal(t, 8, perValue["7"], "two of each nonzero rank per color")
	assert.Equal(t, 8, perValue[models.ValueSkip])
	assert.Equal(t, 8, perValue[models.ValueReverse])
	assert.Equal(t, 8, perValue[models.ValueDraw2])
}

func TestBuildDeckMintsFreshIDs(t *testing.T) {
	first := BuildDeck()
	second := BuildDeck()
	seen := map[uuid.UUID]bool{}
	for _, c := range first {
		seen[c.ID] = true
	}
	for _, c := range second {
		assert.False(t, seen[c.ID], "a rebuilt deck must not reuse card ids")
	}
}

func TestDeal(t *testing.T) {
	d := BuildDeck()
	Shuffle(d)
	hands, rest := Deal(d, 4, HandSize)

	require.Len(t, hands, 4)
	for _, h := range hands {
		assert.Len(t, h, HandSize)
	}
	assert.Len(t, rest, DeckSize-4*HandSize)

	// dealing moves cards, never duplicates or drops them
	ids := map[uuid.UUID]bool{}
	total := 0
	for _, h := range hands {
		for _, c := range h {
			ids[c.ID] = true
			total++
		}
	}
	for _, c := range rest {
		ids[c.ID] = true
		total++
	}
	assert.Equal(t, DeckSize, total)
	assert.Len(t, ids, DeckSize)
}

func TestPickOpeningCardSkipsWilds(t *testing.T) {
	pile := []models.Card{
		{ID: uuid.New(), Color: models.ColorRed, Value: "5"},
		{ID: uuid.New(), Color: models.ColorWild, Value: models.ValueWild},
		{ID: uuid.New(), Color: models.ColorWild, Value: models.ValueWildDraw4},
	}
	opening, rest, err := PickOpeningCard(pile)
	require.NoError(t, err)
	assert.Equal(t, models.ColorRed, opening.Color)
	assert.Equal(t, models.CardValue("5"), opening.Value)
	assert.Len(t, rest, 2)
}

func TestPickOpeningCardAllWild(t *testing.T) {
	pile := []models.Card{
		{ID: uuid.New(), Color: models.ColorWild, Value: models.ValueWild},
		{ID: uuid.New(), Color: models.ColorWild, Value: models.ValueWildDraw4},
	}
	_, _, err := PickOpeningCard(pile)
	assert.ErrorIs(t, err, ErrAllWild)
}

func TestNewGameState(t *testing.T) {
	st, err := NewGameState("room-1", testRoster(3))
	require.NoError(t, err)

	assert.Equal(t, "room-1", st.ID)
	assert.Equal(t, game.StatusPlaying, st.Status)
	assert.True(t, st.IsClockwise)
	assert.Equal(t, int64(1), st.Version)
	assert.GreaterOrEqual(t, st.CurrentPlayerIndex, 0)
	assert.Less(t, st.CurrentPlayerIndex, 3)

	require.Len(t, st.Players, 3)
	for _, p := range st.Players {
		assert.Len(t, p.Hand, HandSize)
	}
	require.Len(t, st.DiscardPile, 1)
	assert.False(t, st.DiscardPile[0].IsWild(), "opening discard must not be wild")
	assert.Len(t, st.DrawPile, DeckSize-3*HandSize-1)
}

func TestNewGameStateTooFewPlayers(t *testing.T) {
	_, err := NewGameState("room-1", testRoster(1))
	assert.Error(t, err)
}
