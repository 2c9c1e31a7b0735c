// internal/game/rules.go
package game

import (
	"errors"
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

// Illegal-action rejections. All are synchronous, leave the input state
// untouched, and are reported back to the acting user.
var (
	ErrGameOver        = errors.New("game is already over")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrCardNotInHand   = errors.New("card is not in your hand")
	ErrCardNotPlayable = errors.New("card is not playable")
	ErrColorRequired   = errors.New("a color must be chosen for a wild card")
	ErrStackPending    = errors.New("a pending draw stack must be answered by playing, not drawing")
)

// Notice is a user-facing message produced by a rule transition. The
// presentation layer decides how to surface it; the engine never touches UI.
type Notice struct {
	Severity string `json:"severity"` // "info" or "warning"
	Title    string `json:"title"`
	Message  string `json:"message"`
}

func noticeInfo(title, msg string) Notice {
	return Notice{Severity: "info", Title: title, Message: msg}
}

func noticeWarning(title, msg string) Notice {
	return Notice{Severity: "warning", Title: title, Message: msg}
}

// IsPlayable is the single legal-move predicate, shared by human input
// validation, the bot heuristic, timeout resolution, and the UI layer.
//
// While a draw stack is pending, only a card of the same value as the top
// discard may be played (stacking). Otherwise a wild is always legal, a
// chosen color constrains plays to that color, and in the base case the card
// must match the top discard by color or value.
func IsPlayable(card models.Card, top *models.Card, chosenColor models.CardColor, pendingDraw int) bool {
	if top == nil {
		return false
	}
	if pendingDraw > 0 {
		return card.Value == top.Value
	}
	if card.IsWild() {
		return true
	}
	if chosenColor != "" {
		return card.Color == chosenColor
	}
	return card.Color == top.Color || card.Value == top.Value
}

// PlayableCards returns the subset of the player's hand that is currently
// legal to play, in hand order.
func (s *GameState) PlayableCards(playerID uuid.UUID) []models.Card {
	p := s.PlayerByID(playerID)
	if p == nil {
		return nil
	}
	var out []models.Card
	for _, c := range p.Hand {
		if IsPlayable(c, s.TopDiscard(), s.ChosenColor, s.PendingDraw) {
			out = append(out, c)
		}
	}
	return out
}

// ApplyPlay plays cardID from the acting player's hand. chosen must be one of
// the four base colors when the card is wild, and is ignored otherwise.
// It returns the successor state and any notices; on rejection the returned
// state is nil and the input is unchanged.
func ApplyPlay(s *GameState, playerID, cardID uuid.UUID, chosen models.CardColor) (*GameState, []Notice, error) {
	if s.IsOver() {
		return nil, nil, ErrGameOver
	}
	if s.CurrentPlayer().ID != playerID {
		return nil, nil, ErrNotYourTurn
	}
	actor := s.PlayerByID(playerID)
	var card *models.Card
	for i := range actor.Hand {
		if actor.Hand[i].ID == cardID {
			card = &actor.Hand[i]
			break
		}
	}
	if card == nil {
		return nil, nil, ErrCardNotInHand
	}
	if !IsPlayable(*card, s.TopDiscard(), s.ChosenColor, s.PendingDraw) {
		return nil, nil, ErrCardNotPlayable
	}
	if card.IsWild() && !models.IsBaseColor(chosen) {
		return nil, nil, ErrColorRequired
	}

	next := s.Clone()
	var notices []Notice

	player := next.PlayerByID(playerID)
	played, _ := player.RemoveCard(cardID)
	next.DiscardPile = append(next.DiscardPile, played)

	next.PendingDraw += played.DrawAmount()

	skipNext := false
	switch played.Value {
	case models.ValueSkip:
		skipNext = true
	case models.ValueReverse:
		next.IsClockwise = !next.IsClockwise
		// with two players, flipping direction is equivalent to a skip
		if len(next.Players) == 2 {
			skipNext = true
		}
	case models.ValueDraw2, models.ValueWildDraw4:
		victimIdx := next.NextIndex(next.CurrentPlayerIndex)
		victim := &next.Players[victimIdx]
		if victim.HasValue(played.Value) {
			// victim can stack; the pending amount rides on to their turn
			break
		}
		drawn := forceDraw(next, victim, next.PendingDraw, &notices)
		notices = append(notices, noticeInfo("Forced Draw", victim.Name+" drew "+strconv.Itoa(drawn)+" card(s)."))
		next.PendingDraw = 0
		skipNext = true
	}

	next.CurrentPlayerIndex = next.NextIndex(next.CurrentPlayerIndex)
	if skipNext {
		next.CurrentPlayerIndex = next.NextIndex(next.CurrentPlayerIndex)
	}

	if played.IsWild() {
		next.ChosenColor = chosen
	} else {
		next.ChosenColor = ""
	}

	if len(player.Hand) == 0 {
		next.WinnerID = playerID
		notices = append(notices, noticeInfo("Game Over", player.Name+" has won the game!"))
	}
	return next, notices, nil
}

// ApplyDraw moves one card from the draw pile into the acting player's hand.
// Drawing never advances the turn; the player may then play the drawn card or
// pass. An empty pile degrades to a notice with the state otherwise unchanged.
func ApplyDraw(s *GameState, playerID uuid.UUID) (*GameState, []Notice, error) {
	if s.IsOver() {
		return nil, nil, ErrGameOver
	}
	if s.CurrentPlayer().ID != playerID {
		return nil, nil, ErrNotYourTurn
	}
	if s.PendingDraw > 0 {
		return nil, nil, ErrStackPending
	}

	next := s.Clone()
	if len(next.DrawPile) == 0 {
		return next, []Notice{noticeWarning("Draw Pile Empty", "No cards left to draw.")}, nil
	}
	card := next.DrawPile[len(next.DrawPile)-1]
	next.DrawPile = next.DrawPile[:len(next.DrawPile)-1]
	player := next.PlayerByID(playerID)
	player.Hand = append(player.Hand, card)
	return next, nil, nil
}

// ApplyPass ends the acting player's turn without playing. Whether the player
// has drawn first is the turn director's responsibility; the document does
// not carry that flag.
func ApplyPass(s *GameState, playerID uuid.UUID) (*GameState, []Notice, error) {
	if s.IsOver() {
		return nil, nil, ErrGameOver
	}
	if s.CurrentPlayer().ID != playerID {
		return nil, nil, ErrNotYourTurn
	}
	if s.PendingDraw > 0 {
		return nil, nil, ErrStackPending
	}

	next := s.Clone()
	next.CurrentPlayerIndex = next.NextIndex(next.CurrentPlayerIndex)
	next.ChosenColor = ""
	return next, nil, nil
}

// ResolveTimeout performs the deterministic auto-play for a player whose turn
// timer expired: play the first playable card in hand order (wilds bound to
// the most frequent color in the remaining hand), otherwise draw once and
// play the drawn card if it is immediately playable, otherwise pass. A
// pending stack the player cannot answer is left for the stacking play that
// created it, so the state comes back unchanged in that case.
func ResolveTimeout(s *GameState, playerID uuid.UUID) (*GameState, []Notice, error) {
	if s.IsOver() {
		return nil, nil, ErrGameOver
	}
	if s.CurrentPlayer().ID != playerID {
		return nil, nil, ErrNotYourTurn
	}

	player := s.PlayerByID(playerID)
	for _, c := range player.Hand {
		if IsPlayable(c, s.TopDiscard(), s.ChosenColor, s.PendingDraw) {
			chosen := models.CardColor("")
			if c.IsWild() {
				chosen = MostFrequentColor(player.Hand, c.ID)
			}
			return ApplyPlay(s, playerID, c.ID, chosen)
		}
	}

	if s.PendingDraw > 0 {
		return s.Clone(), nil, nil
	}

	handSize := len(player.Hand)
	next, notices, err := ApplyDraw(s, playerID)
	if err != nil {
		return nil, nil, err
	}
	drawnPlayer := next.PlayerByID(playerID)
	if len(drawnPlayer.Hand) > handSize {
		drawn := drawnPlayer.Hand[len(drawnPlayer.Hand)-1]
		if IsPlayable(drawn, next.TopDiscard(), next.ChosenColor, next.PendingDraw) {
			chosen := models.CardColor("")
			if drawn.IsWild() {
				chosen = models.BaseColors[rand.Intn(len(models.BaseColors))]
			}
			played, playNotices, err := ApplyPlay(next, playerID, drawn.ID, chosen)
			if err != nil {
				return nil, nil, err
			}
			return played, append(notices, playNotices...), nil
		}
	}
	passed, passNotices, err := ApplyPass(next, playerID)
	if err != nil {
		return nil, nil, err
	}
	return passed, append(notices, passNotices...), nil
}

// MostFrequentColor returns the base color occurring most often in hand,
// excluding the card about to be played and all wilds. Ties resolve to the
// first color encountered in hand order; a hand with no colored cards falls
// back to a uniform random base color.
func MostFrequentColor(hand []models.Card, excludeID uuid.UUID) models.CardColor {
	counts := map[models.CardColor]int{}
	var order []models.CardColor
	for _, c := range hand {
		if c.ID == excludeID || c.IsWild() {
			continue
		}
		if counts[c.Color] == 0 {
			order = append(order, c.Color)
		}
		counts[c.Color]++
	}
	if len(order) == 0 {
		return models.BaseColors[rand.Intn(len(models.BaseColors))]
	}
	best := order[0]
	for _, col := range order[1:] {
		if counts[col] > counts[best] {
			best = col
		}
	}
	return best
}

// forceDraw moves up to amount cards from the top of the draw pile into the
// victim's hand, draining what remains and emitting a low-pile notice when
// the pile runs short.
func forceDraw(s *GameState, victim *models.Player, amount int, notices *[]Notice) int {
	n := amount
	if avail := len(s.DrawPile); avail < n {
		n = avail
		*notices = append(*notices, noticeWarning("Draw Pile Low", "Not enough cards to draw."))
	}
	if n == 0 {
		return 0
	}
	taken := s.DrawPile[len(s.DrawPile)-n:]
	s.DrawPile = s.DrawPile[:len(s.DrawPile)-n]
	victim.Hand = append(victim.Hand, taken...)
	return n
}
