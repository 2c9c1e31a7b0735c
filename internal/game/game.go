// internal/game/game.go
package game

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

// Director-level rejections. These guard per-turn sequencing that lives
// outside the persisted document.
var (
	ErrAlreadyDrawn  = errors.New("you have already drawn a card this turn")
	ErrMustDrawFirst = errors.New("you must draw a card before passing")
	ErrColorPending  = errors.New("a color choice is outstanding")
	ErrNoColorChoice = errors.New("no wild card is awaiting a color")
)

// OnGameEndFunc handles a finished game: broadcasting results to the room,
// persisting the record, etc.
type OnGameEndFunc func(st *GameState)

// UnoGame drives one game instance in memory: whose turn it is, timer
// expiry, bot moves and the wild color-choice sub-state. All rule semantics
// live in the pure transition functions; the director only sequences them.
type UnoGame struct {
	ID string

	State *GameState
	Mu    sync.Mutex

	// TurnID increments on every turn change. Timer callbacks re-validate it
	// so a stale timer firing after the turn advanced is a no-op.
	TurnID       int
	TurnDuration time.Duration
	BotDelay     time.Duration

	turnTimer *time.Timer
	botTimer  *time.Timer

	// hasDrawn tracks "already drawn this turn" for the player on move. It is
	// deliberately session-local and reset on every turn change, never
	// persisted in the game document.
	hasDrawn bool

	// pendingWild holds a wild card whose play is suspended until the acting
	// player chooses a color.
	pendingWild *models.Card

	// BroadcastFn sends an event to all players. If nil, no broadcast is done.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	// OnStateChange is invoked with the new state after every accepted
	// transition, lock held. The synchronization adapter hangs off this.
	OnStateChange func(st *GameState)

	// OnGameEnd is invoked once when the winner is set.
	OnGameEnd OnGameEndFunc
}

// NewUnoGame wraps an initial state produced by the deck factory.
func NewUnoGame(st *GameState) *UnoGame {
	return &UnoGame{
		ID:           st.ID,
		State:        st,
		TurnDuration: 20 * time.Second,
		BotDelay:     1500 * time.Millisecond,
	}
}

// Start schedules the first turn. Safe to call once after broadcast
// functions are wired.
func (g *UnoGame) Start() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.scheduleCurrentSeat()
	g.broadcastPlayerTurn()
}

// Stop cancels all outstanding timers, e.g. when the room is torn down.
func (g *UnoGame) Stop() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.stopTimers()
}

// HandlePlayerAction routes play, draw, pass and color-choice actions for the
// given player. Assumes the lock is held by the caller (the WS handler).
func (g *UnoGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	if g.State.IsOver() {
		g.rejectAction(playerID, action.ActionType, ErrGameOver)
		return
	}
	switch action.ActionType {
	case "action_play":
		g.handlePlay(playerID, action.Payload)
	case "action_choose_color":
		g.handleChooseColor(playerID, action.Payload)
	case "action_draw":
		g.handleDraw(playerID)
	case "action_pass":
		g.handlePass(playerID)
	default:
		log.Printf("game %s: unknown action type %q from player %s", g.ID, action.ActionType, playerID)
		g.rejectAction(playerID, action.ActionType, errors.New("unknown action type"))
	}
}

// handlePlay plays a card, or suspends a wild play until a color is chosen.
func (g *UnoGame) handlePlay(playerID uuid.UUID, payload map[string]interface{}) {
	cardIDStr, _ := payload["id"].(string)
	cardID, err := uuid.Parse(cardIDStr)
	if err != nil {
		g.rejectAction(playerID, "action_play", errors.New("invalid card id"))
		return
	}
	chosen := models.CardColor("")
	if colStr, ok := payload["color"].(string); ok {
		chosen = models.CardColor(colStr)
	}

	if g.pendingWild != nil {
		g.rejectAction(playerID, "action_play", ErrColorPending)
		return
	}

	// A wild without a color suspends resolution: validate the play now so an
	// illegal wild is rejected immediately, then wait for the choice.
	actor := g.State.PlayerByID(playerID)
	if actor != nil && g.State.CurrentPlayer().ID == playerID {
		for _, c := range actor.Hand {
			if c.ID == cardID && c.IsWild() && chosen == "" {
				if !IsPlayable(c, g.State.TopDiscard(), g.State.ChosenColor, g.State.PendingDraw) {
					g.rejectAction(playerID, "action_play", ErrCardNotPlayable)
					return
				}
				card := c
				g.pendingWild = &card
				g.fireEventToPlayer(playerID, GameEvent{Type: EventChooseColor, Card: &card})
				return
			}
		}
	}

	next, notices, err := ApplyPlay(g.State, playerID, cardID, chosen)
	if err != nil {
		g.rejectAction(playerID, "action_play", err)
		return
	}
	played := *next.TopDiscard()
	g.commit(next, notices, true, GameEvent{
		Type:        EventCardPlayed,
		User:        &EventUser{ID: playerID},
		Card:        &played,
		ChosenColor: next.ChosenColor,
	})
}

// handleChooseColor completes a suspended wild play.
func (g *UnoGame) handleChooseColor(playerID uuid.UUID, payload map[string]interface{}) {
	if g.pendingWild == nil || g.State.CurrentPlayer().ID != playerID {
		g.rejectAction(playerID, "action_choose_color", ErrNoColorChoice)
		return
	}
	colStr, _ := payload["color"].(string)
	chosen := models.CardColor(colStr)
	if !models.IsBaseColor(chosen) {
		g.rejectAction(playerID, "action_choose_color", ErrColorRequired)
		return
	}
	next, notices, err := ApplyPlay(g.State, playerID, g.pendingWild.ID, chosen)
	if err != nil {
		g.pendingWild = nil
		g.rejectAction(playerID, "action_choose_color", err)
		return
	}
	card := *g.pendingWild
	g.pendingWild = nil
	g.commit(next, notices, true, GameEvent{
		Type:        EventCardPlayed,
		User:        &EventUser{ID: playerID},
		Card:        &card,
		ChosenColor: chosen,
	})
}

func (g *UnoGame) handleDraw(playerID uuid.UUID) {
	if g.pendingWild != nil {
		g.rejectAction(playerID, "action_draw", ErrColorPending)
		return
	}
	if g.hasDrawn && g.State.CurrentPlayer().ID == playerID {
		g.rejectAction(playerID, "action_draw", ErrAlreadyDrawn)
		return
	}
	next, notices, err := ApplyDraw(g.State, playerID)
	if err != nil {
		g.rejectAction(playerID, "action_draw", err)
		return
	}
	// An exhausted pile still consumes the draw attempt, so the player keeps
	// the option to pass.
	g.hasDrawn = true
	ev := GameEvent{
		Type: EventCardDrawn,
		User: &EventUser{ID: playerID},
		Payload: map[string]interface{}{
			"drawPileSize": len(next.DrawPile),
			"handSize":     len(next.PlayerByID(playerID).Hand),
		},
	}
	g.commit(next, notices, false, ev)
	if drawn := drawnCard(g.State, playerID); drawn != nil {
		g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateDrawn, Card: drawn})
	}
}

func (g *UnoGame) handlePass(playerID uuid.UUID) {
	if g.pendingWild != nil {
		g.rejectAction(playerID, "action_pass", ErrColorPending)
		return
	}
	if g.State.CurrentPlayer().ID == playerID && !g.hasDrawn {
		g.rejectAction(playerID, "action_pass", ErrMustDrawFirst)
		return
	}
	next, notices, err := ApplyPass(g.State, playerID)
	if err != nil {
		g.rejectAction(playerID, "action_pass", err)
		return
	}
	g.commit(next, notices, true, GameEvent{Type: EventTurnPassed, User: &EventUser{ID: playerID}})
}

// commit installs an accepted successor state, broadcasts the action event
// and notices, bumps the document version, and advances the turn machinery
// when the transition ended the actor's turn.
func (g *UnoGame) commit(next *GameState, notices []Notice, turnEnded bool, ev GameEvent) {
	next.Version = g.State.Version + 1
	g.State = next

	g.fireEvent(ev)
	for i := range notices {
		g.fireEvent(GameEvent{Type: EventNotice, Notice: &notices[i]})
	}
	if g.OnStateChange != nil {
		g.OnStateChange(g.State)
	}

	if g.State.IsOver() {
		g.endGame()
		return
	}
	if turnEnded {
		g.advanceTurn()
	}
}

// advanceTurn resets per-turn tracking and schedules the next seat. The
// successor index is already in the state; a skip or two-player reverse may
// put the same seat on move again, which still counts as a new turn.
func (g *UnoGame) advanceTurn() {
	g.TurnID++
	g.hasDrawn = false
	g.pendingWild = nil
	g.stopTimers()
	g.scheduleCurrentSeat()
	g.broadcastPlayerTurn()
}

// scheduleCurrentSeat arms the bot thinking delay for bot seats or the turn
// timer for human seats. Assumes lock is held.
func (g *UnoGame) scheduleCurrentSeat() {
	if g.State.IsOver() {
		return
	}
	cur := g.State.CurrentPlayer()
	if cur.IsBot {
		if g.BotDelay <= 0 {
			return
		}
		g.botTimer = time.AfterFunc(g.BotDelay, g.timerCallback(cur.ID, g.TurnID, g.runBotMove))
		return
	}
	if g.TurnDuration <= 0 {
		return
	}
	g.turnTimer = time.AfterFunc(g.TurnDuration, g.timerCallback(cur.ID, g.TurnID, g.handleTimeout))
}

// timerCallback wraps a timer action with re-validation of the current
// player and turn id, so stale fires after a turn change are no-ops.
func (g *UnoGame) timerCallback(playerID uuid.UUID, turnID int, fn func(uuid.UUID)) func() {
	return func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.State.IsOver() || g.TurnID != turnID || g.State.CurrentPlayer().ID != playerID {
			log.Printf("game %s: stale timer for player %s (turn %d, now %d); ignoring", g.ID, playerID, turnID, g.TurnID)
			return
		}
		fn(playerID)
	}
}

// handleTimeout resolves an expired human turn. A wild awaiting its color is
// completed with the most frequent color in the hand; otherwise the
// deterministic auto-play runs.
func (g *UnoGame) handleTimeout(playerID uuid.UUID) {
	log.Printf("game %s: player %s timed out on turn %d", g.ID, playerID, g.TurnID)
	if g.pendingWild != nil {
		hand := g.State.PlayerByID(playerID).Hand
		chosen := MostFrequentColor(hand, g.pendingWild.ID)
		g.handleChooseColor(playerID, map[string]interface{}{"color": string(chosen)})
		return
	}
	if g.hasDrawn && g.State.PendingDraw == 0 && len(g.State.PlayableCards(playerID)) == 0 {
		// already drew this turn and still cannot play: pass instead of
		// drawing a second time
		next, notices, err := ApplyPass(g.State, playerID)
		if err != nil {
			log.Printf("game %s: timeout pass for player %s failed: %v", g.ID, playerID, err)
			return
		}
		g.commit(next, notices, true, GameEvent{Type: EventTurnPassed, User: &EventUser{ID: playerID}})
		return
	}
	g.resolveAuto(playerID, ResolveTimeout)
}

// runBotMove plays the bot heuristic: identical rule semantics to timeout
// resolution, differing only in preferring a non-wild playable card.
func (g *UnoGame) runBotMove(playerID uuid.UUID) {
	g.resolveAuto(playerID, BotMove)
}

// resolveAuto applies an automated transition (timeout or bot). The turn ends
// unless the player is stuck behind a pending stack they can answer only on a
// later rule evaluation, in which case the state is unchanged.
func (g *UnoGame) resolveAuto(playerID uuid.UUID, resolve func(*GameState, uuid.UUID) (*GameState, []Notice, error)) {
	prevDiscard := len(g.State.DiscardPile)
	next, notices, err := resolve(g.State, playerID)
	if err != nil {
		log.Printf("game %s: auto-resolve for player %s failed: %v", g.ID, playerID, err)
		return
	}
	turnEnded := next.CurrentPlayerIndex != g.State.CurrentPlayerIndex ||
		len(next.DiscardPile) != prevDiscard || next.IsOver()
	if !turnEnded && next.PendingDraw == g.State.PendingDraw && len(next.DrawPile) == len(g.State.DrawPile) {
		// pending stack left for the stacking play to resolve; nothing changed
		return
	}
	ev := GameEvent{Type: EventTurnPassed, User: &EventUser{ID: playerID}}
	if len(next.DiscardPile) != prevDiscard {
		played := *next.TopDiscard()
		ev = GameEvent{
			Type:        EventCardPlayed,
			User:        &EventUser{ID: playerID},
			Card:        &played,
			ChosenColor: next.ChosenColor,
		}
	}
	g.commit(next, notices, turnEnded, ev)
}

// endGame stops the clocks, announces the winner and invokes OnGameEnd once.
// Assumes lock is held and a winner is set.
func (g *UnoGame) endGame() {
	g.stopTimers()
	winner := g.State.Winner()
	log.Printf("game %s: winner %s (%s)", g.ID, winner.Name, winner.ID)
	g.fireEvent(GameEvent{
		Type: EventGameEnd,
		User: &EventUser{ID: winner.ID},
		Payload: map[string]interface{}{
			"winnerId":   winner.ID.String(),
			"winnerName": winner.Name,
		},
	})
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.State)
	}
}

// ApplyRemote installs a newer snapshot observed from the document store
// (another participant's write). Older or same-version snapshots are ignored.
func (g *UnoGame) ApplyRemote(st *GameState) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if st.Version <= g.State.Version {
		return
	}
	g.State = st
	if st.IsOver() {
		g.endGame()
		return
	}
	g.advanceTurn()
}

// SyncStateToPlayer sends the obfuscated snapshot to one player, e.g. on
// connect or reconnect. Assumes lock is held.
func (g *UnoGame) SyncStateToPlayer(playerID uuid.UUID) {
	st := g.State.Obfuscate(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventSyncState, State: &st})
}

// rejectAction reports an illegal action back to the acting user. The state
// is never modified on rejection.
func (g *UnoGame) rejectAction(playerID uuid.UUID, actionType string, err error) {
	log.Printf("game %s: rejected %s from player %s: %v", g.ID, actionType, playerID, err)
	g.fireEventToPlayer(playerID, GameEvent{
		Type:    EventActionRejected,
		Message: err.Error(),
		Payload: map[string]interface{}{"action": actionType},
	})
}

func (g *UnoGame) broadcastPlayerTurn() {
	g.fireEvent(GameEvent{
		Type:    EventPlayerTurn,
		User:    &EventUser{ID: g.State.CurrentPlayer().ID},
		Payload: map[string]interface{}{"turn": g.TurnID},
	})
}

func (g *UnoGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

func (g *UnoGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

func (g *UnoGame) stopTimers() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.botTimer != nil {
		g.botTimer.Stop()
		g.botTimer = nil
	}
}

// drawnCard returns a pointer to the last card in the player's hand, used to
// privately reveal the card just drawn.
func drawnCard(s *GameState, playerID uuid.UUID) *models.Card {
	p := s.PlayerByID(playerID)
	if p == nil || len(p.Hand) == 0 {
		return nil
	}
	return &p.Hand[len(p.Hand)-1]
}
