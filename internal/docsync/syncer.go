// internal/docsync/syncer.go

// Package docsync reconciles a participant's optimistic local game state
// with the externally persisted game document for networked play. The local
// copy advances through the same rule transitions as local play; every
// accepted transition is written back as a full-document replace and every
// remote write observed on the notification channel replaces the local copy.
package docsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/store"
)

// Syncer owns one seat's view of a networked game. Turn-gating in the rule
// engine is the at-most-one-writer-per-turn discipline: every mutating entry
// point rejects unless this seat is on move, so under normal play at most
// one participant writes any given document version.
type Syncer struct {
	store    store.DocStore
	gameID   string
	playerID uuid.UUID

	mu       sync.Mutex
	state    *game.GameState
	hasDrawn bool

	// OnChange is invoked with the new state and any notices after every
	// accepted local transition or observed remote write.
	OnChange func(st *game.GameState, notices []game.Notice)

	unsubscribe func()
}

// New builds a Syncer for one participant of one game.
func New(ds store.DocStore, gameID string, playerID uuid.UUID) *Syncer {
	return &Syncer{store: ds, gameID: gameID, playerID: playerID}
}

// Open reads the current document and subscribes to its change feed.
func (s *Syncer) Open(ctx context.Context) error {
	st, err := s.store.Read(ctx, s.gameID)
	if err != nil {
		return fmt.Errorf("open game %s: %w", s.gameID, err)
	}
	unsub, err := s.store.Subscribe(ctx, s.gameID, s.applyRemote)
	if err != nil {
		return fmt.Errorf("subscribe game %s: %w", s.gameID, err)
	}
	s.mu.Lock()
	s.state = st
	s.unsubscribe = unsub
	s.mu.Unlock()
	return nil
}

// Close detaches from the change feed.
func (s *Syncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// State returns the current local snapshot.
func (s *Syncer) State() *game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsPlayable exposes the legal-move predicate for the local hand so the
// presentation layer can highlight playable cards without duplicating rules.
func (s *Syncer) IsPlayable(card models.Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return game.IsPlayable(card, s.state.TopDiscard(), s.state.ChosenColor, s.state.PendingDraw)
}

// PlayCard plays a card from the local seat's hand and persists the result.
func (s *Syncer) PlayCard(ctx context.Context, cardID uuid.UUID, chosen models.CardColor) (*game.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, notices, err := game.ApplyPlay(s.state, s.playerID, cardID, chosen)
	if err != nil {
		return nil, err
	}
	return s.push(ctx, next, notices, true)
}

// DrawCard draws one card for the local seat and persists the result. The
// turn does not advance; the seat may then play the drawn card or pass.
func (s *Syncer) DrawCard(ctx context.Context) (*game.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasDrawn {
		return nil, game.ErrAlreadyDrawn
	}
	next, notices, err := game.ApplyDraw(s.state, s.playerID)
	if err != nil {
		return nil, err
	}
	s.hasDrawn = true
	return s.push(ctx, next, notices, false)
}

// PassTurn ends the local seat's turn after a draw and persists the result.
func (s *Syncer) PassTurn(ctx context.Context) (*game.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDrawn {
		return nil, game.ErrMustDrawFirst
	}
	next, notices, err := game.ApplyPass(s.state, s.playerID)
	if err != nil {
		return nil, err
	}
	return s.push(ctx, next, notices, true)
}

// ResolveTimeout runs the deterministic auto-play for the local seat, used
// when its turn timer expires.
func (s *Syncer) ResolveTimeout(ctx context.Context) (*game.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, notices, err := game.ResolveTimeout(s.state, s.playerID)
	if err != nil {
		return nil, err
	}
	if next.Version == s.state.Version && next.CurrentPlayerIndex == s.state.CurrentPlayerIndex &&
		len(next.DiscardPile) == len(s.state.DiscardPile) && len(next.DrawPile) == len(s.state.DrawPile) {
		// pending stack left for the stacking play to resolve
		return s.state, nil
	}
	return s.push(ctx, next, notices, true)
}

// push persists an accepted transition. A version conflict means another
// participant wrote first (the known race window, see the concurrency model);
// the local optimistic copy is abandoned in favor of a fresh read rather
// than retried, since the turn that justified the write may no longer exist.
// Assumes the mutex is held.
func (s *Syncer) push(ctx context.Context, next *game.GameState, notices []game.Notice, turnEnded bool) (*game.GameState, error) {
	next.Version = s.state.Version + 1
	if err := s.store.Write(ctx, next); err != nil {
		if err == store.ErrVersionConflict {
			fresh, readErr := s.store.Read(ctx, s.gameID)
			if readErr == nil && fresh.Version > s.state.Version {
				s.install(fresh, nil)
			}
			return nil, fmt.Errorf("state changed under you: %w", err)
		}
		return nil, fmt.Errorf("persist game %s: %w", s.gameID, err)
	}
	if turnEnded {
		s.hasDrawn = false
	}
	s.install(next, notices)
	return next, nil
}

// applyRemote handles a document write observed on the notification channel.
// Our own writes echo back here and are dropped by the version check.
func (s *Syncer) applyRemote(st *game.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil && st.Version <= s.state.Version {
		return
	}
	if s.state != nil && st.CurrentPlayerIndex != s.state.CurrentPlayerIndex {
		s.hasDrawn = false
	}
	s.install(st, nil)
}

// install swaps in the new state and notifies the consumer. Assumes the
// mutex is held.
func (s *Syncer) install(st *game.GameState, notices []game.Notice) {
	s.state = st
	if s.OnChange != nil {
		s.OnChange(st, notices)
	}
}
