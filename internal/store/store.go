// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
)

var (
	// ErrNotFound is returned by Read when no document exists for the id.
	ErrNotFound = errors.New("game document not found")

	// ErrVersionConflict is returned by Write when the document's stored
	// version does not immediately precede the incoming one. The caller holds
	// a stale read and must reconcile before retrying.
	ErrVersionConflict = errors.New("game document version conflict")
)

// DocStore is the persistence/notification channel for game documents:
// last-write-wins full-document replacement guarded by a compare-and-swap on
// the monotonic document version, with push-based fan-out of every write to
// all subscribers.
type DocStore interface {
	// Read returns the current document, or ErrNotFound.
	Read(ctx context.Context, gameID string) (*game.GameState, error)

	// Write replaces the document. The incoming state's Version must be
	// exactly one past the stored version (or 1 when absent), else
	// ErrVersionConflict. Every successful write is broadcast to subscribers.
	Write(ctx context.Context, st *game.GameState) error

	// Subscribe registers onChange for every write to the document and
	// returns an unsubscribe function.
	Subscribe(ctx context.Context, gameID string, onChange func(*game.GameState)) (func(), error)
}
