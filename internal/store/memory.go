// internal/store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
)

// MemoryStore is the DocStore used for single-process local play and tests.
// Notifications are delivered on their own goroutines, mirroring the pub/sub
// channel of the Redis store; a subscriber may be mid-write on the same
// document when its notification arrives.
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string]*game.GameState
	subs   map[string]map[int]func(*game.GameState)
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*game.GameState),
		subs: make(map[string]map[int]func(*game.GameState)),
	}
}

func (m *MemoryStore) Read(ctx context.Context, gameID string) (*game.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.docs[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (m *MemoryStore) Write(ctx context.Context, st *game.GameState) error {
	m.mu.Lock()
	cur, exists := m.docs[st.ID]
	expected := int64(1)
	if exists {
		expected = cur.Version + 1
	}
	if st.Version != expected {
		m.mu.Unlock()
		return ErrVersionConflict
	}
	stored := st.Clone()
	m.docs[st.ID] = stored
	var fns []func(*game.GameState)
	for _, fn := range m.subs[st.ID] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		go fn(stored.Clone())
	}
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, gameID string, onChange func(*game.GameState)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[gameID] == nil {
		m.subs[gameID] = make(map[int]func(*game.GameState))
	}
	id := m.nextID
	m.nextID++
	m.subs[gameID][id] = onChange
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[gameID], id)
	}, nil
}
