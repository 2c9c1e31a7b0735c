package game

import "sync"

// GameStore holds live game instances keyed by room id.
type GameStore struct {
	mu    sync.Mutex
	games map[string]*UnoGame
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[string]*UnoGame),
	}
}

func (s *GameStore) AddGame(g *UnoGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *GameStore) GetGame(id string) (*UnoGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[id]
	return g, exists
}

func (s *GameStore) DeleteGame(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[id]; ok {
		g.Stop()
		delete(s.games, id)
	}
}
