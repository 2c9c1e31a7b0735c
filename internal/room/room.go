// internal/room/room.go

// Package room implements the waiting-room phase: players assemble into an
// ordered roster which, once the host starts the game, seeds the deck
// factory's game-start operation.
package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/auth"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
)

const (
	// MaxPlayers caps the roster; MinPlayers gates game start.
	MaxPlayers = 6
	MinPlayers = 2
)

var (
	ErrRoomFull    = errors.New("this game room is already full")
	ErrGameStarted = errors.New("the game has already started")
	ErrNotHost     = errors.New("only the host can start the game")
	ErrTooFew      = errors.New("you need at least 2 players to start")
	ErrBadPasscode = errors.New("incorrect room passcode")
)

// EventType labels roster change notifications pushed to waiting clients.
type EventType string

const (
	EventPlayerJoined EventType = "room_player_joined"
	EventPlayerLeft   EventType = "room_player_left"
	EventGameStarting EventType = "room_game_starting"
)

// Event carries a roster change to the presentation layer.
type Event struct {
	Type    EventType       `json:"type"`
	RoomID  string          `json:"roomId"`
	Players []models.Player `json:"players"`
}

// Room is an ephemeral grouping of players waiting for a game to start.
// Roster order is join order and becomes turn order.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	players      []models.Player
	passcodeHash string
	started      bool

	// BroadcastFn pushes roster events to connected clients. If nil, no
	// broadcast is done.
	BroadcastFn func(ev Event)

	// OnEmpty is called when the last player leaves, typically to delete the
	// room from its store.
	OnEmpty func(roomID string)
}

// NewRoom creates an empty waiting room. passcode may be empty for a public
// room; otherwise it is hashed before storage.
func NewRoom(id, passcode string) (*Room, error) {
	r := &Room{ID: id, CreatedAt: time.Now()}
	if passcode != "" {
		hash, err := auth.HashPasscode(passcode)
		if err != nil {
			return nil, fmt.Errorf("hash passcode for room %s: %w", id, err)
		}
		r.passcodeHash = hash
	}
	return r, nil
}

// Join appends a player to the roster. The first joiner becomes host.
func (r *Room) Join(name, passcode string) (models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return models.Player{}, ErrGameStarted
	}
	if len(r.players) >= MaxPlayers {
		return models.Player{}, ErrRoomFull
	}
	if r.passcodeHash != "" {
		ok, err := auth.ComparePasscode(passcode, r.passcodeHash)
		if err != nil || !ok {
			return models.Player{}, ErrBadPasscode
		}
	}
	p := models.Player{
		ID:     uuid.New(),
		Name:   name,
		IsHost: len(r.players) == 0,
		Hand:   []models.Card{},
	}
	r.players = append(r.players, p)
	r.broadcast(EventPlayerJoined)
	return p, nil
}

// AddBot seats a computer opponent. Only the host may add bots, and only
// before the game starts. Bots are named in seating order.
func (r *Room) AddBot(hostID uuid.UUID) (models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return models.Player{}, ErrGameStarted
	}
	if len(r.players) >= MaxPlayers {
		return models.Player{}, ErrRoomFull
	}
	host := r.findPlayer(hostID)
	if host == nil || !host.IsHost {
		return models.Player{}, ErrNotHost
	}
	n := 0
	for _, p := range r.players {
		if p.IsBot {
			n++
		}
	}
	p := models.Player{
		ID:    uuid.New(),
		Name:  fmt.Sprintf("Bot %d", n+1),
		IsBot: true,
		Hand:  []models.Card{},
	}
	r.players = append(r.players, p)
	r.broadcast(EventPlayerJoined)
	return p, nil
}

// Leave removes a player from the roster. Host status passes to the next
// seat in join order.
func (r *Room) Leave(playerID uuid.UUID) {
	r.mu.Lock()
	for i, p := range r.players {
		if p.ID == playerID {
			wasHost := p.IsHost
			r.players = append(r.players[:i], r.players[i+1:]...)
			if wasHost && len(r.players) > 0 {
				r.players[0].IsHost = true
			}
			break
		}
	}
	empty := len(r.players) == 0
	if !empty {
		r.broadcast(EventPlayerLeft)
	}
	onEmpty := r.OnEmpty
	r.mu.Unlock()

	if empty && onEmpty != nil {
		onEmpty(r.ID)
	}
}

// Roster returns a copy of the current roster in join order.
func (r *Room) Roster() []models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Player(nil), r.players...)
}

// Started reports whether the host has started the game.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Start transitions the waiting room into play and returns the roster to
// feed the deck factory. Only the host may start, and only once.
func (r *Room) Start(hostID uuid.UUID) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil, ErrGameStarted
	}
	if len(r.players) < MinPlayers {
		return nil, ErrTooFew
	}
	host := r.findPlayer(hostID)
	if host == nil || !host.IsHost {
		return nil, ErrNotHost
	}
	r.started = true
	r.broadcast(EventGameStarting)
	return append([]models.Player(nil), r.players...), nil
}

// findPlayer assumes the lock is held.
func (r *Room) findPlayer(id uuid.UUID) *models.Player {
	for i := range r.players {
		if r.players[i].ID == id {
			return &r.players[i]
		}
	}
	return nil
}

// broadcast assumes the lock is held.
func (r *Room) broadcast(t EventType) {
	if r.BroadcastFn == nil {
		return
	}
	r.BroadcastFn(Event{
		Type:    t,
		RoomID:  r.ID,
		Players: append([]models.Player(nil), r.players...),
	})
}
