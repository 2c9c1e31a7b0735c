// internal/handlers/game_server.go
package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/database"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/deck"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/room"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/store"
)

// GameServer is the high-level struct tying rooms, live games, the document
// store and the connection registry together.
type GameServer struct {
	Mutex     sync.Mutex
	RoomStore *room.RoomStore
	GameStore *game.GameStore
	Docs      store.DocStore
	Conns     *ConnRegistry
	Logger    *logrus.Logger
}

func NewGameServer(logger *logrus.Logger, docs store.DocStore) *GameServer {
	return &GameServer{
		RoomStore: room.NewRoomStore(),
		GameStore: game.NewGameStore(),
		Docs:      docs,
		Conns:     NewConnRegistry(),
		Logger:    logger,
	}
}

// CreateRoom mints a new waiting room, wires its broadcasts to the connection
// registry, and registers it in the store.
func (gs *GameServer) CreateRoom(passcode string) (*room.Room, error) {
	r, err := room.NewRoom(uuid.NewString(), passcode)
	if err != nil {
		return nil, err
	}
	// Roster changes also persist a waiting-phase document so late joiners
	// and other instances see the room before the deal. Broadcasts arrive
	// serialized under the room lock, keeping the version sequence intact.
	var waitingVersion int64
	r.BroadcastFn = func(ev room.Event) {
		gs.Conns.BroadcastJSON(gs.Logger, r.ID, ev)
		if ev.Type == room.EventGameStarting {
			return
		}
		waitingVersion++
		wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		err := gs.Docs.Write(wctx, &game.GameState{
			ID:          r.ID,
			Status:      game.StatusWaiting,
			Players:     ev.Players,
			IsClockwise: true,
			Version:     waitingVersion,
		})
		if err != nil {
			gs.Logger.Warnf("Failed to persist waiting room %s at version %d: %v", r.ID, waitingVersion, err)
		}
	}
	r.OnEmpty = func(roomID string) {
		gs.RoomStore.DeleteRoom(roomID)
		gs.Conns.DropRoom(roomID)
	}
	gs.RoomStore.AddRoom(r)
	return r, nil
}

// StartGame transitions a waiting room into a live game: the roster seeds the
// deck factory, the director is wired to the connection registry and the
// document store, and the first turn is scheduled.
func (gs *GameServer) StartGame(ctx context.Context, r *room.Room, hostID uuid.UUID) (*game.UnoGame, error) {
	roster, err := r.Start(hostID)
	if err != nil {
		return nil, err
	}
	st, err := deck.NewGameState(r.ID, roster)
	if err != nil {
		return nil, err
	}
	// the dealt state supersedes the waiting-phase document
	if cur, err := gs.Docs.Read(ctx, r.ID); err == nil {
		st.Version = cur.Version + 1
	}

	g := game.NewUnoGame(st)
	g.BroadcastFn = func(ev game.GameEvent) {
		gs.Conns.BroadcastJSON(gs.Logger, r.ID, ev)
	}
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		gs.Conns.SendJSON(gs.Logger, r.ID, playerID, ev)
	}
	// Persistence writes are serialized on one goroutine so versions reach
	// the store in commit order. Installed snapshots are immutable, so handing
	// them off the game lock is safe.
	writes := make(chan *game.GameState, 16)
	go func() {
		for snap := range writes {
			wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := gs.Docs.Write(wctx, snap)
			cancel()
			if err != nil && err != store.ErrVersionConflict {
				gs.Logger.Errorf("Failed to persist game %s at version %d: %v", snap.ID, snap.Version, err)
			}
		}
	}()
	g.OnStateChange = func(st *game.GameState) {
		select {
		case writes <- st:
		default:
			gs.Logger.Warnf("Dropping persistence write for game %s at version %d: queue full", st.ID, st.Version)
		}
	}
	// all sends and this close run under the game lock, and the game rejects
	// further actions once a winner is set
	g.OnGameEnd = func(st *game.GameState) {
		close(writes)
		go gs.finishGame(st)
	}

	database.UpsertInitialGameState(st)
	if err := gs.Docs.Write(ctx, st); err != nil {
		gs.Logger.Errorf("Failed to persist initial state for game %s: %v", st.ID, err)
	}

	gs.GameStore.AddGame(g)
	g.Start()
	gs.Logger.Infof("Game %s started with %d players", st.ID, len(st.Players))
	return g, nil
}

// finishGame records the result and tears the room down. Runs on its own
// goroutine since OnGameEnd fires with the game lock held.
func (gs *GameServer) finishGame(st *game.GameState) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := database.RecordGameResult(ctx, st); err != nil {
		gs.Logger.Errorf("Failed to record result for game %s: %v", st.ID, err)
	}
	gs.GameStore.DeleteGame(st.ID)
	gs.RoomStore.DeleteRoom(st.ID)
	gs.Conns.DropRoom(st.ID)
	gs.Logger.Infof("Game %s finished, winner %s", st.ID, st.WinnerID)
}
