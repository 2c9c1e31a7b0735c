// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/auth"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/room"
)

// roomResponse is the JSON reply for room create/join: the caller's identity
// plus the current roster.
type roomResponse struct {
	RoomID  string          `json:"roomId"`
	Player  models.Player   `json:"player"`
	Players []models.Player `json:"players"`
	Token   string          `json:"token"`
}

// CreateRoomHandler creates a waiting room and seats the caller as host.
//
//	POST /room/create {"name": "...", "passcode": "..."}
func CreateRoomHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Name     string `json:"name"`
			Passcode string `json:"passcode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		rm, err := gs.CreateRoom(req.Passcode)
		if err != nil {
			gs.Logger.Errorf("Failed to create room: %v", err)
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}
		p, err := rm.Join(name, req.Passcode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		gs.Logger.Infof("Room %s created by %s (%s)", rm.ID, p.Name, p.ID)
		respondWithSession(w, gs, rm, p)
	}
}

// JoinRoomHandler seats the caller in an existing waiting room.
//
//	POST /room/join {"roomId": "...", "name": "...", "passcode": "..."}
func JoinRoomHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			RoomID   string `json:"roomId"`
			Name     string `json:"name"`
			Passcode string `json:"passcode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		rm, ok := gs.RoomStore.GetRoom(req.RoomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		p, err := rm.Join(name, req.Passcode)
		if err != nil {
			status := http.StatusConflict
			if err == room.ErrBadPasscode {
				status = http.StatusForbidden
			}
			http.Error(w, err.Error(), status)
			return
		}
		gs.Logger.Infof("Player %s (%s) joined room %s", p.Name, p.ID, rm.ID)
		respondWithSession(w, gs, rm, p)
	}
}

// respondWithSession mints a session token for the seated player, sets it as
// a cookie for the WS upgrade, and writes the JSON reply.
func respondWithSession(w http.ResponseWriter, gs *GameServer, rm *room.Room, p models.Player) {
	token, err := auth.CreateSessionToken(p.ID.String(), p.Name)
	if err != nil {
		gs.Logger.Errorf("Failed to create session token for player %s: %v", p.ID, err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roomResponse{
		RoomID:  rm.ID,
		Player:  p,
		Players: rm.Roster(),
		Token:   token,
	})
}
