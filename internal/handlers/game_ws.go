// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/auth"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/middleware"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/models"
	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/room"
)

// GameMessage represents the structure for incoming WebSocket messages,
// covering both the waiting-room phase and the play phase.
type GameMessage struct {
	Type string `json:"type"`

	// Card carries the card involved in a play action. A map keeps optional
	// client fields (like a pre-chosen wild color) flexible.
	Card map[string]interface{} `json:"card,omitempty"`

	// Color is the chosen color for a suspended wild play.
	Color string `json:"color,omitempty"`

	// Payload is a generic container for any additional data.
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for one room. It
// authenticates the session, verifies membership, registers the connection,
// and runs the read loop routing room and game messages.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract room ID from URL path: /ws/{room_id}
		roomID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/ws/"), "/")
		if roomID == "" {
			http.Error(w, "Missing room_id in path (/ws/{room_id})", http.StatusBadRequest)
			return
		}
		rm, ok := gs.RoomStore.GetRoom(roomID)
		if !ok {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for room %s connected with invalid subprotocol: %s", roomID, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		playerID, err := authenticateRequest(r)
		if err != nil {
			logger.Warnf("Session authentication failed for room %s: %v", roomID, err)
			c.Close(InvalidAuthTokenError, "Authentication failed.")
			return
		}

		// Verify the authenticated player holds a seat in this room.
		seated := false
		for _, p := range rm.Roster() {
			if p.ID == playerID {
				seated = true
				break
			}
		}
		if !seated {
			logger.Warnf("Player %s is not seated in room %s. Closing connection.", playerID, roomID)
			c.Close(NotSeatedError, "You are not a player in this room.")
			return
		}

		gs.Conns.Register(roomID, playerID, c)
		logger.Infof("Player %s connected to room %s", playerID, roomID)

		// On reconnect into a running game, push the obfuscated snapshot so the
		// client can redraw.
		if g, ok := gs.GameStore.GetGame(roomID); ok {
			g.Mu.Lock()
			g.SyncStateToPlayer(playerID)
			g.Mu.Unlock()
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readGameMessages(ctx, c, gs, rm, playerID, logger)

		gs.Conns.Unregister(roomID, playerID, c)
		if !rm.Started() {
			// leaving the waiting room frees the seat; mid-game the seat stays
			// so the player can reconnect
			rm.Leave(playerID)
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// authenticateRequest resolves the player id from the session token, checking
// the Authorization header first and falling back to the session cookie.
func authenticateRequest(r *http.Request) (uuid.UUID, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		token = extractCookieToken(r.Header.Get("Cookie"), "session_token")
	}
	if token == "" {
		return uuid.Nil, fmt.Errorf("no session token provided")
	}
	sub, _, err := auth.AuthenticateSessionToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	playerID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed player id in token: %w", err)
	}
	return playerID, nil
}

// readGameMessages continuously reads messages from a client connection,
// unmarshals them, and routes them to the room or the live game. It exits on
// read error or context cancellation.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, rm *room.Room, playerID uuid.UUID, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for player %s in room %s.", playerID, rm.ID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for player %s in room %s.", playerID, rm.ID)
			} else {
				logger.Warnf("Error reading from WebSocket for player %s in room %s: %v (Status: %d)", playerID, rm.ID, err, status)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from player %s in room %s. Ignoring.", msgType, playerID, rm.ID)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received from player %s in room %s: %v. Data: %s", playerID, rm.ID, err, string(data))
			sendWsError(ctx, c, logger, "Invalid JSON format.")
			continue
		}

		logger.Debugf("Received message '%s' from player %s in room %s.", msg.Type, playerID, rm.ID)

		switch msg.Type {
		case "room_add_bot":
			if _, err := rm.AddBot(playerID); err != nil {
				sendWsError(ctx, c, logger, err.Error())
			}

		case "room_start":
			if _, err := gs.StartGame(ctx, rm, playerID); err != nil {
				sendWsError(ctx, c, logger, err.Error())
			}

		case "action_play", "action_draw", "action_pass", "action_choose_color":
			g, ok := gs.GameStore.GetGame(rm.ID)
			if !ok {
				sendWsError(ctx, c, logger, "The game has not started yet.")
				continue
			}
			action := models.GameAction{
				ActionType: msg.Type,
				Payload:    make(map[string]interface{}),
			}
			if msg.Card != nil {
				action.Payload = msg.Card
			} else if msg.Payload != nil {
				action.Payload = msg.Payload
			}
			if msg.Color != "" {
				action.Payload["color"] = msg.Color
			}
			g.Mu.Lock()
			g.HandlePlayerAction(playerID, action)
			g.Mu.Unlock()

		case "ping":
			logger.Tracef("Received ping from player %s, sending pong.", playerID)
			sendWsMessage(ctx, c, logger, map[string]string{"type": "pong"})

		default:
			logger.Warnf("Unknown message type '%s' from player %s in room %s.", msg.Type, playerID, rm.ID)
			sendWsError(ctx, c, logger, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}

		select {
		case <-ctx.Done():
			logger.Infof("Context canceled after processing message for player %s in room %s.", playerID, rm.ID)
			return
		default:
		}
	}
}

// sendWsMessage marshals a message and sends it to the WebSocket client with
// a write timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, logger *logrus.Logger, message interface{}) {
	if c == nil {
		logger.Error("Attempted to send WebSocket message on nil connection.")
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := c.Write(writeCtx, websocket.MessageText, msgBytes); err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			logger.Warnf("Error writing WebSocket message: %v (Status: %d)", err, status)
		}
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, logger *logrus.Logger, errorMsg string) {
	sendWsMessage(ctx, c, logger, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}

// extractCookieToken extracts a named cookie value from the "Cookie" header,
// or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}
