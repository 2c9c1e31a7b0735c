// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the room and game handlers. These give
// clients a more specific reason for closure than the standard codes.
const (
	BadSubprotocolError   websocket.StatusCode = 3000 // unsupported subprotocol
	InvalidAuthTokenError websocket.StatusCode = 3001 // session token invalid or expired
	NotSeatedError        websocket.StatusCode = 3002 // authenticated player holds no seat in the room
)
