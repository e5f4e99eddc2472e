// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game handler.
// These provide more specific reasons for closure than standard codes.
const (
	GameFullError websocket.StatusCode = 4000 // No free seat, or a round is already in progress.
)
