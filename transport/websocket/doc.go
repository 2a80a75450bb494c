// Package websocket provides WebSocket transport for the Geo Routes Game.
//
// The websocket package implements:
//   - Real-time progress broadcasting to connected clients
//   - Session-aware WebSocket connections
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Messages are JSON-encoded. After every mutating action (guess, undo,
// hint, give up, new round) the server pushes a "progress_update" message
// carrying the session's current route progress. Custom events can be
// pushed with BroadcastEvent.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?sessionId=abc1) when establishing the connection.
// Progress updates are broadcast only to clients connected to the same
// session, so spectators of one route never see another table's moves.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("sessionId"))
//	})
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive updates
// simultaneously without blocking each other.
package websocket
