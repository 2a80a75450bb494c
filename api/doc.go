// Package api provides HTTP REST API handlers for the Geo Routes Game.
//
// The api package implements:
//   - RESTful endpoints for route-building operations
//   - Session management endpoints
//   - Route pack listing, loading, and creation
//   - Daily challenge, leaderboard, and streak endpoints
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional pack_id)
//   - GET /api/sessions - List all sessions (sort, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Round Operations:
//   - GET /api/sessions/{id}/progress - Current route progress
//   - POST /api/sessions/{id}/guess - Submit a country name
//   - POST /api/sessions/{id}/undo - Remove the most recent country
//   - POST /api/sessions/{id}/hint - Spend one hint
//   - POST /api/sessions/{id}/give-up - Concede and reveal the route
//   - POST /api/sessions/{id}/timeout - Concede on timer expiry
//   - POST /api/sessions/{id}/new-round - Start a fresh route
//
// Packs and Geography:
//   - GET /api/packs - List available route packs
//   - POST /api/packs - Save a route pack
//   - GET /api/packs/{name} - Get a specific pack
//   - GET /api/countries - List all known countries
//
// Daily Challenge (when enabled):
//   - GET /api/daily - Today's route (optional ?date=YYYY-MM-DD)
//   - POST /api/daily/results - Submit a result
//   - GET /api/daily/leaderboard - Standings for a date
//   - GET /api/daily/streak/{player} - Consecutive-day streak
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Guesses are sent as POST with a
// JSON body:
//
//	{
//	  "country": "Austria"
//	}
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
//
// WebSocket:
//
// GET /ws?session={id} upgrades to a WebSocket connection that receives
// progress updates after every mutating operation on the session.
package api
