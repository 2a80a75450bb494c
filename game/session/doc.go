// Package session provides session management for the route game.
//
// The session package implements thread-safe session storage and retrieval,
// 4-character hex session IDs, lifecycle management with last-access
// expiration, and optional file-based persistence.
//
// Persistence:
//
// Sessions are persisted as one JSON file each, containing the engine's
// serialized round state plus cumulative totals. Restoring a session
// rebuilds the engine from that state against the current atlas, so a
// dataset update between restarts changes adjacency for in-flight rounds.
// Persisted sessions are a convenience, not a ledger.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", world, packs)
//	if err != nil {
//		log.Fatal().Err(err).Msg("sessions dir unavailable")
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
package session
