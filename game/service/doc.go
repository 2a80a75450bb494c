// Package service wires the route engine into a session-based game service.
//
// RouteService is the single interface all transports (REST, WebSocket, MCP)
// consume. The implementation owns the responsibilities the engine leaves to
// its host: choosing playable routes from a pack (never handing out a round
// with the unreachable par sentinel), screening guesses the engine does not
// validate (unknown countries, duplicates, naming the destination), wrong-
// guess bookkeeping, applying the standalone scoring policy on completion,
// and auto-saving sessions after every mutation.
//
// All methods are safe for concurrent use; a single service-level mutex
// serializes engine access, matching the engine's single-threaded contract.
package service
