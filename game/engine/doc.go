// Package engine provides the core logic for the country-route game.
//
// The engine package implements the round state machine including:
//   - Shortest-route computation over the country border graph (BFS)
//   - Incremental path building with the branch-anywhere adjacency rule
//   - Snapshot-based undo that restores the wrong-guess counter exactly
//   - A bounded hint budget with divergence-aware hint selection
//   - Give-up / timeout termination and par-based scoring policies
//
// Core Types:
//
// RouteEngine owns all state for one round and is the only mutable type.
// Borders is the adjacency input supplied by the data provider. Every
// operation returns a result struct whose Action field discriminates the
// outcome; the engine has no error paths and never panics on game input.
//
// Usage:
//
//	eng := engine.NewRouteEngine(borders, "Portugal", "Germany")
//	info := eng.Route() // par and the optimal path, fixed for the round
//
//	res := eng.AddCountry("Spain")
//	switch res.Action {
//	case engine.ActionAdded:
//		// keep playing
//	case engine.ActionComplete:
//		score := engine.StandaloneScore(engine.Outcome{
//			Correct: true, ParDiff: res.ParDiff, HintsUsed: res.HintsUsed,
//		})
//		_ = score
//	}
//
// Game Rules:
//
// The player connects a start country to a destination by naming bordering
// countries one at a time. A candidate is legal when it borders any country
// already on the route, so exploring a branch from an earlier point needs no
// undo. The destination is never typed: as soon as an added country borders
// it, the engine appends it and ends the round. Par is the intermediate
// count of the shortest route; scoring compares the player's count to par.
package engine
