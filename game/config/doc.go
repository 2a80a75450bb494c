// Package config provides route pack management for the route game.
//
// A route pack is a JSON file that configures playable rounds: an optional
// list of fixed start/end pairings, par bounds for random route generation,
// the round time limit, and the hint budget.
//
// Pack files live in a configurable directory and are cached after first
// load. A built-in default pack (random routes with par 2-6) is always
// available so a fresh checkout plays without any pack files.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal().Err(err).Msg("packs unavailable")
//	}
//
//	pack, err := manager.LoadPack("europe")
//	if err != nil {
//		pack = manager.GetDefault()
//	}
//
// Validation:
//
// Packs are validated on load and save: required metadata, sane par bounds,
// distinct route endpoints, non-negative time limit, and a hint budget
// within limits.
package config
