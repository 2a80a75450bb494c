package service

import (
	"time"

	"github.com/worldwalk/georoutes/game/config"
	"github.com/worldwalk/georoutes/game/engine"
)

// Session is a live play session: one engine instance for the current round
// plus cumulative totals carried across rounds.
type Session struct {
	ID             string              `json:"id"`
	Engine         *engine.RouteEngine `json:"-"`
	Pack           *config.RoutePack   `json:"-"`
	PackID         string              `json:"pack_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`

	RoundsPlayed int `json:"rounds_played"`
	TotalScore   int `json:"total_score"`
}

// SessionInfo is the API-facing view of a session.
type SessionInfo struct {
	ID             string           `json:"id"`
	PackID         string           `json:"pack_id"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Route          engine.RouteInfo `json:"route"`
	Progress       engine.Progress  `json:"progress"`
	RoundsPlayed   int              `json:"rounds_played"`
	TotalScore     int              `json:"total_score"`

	TimeLimitSeconds int `json:"time_limit_seconds"`
}

// GuessOutcome is the result of submitting a country name. The embedded
// engine result carries the discriminated action; the service adds its own
// bookkeeping and, on completion, the standalone score.
type GuessOutcome struct {
	engine.GuessResult

	WrongGuesses int                    `json:"wrong_guesses"`
	FirstTry     bool                   `json:"first_try,omitempty"`
	Score        int                    `json:"score,omitempty"`
	RenderPath   []engine.TaggedCountry `json:"render_path,omitempty"`
}

// UndoOutcome wraps the engine's undo result.
type UndoOutcome struct {
	engine.UndoResult

	RenderPath []engine.TaggedCountry `json:"render_path,omitempty"`
}

// HintOutcome wraps the engine's hint result.
type HintOutcome struct {
	engine.HintResult
}

// TerminalOutcome is the result of a give-up or timeout, including the
// score recorded for the round (always zero under the standalone policy).
type TerminalOutcome struct {
	engine.TerminalResult

	Score int `json:"score"`
}

// ProgressOutcome is the host/renderer view of the current round.
type ProgressOutcome struct {
	engine.Progress

	Route      engine.RouteInfo       `json:"route_info"`
	RenderPath []engine.TaggedCountry `json:"render_path"`
}
