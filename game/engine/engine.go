package engine

import (
	"fmt"
	"time"
)

// RouteEngine owns all state for a single round of the country-route game.
// It is created by NewRouteEngine (one round per instance), mutated only
// through AddCountry, Undo, Hint, RecordWrongGuess, GiveUp and
// HandleTimeout, and is safe for single-threaded use: hosts call it from one
// goroutine at a time, typically under the service layer's lock.
type RouteEngine struct {
	borders Borders

	start       string
	end         string
	optimalPath []string
	par         int

	currentPath  []string
	pathHistory  []Snapshot
	maxHints     int
	hintsUsed    int
	wrongGuesses int
	roundEnded   bool

	startedAt time.Time
	now       func() time.Time
}

// NewRouteEngine creates a round from start to end over the given border
// graph. The optimal path is computed once here and never changes for the
// round's lifetime. If end is unreachable from start, Par reports the
// UnreachablePar sentinel and the caller must treat the round as unplayable.
//
// The caller is responsible for passing two distinct, known country names;
// the engine does not defend against start == end.
func NewRouteEngine(borders Borders, start, end string) *RouteEngine {
	e := &RouteEngine{
		borders:     borders,
		start:       start,
		end:         end,
		currentPath: []string{start},
		maxHints:    MaxHints,
		now:         time.Now,
	}

	e.optimalPath = FindShortestPath(borders, start, end)
	if e.optimalPath == nil {
		e.par = UnreachablePar
	} else {
		e.par = len(e.optimalPath) - 2
	}

	e.startedAt = e.now()
	return e
}

// NewRouteEngineFromState restores an engine from a persisted RoundState.
// The border graph is not part of the state and must be supplied again.
func NewRouteEngineFromState(borders Borders, state *RoundState) (*RouteEngine, error) {
	if state == nil {
		return nil, fmt.Errorf("round state cannot be nil")
	}
	if state.Start == "" || state.End == "" {
		return nil, fmt.Errorf("round state missing start or end")
	}

	maxHints := state.MaxHints
	if maxHints <= 0 {
		maxHints = MaxHints
	}

	currentPath := state.CurrentPath
	if len(currentPath) == 0 {
		currentPath = []string{state.Start}
	}

	return &RouteEngine{
		borders:      borders,
		start:        state.Start,
		end:          state.End,
		optimalPath:  state.OptimalPath,
		par:          state.Par,
		currentPath:  currentPath,
		pathHistory:  state.PathHistory,
		maxHints:     maxHints,
		hintsUsed:    state.HintsUsed,
		wrongGuesses: state.WrongGuesses,
		roundEnded:   state.RoundEnded,
		startedAt:    time.UnixMilli(state.StartedAt),
		now:          time.Now,
	}, nil
}

// SetMaxHints overrides the default hint budget. Lowering the budget below
// the number of hints already used simply makes the next request report
// no_hints_left.
func (e *RouteEngine) SetMaxHints(n int) {
	if n > 0 {
		e.maxHints = n
	}
}

// Route returns the round's immutable parameters.
func (e *RouteEngine) Route() RouteInfo {
	return RouteInfo{
		Start:       e.start,
		End:         e.end,
		Par:         e.par,
		OptimalPath: copyPath(e.optimalPath),
	}
}

// CanAddCountry reports whether candidate is a legal next move: it must
// border at least one country already on the player's path. Any member of
// the path qualifies, not just the most recent one; the player may branch
// backward from an earlier point without undoing first.
func (e *RouteEngine) CanAddCountry(candidate string) bool {
	for _, placed := range e.currentPath {
		for _, neighbor := range e.borders[placed] {
			if neighbor == candidate {
				return true
			}
		}
	}
	return false
}

// AddCountry attempts to append candidate to the player's path.
//
// An invalid candidate (no border with any path member) is rejected without
// mutating state. A valid candidate is appended after pushing an undo
// snapshot; if the appended country borders the destination, the destination
// is appended automatically, the round ends, and a complete result carries
// the derived metrics. The player therefore never types the destination.
func (e *RouteEngine) AddCountry(candidate string) GuessResult {
	if e.roundEnded {
		return GuessResult{Action: ActionIgnore}
	}

	if !e.CanAddCountry(candidate) {
		return GuessResult{
			Action:  ActionInvalid,
			Country: candidate,
			Message: fmt.Sprintf("%s does not border any country on your route", candidate),
		}
	}

	// Snapshot before the append so Undo restores this exact state,
	// wrong-guess counter included.
	e.pathHistory = append(e.pathHistory, Snapshot{
		Path:         copyPath(e.currentPath),
		WrongGuesses: e.wrongGuesses,
	})
	e.currentPath = append(e.currentPath, candidate)

	if e.bordersDestination(candidate) {
		e.currentPath = append(e.currentPath, e.end)
		e.roundEnded = true

		steps := len(e.currentPath) - 2
		return GuessResult{
			Action:      ActionComplete,
			Country:     candidate,
			Message:     fmt.Sprintf("%s borders %s: route complete!", candidate, e.end),
			Route:       copyPath(e.currentPath),
			Steps:       steps,
			Par:         e.par,
			ParDiff:     steps - e.par,
			TimeSeconds: e.elapsedSeconds(),
			HintsUsed:   e.hintsUsed,
		}
	}

	return GuessResult{
		Action:  ActionAdded,
		Country: candidate,
		Route:   copyPath(e.currentPath),
	}
}

// RecordWrongGuess counts a rejected guess against the round. The host owns
// guess screening (duplicates, typing the destination, unknown names), so it
// also owns telling the engine when a guess went wrong; routing the count
// through the engine keeps it inside undo snapshots.
func (e *RouteEngine) RecordWrongGuess() {
	if !e.roundEnded {
		e.wrongGuesses++
	}
}

// WrongGuesses returns the current wrong-guess count.
func (e *RouteEngine) WrongGuesses() int {
	return e.wrongGuesses
}

// Undo removes the most recently added country and restores the wrong-guess
// counter from the snapshot taken before that append. Hints already spent
// stay spent.
func (e *RouteEngine) Undo() UndoResult {
	if e.roundEnded {
		return UndoResult{Action: ActionIgnore}
	}
	if len(e.currentPath) <= 1 {
		return UndoResult{Action: ActionCannotUndo}
	}

	removed := e.currentPath[len(e.currentPath)-1]
	last := e.pathHistory[len(e.pathHistory)-1]
	e.pathHistory = e.pathHistory[:len(e.pathHistory)-1]
	e.currentPath = copyPath(last.Path)
	e.wrongGuesses = last.WrongGuesses

	return UndoResult{
		Action:  ActionUndone,
		Removed: removed,
		Route:   copyPath(e.currentPath),
	}
}

// Hint spends one hint from the budget. While the player's path is still a
// prefix of the optimal path, the hint names the next optimal country. Once
// the player has diverged, the hint advises undoing instead: relative to the
// player's actual position "the next optimal step" is no longer well-defined,
// and the engine deliberately does not try to splice them back on.
func (e *RouteEngine) Hint() HintResult {
	if e.roundEnded {
		return HintResult{Action: ActionIgnore, HintsRemaining: e.maxHints - e.hintsUsed}
	}
	if e.hintsUsed >= e.maxHints {
		return HintResult{
			Action:  ActionNoHintsLeft,
			Message: "no hints left for this round",
		}
	}
	if e.optimalPath == nil || len(e.currentPath) >= len(e.optimalPath) {
		return HintResult{
			Action:         ActionNoHintAvailable,
			Message:        "no hint available for your current route",
			HintsRemaining: e.maxHints - e.hintsUsed,
		}
	}

	e.hintsUsed++
	remaining := e.maxHints - e.hintsUsed

	divergence := DivergenceIndex(e.currentPath, e.optimalPath)
	if divergence == len(e.currentPath) {
		next := e.optimalPath[divergence]
		return HintResult{
			Action:         ActionHint,
			Country:        next,
			Message:        fmt.Sprintf("try %s next", next),
			HintsRemaining: remaining,
		}
	}

	offRoute := len(e.currentPath) - divergence
	return HintResult{
		Action:         ActionHint,
		Message:        fmt.Sprintf("you've drifted off the shortest route, undo %d step(s) to get back on track", offRoute),
		HintsRemaining: remaining,
	}
}

// GiveUp ends the round as a concession and reveals the optimal path. The
// result is idempotent: conceding an already-ended round returns the same
// terminal summary.
func (e *RouteEngine) GiveUp() TerminalResult {
	e.roundEnded = true
	return TerminalResult{
		Action:      ActionGaveUp,
		Route:       copyPath(e.currentPath),
		OptimalPath: copyPath(e.optimalPath),
		Par:         e.par,
		TimeSeconds: e.elapsedSeconds(),
		HintsUsed:   e.hintsUsed,
	}
}

// HandleTimeout ends the round when the host's countdown elapses. Timed-out
// play surfaces exactly like an explicit concession; the engine runs no
// timers of its own.
func (e *RouteEngine) HandleTimeout() TerminalResult {
	return e.GiveUp()
}

// RoundEnded reports whether the round has reached a terminal state.
func (e *RouteEngine) RoundEnded() bool {
	return e.roundEnded
}

// Progress returns the host-facing view of the round.
func (e *RouteEngine) Progress() Progress {
	return Progress{
		Route:          copyPath(e.currentPath),
		Steps:          e.intermediateSteps(),
		Par:            e.par,
		HintsUsed:      e.hintsUsed,
		HintsRemaining: e.maxHints - e.hintsUsed,
		RoundEnded:     e.roundEnded,
	}
}

// RenderPath returns the current route as renderer input: countries tagged
// with their color role. The destination is tagged even before it is reached
// so the renderer can mark the target.
func (e *RouteEngine) RenderPath() []TaggedCountry {
	tagged := make([]TaggedCountry, 0, len(e.currentPath)+1)
	for i, country := range e.currentPath {
		switch {
		case i == 0:
			tagged = append(tagged, TaggedCountry{Country: country, Tag: TagStart})
		case country == e.end:
			tagged = append(tagged, TaggedCountry{Country: country, Tag: TagEnd})
		default:
			tagged = append(tagged, TaggedCountry{Country: country, Tag: TagPath})
		}
	}
	if !e.roundEnded {
		tagged = append(tagged, TaggedCountry{Country: e.end, Tag: TagEnd})
	}
	return tagged
}

// State exports the round for persistence.
func (e *RouteEngine) State() *RoundState {
	return &RoundState{
		Start:        e.start,
		End:          e.end,
		OptimalPath:  copyPath(e.optimalPath),
		Par:          e.par,
		CurrentPath:  copyPath(e.currentPath),
		PathHistory:  append([]Snapshot(nil), e.pathHistory...),
		MaxHints:     e.maxHints,
		HintsUsed:    e.hintsUsed,
		WrongGuesses: e.wrongGuesses,
		RoundEnded:   e.roundEnded,
		StartedAt:    e.startedAt.UnixMilli(),
	}
}

// bordersDestination reports whether the given country's neighbor list
// contains the round's destination.
func (e *RouteEngine) bordersDestination(country string) bool {
	for _, neighbor := range e.borders[country] {
		if neighbor == e.end {
			return true
		}
	}
	return false
}

// intermediateSteps counts countries on the path excluding the start and,
// once reached, the destination.
func (e *RouteEngine) intermediateSteps() int {
	steps := len(e.currentPath) - 1
	if e.roundEnded && len(e.currentPath) > 1 && e.currentPath[len(e.currentPath)-1] == e.end {
		steps--
	}
	return steps
}

func (e *RouteEngine) elapsedSeconds() float64 {
	return e.now().Sub(e.startedAt).Seconds()
}

func copyPath(path []string) []string {
	if path == nil {
		return nil
	}
	out := make([]string, len(path))
	copy(out, path)
	return out
}
