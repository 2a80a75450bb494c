package engine

// Action identifies the outcome of an engine operation. Every public method
// reports its result through one of these discriminants instead of an error,
// so callers branch on outcome without exception-style handling.
type Action string

const (
	ActionInvalid         Action = "invalid"
	ActionAdded           Action = "added"
	ActionComplete        Action = "complete"
	ActionIgnore          Action = "ignore"
	ActionCannotUndo      Action = "cannot_undo"
	ActionUndone          Action = "undone"
	ActionHint            Action = "hint"
	ActionNoHintsLeft     Action = "no_hints_left"
	ActionNoHintAvailable Action = "no_hint_available"
	ActionGaveUp          Action = "gave_up"
)

const (
	// MaxHints is the per-round hint budget.
	MaxHints = 3

	// UnreachablePar marks a round whose destination cannot be reached from
	// the start. Callers must treat such rounds as unplayable.
	UnreachablePar = 999
)

// Borders maps a country name to the ordered list of countries it shares a
// land border with. Stored as directed edges; datasets are expected to be
// symmetric but the engine only ever follows outgoing edges, so an asymmetric
// dataset degrades the experience without breaking it.
type Borders map[string][]string

// ColorTag labels a country for the renderer. The renderer draws whatever
// tagged list it is handed and knows nothing else about the round.
type ColorTag string

const (
	TagStart   ColorTag = "start"
	TagEnd     ColorTag = "end"
	TagPath    ColorTag = "path"
	TagHint    ColorTag = "hint"
	TagOptimal ColorTag = "optimal"
)

// TaggedCountry pairs a country with its render role.
type TaggedCountry struct {
	Country string   `json:"country"`
	Tag     ColorTag `json:"tag"`
}

// RouteInfo describes a freshly created round.
type RouteInfo struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Par         int      `json:"par"`
	OptimalPath []string `json:"optimal_path"`
}

// GuessResult is returned by AddCountry. Action is one of invalid, added,
// complete, or ignore. The completion metrics are populated only when the
// round auto-completes.
type GuessResult struct {
	Action  Action `json:"action"`
	Country string `json:"country,omitempty"`
	Message string `json:"message,omitempty"`

	Route []string `json:"route,omitempty"`

	Steps       int     `json:"steps,omitempty"`
	Par         int     `json:"par,omitempty"`
	ParDiff     int     `json:"par_diff,omitempty"`
	TimeSeconds float64 `json:"time_seconds,omitempty"`
	HintsUsed   int     `json:"hints_used,omitempty"`
}

// UndoResult is returned by Undo.
type UndoResult struct {
	Action  Action   `json:"action"`
	Removed string   `json:"removed,omitempty"`
	Route   []string `json:"route,omitempty"`
}

// HintResult is returned by Hint. Country is set only when the player is
// still on the optimal path; a diverged player is advised to undo instead.
type HintResult struct {
	Action         Action `json:"action"`
	Country        string `json:"country,omitempty"`
	Message        string `json:"message"`
	HintsRemaining int    `json:"hints_remaining"`
}

// TerminalResult is returned by GiveUp and HandleTimeout.
type TerminalResult struct {
	Action      Action   `json:"action"`
	Route       []string `json:"route"`
	OptimalPath []string `json:"optimal_path"`
	Par         int      `json:"par"`
	TimeSeconds float64  `json:"time_seconds"`
	HintsUsed   int      `json:"hints_used"`
}

// Progress is a read-only snapshot for hosts and renderers.
type Progress struct {
	Route          []string `json:"route"`
	Steps          int      `json:"steps"`
	Par            int      `json:"par"`
	HintsUsed      int      `json:"hints_used"`
	HintsRemaining int      `json:"hints_remaining"`
	RoundEnded     bool     `json:"round_ended"`
}

// Snapshot captures the state restored by a single undo. One snapshot is
// pushed immediately before every successful append.
type Snapshot struct {
	Path         []string `json:"path"`
	WrongGuesses int      `json:"wrong_guesses"`
}

// RoundState is the complete JSON-serializable state of a round, used by the
// session layer to persist and restore engines across restarts.
type RoundState struct {
	Start        string     `json:"start"`
	End          string     `json:"end"`
	OptimalPath  []string   `json:"optimal_path"`
	Par          int        `json:"par"`
	CurrentPath  []string   `json:"current_path"`
	PathHistory  []Snapshot `json:"path_history"`
	MaxHints     int        `json:"max_hints"`
	HintsUsed    int        `json:"hints_used"`
	WrongGuesses int        `json:"wrong_guesses"`
	RoundEnded   bool       `json:"round_ended"`
	StartedAt    int64      `json:"started_at"` // unix milliseconds
}
