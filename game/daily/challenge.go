package daily

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/engine"
)

// Submission is what a client reports after finishing (or conceding) the
// day's route. ParDiff is only meaningful when Completed is true.
type Submission struct {
	PlayerID  string `json:"player_id"`
	Completed bool   `json:"completed"`
	ParDiff   int    `json:"par_diff"`
	HintsUsed int    `json:"hints_used"`
	ElapsedMs int    `json:"elapsed_ms"`
}

// Challenge ties route derivation and the results store together.
type Challenge struct {
	store *Store
	world *atlas.Atlas
	salt  string
	now   func() time.Time
}

func NewChallenge(store *Store, world *atlas.Atlas, salt string) *Challenge {
	return &Challenge{store: store, world: world, salt: salt, now: time.Now}
}

// Today returns the current UTC date's route.
func (c *Challenge) Today() (Route, error) {
	return RouteOfDay(c.now(), c.salt, c.world)
}

// RouteFor returns the route for an arbitrary date.
func (c *Challenge) RouteFor(date time.Time) (Route, error) {
	return RouteOfDay(date, c.salt, c.world)
}

// Submit records a player's result for the date and returns the stored row
// with its star rating. One submission per player per date; repeats return
// ErrAlreadyPlayed.
func (c *Challenge) Submit(ctx context.Context, date time.Time, sub Submission) (Result, error) {
	dk := DateKey(date)

	parDiff := sub.ParDiff
	if !sub.Completed {
		parDiff = engine.UnreachablePar
	}

	r := Result{
		PlayerID:  sub.PlayerID,
		Date:      dk,
		ParDiff:   parDiff,
		Stars:     engine.DailyStars(sub.Completed, sub.ParDiff),
		HintsUsed: sub.HintsUsed,
		ElapsedMs: sub.ElapsedMs,
		GaveUp:    !sub.Completed,
	}

	stored, err := c.store.InsertResult(ctx, r)
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Str("player", stored.PlayerID).
		Str("date", stored.Date).
		Int("stars", stored.Stars).
		Bool("gave_up", stored.GaveUp).
		Msg("daily result recorded")

	return stored, nil
}

// Leaderboard returns the standings for the date.
func (c *Challenge) Leaderboard(ctx context.Context, date time.Time, limit int) ([]LeaderboardRow, error) {
	return c.store.Leaderboard(ctx, DateKey(date), limit)
}

// Streak returns the player's consecutive-day run as of today.
func (c *Challenge) Streak(ctx context.Context, playerID string) (int, error) {
	return c.store.Streak(ctx, playerID, DateKey(c.now()))
}
