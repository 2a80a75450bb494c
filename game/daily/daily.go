package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/engine"
)

// Par bounds for a daily route: short enough to finish on a phone, long
// enough to be worth a streak.
const (
	MinDailyPar = 2
	MaxDailyPar = 8

	// maxDerivations bounds how many candidate pairs are derived for one
	// date before giving up on the dataset.
	maxDerivations = 64
)

// ErrNoDailyRoute is returned when no derivation for the date lands inside
// the par bounds, a sign the dataset is too small or too fragmented.
var ErrNoDailyRoute = errors.New("no playable daily route for date")

// Route is the challenge everyone plays on a given date.
type Route struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Par   int    `json:"par"`
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// RouteOfDay deterministically derives the date's route from
// HMAC-SHA256(salt, date[:attempt]) over the sorted country list. The same
// date, salt, and dataset always produce the same route, so every player
// races the same par without the server storing a schedule. Derivations
// that are unreachable or outside the par bounds are skipped by bumping the
// attempt counter.
func RouteOfDay(date time.Time, salt string, world *atlas.Atlas) (Route, error) {
	countries := world.Countries()
	if len(countries) < 2 {
		return Route{}, ErrNoDailyRoute
	}

	dk := DateKey(date)
	for attempt := 0; attempt < maxDerivations; attempt++ {
		h := hmac.New(sha256.New, []byte(salt))
		fmt.Fprintf(h, "%s:%d", dk, attempt)
		sum := h.Sum(nil)

		start := countries[binary.BigEndian.Uint64(sum[:8])%uint64(len(countries))]
		end := countries[binary.BigEndian.Uint64(sum[8:16])%uint64(len(countries))]
		if start == end {
			continue
		}

		path := engine.FindShortestPath(world.Borders(), start, end)
		if path == nil {
			continue
		}
		par := len(path) - 2
		if par < MinDailyPar || par > MaxDailyPar {
			continue
		}

		return Route{Date: dk, Start: start, End: end, Par: par}, nil
	}

	return Route{}, fmt.Errorf("%w: %s", ErrNoDailyRoute, dk)
}
