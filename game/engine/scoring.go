package engine

// Outcome is the scoring input shared by both policies. Hosts fill it from a
// complete or gave_up result; the engine does not care which policy is
// applied to it.
type Outcome struct {
	Correct      bool    `json:"correct"`
	ParDiff      int     `json:"par_diff"`
	WrongGuesses int     `json:"wrong_guesses"`
	HintsUsed    int     `json:"hints_used"`
	TimeSeconds  float64 `json:"time_seconds"`
}

// FastFinishSeconds is the standalone-policy threshold for the speed bonus.
const FastFinishSeconds = 30

// StandaloneScore implements the standalone game's point policy: an optimal
// route earns 5 base points plus a bonus for no wrong guesses and a bonus
// for finishing under 30 seconds; a longer route earns max(1, 5-parDiff).
// Each hint used costs a point, floored at zero. A concession earns nothing.
func StandaloneScore(o Outcome) int {
	if !o.Correct {
		return 0
	}

	var points int
	if o.ParDiff == 0 {
		points = 5
		if o.WrongGuesses == 0 {
			points++
		}
		if o.TimeSeconds < FastFinishSeconds {
			points++
		}
	} else {
		points = 5 - o.ParDiff
		if points < 1 {
			points = 1
		}
	}

	points -= o.HintsUsed
	if points < 0 {
		points = 0
	}
	return points
}

// DailyStars implements the Daily Challenge star policy, mapping parDiff to
// a 1..5 star count. Anything other than a correct finish, including the
// UnreachablePar sentinel used to record concessions, earns zero stars.
func DailyStars(correct bool, parDiff int) int {
	if !correct || parDiff >= UnreachablePar {
		return 0
	}
	switch {
	case parDiff <= 0:
		return 5
	case parDiff == 1:
		return 4
	case parDiff == 2:
		return 3
	case parDiff == 3:
		return 2
	default:
		return 1
	}
}
