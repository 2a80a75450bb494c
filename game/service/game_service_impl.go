package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/config"
	"github.com/worldwalk/georoutes/game/engine"
)

// ErrNoPlayableRoute is returned when no route satisfying the pack's
// constraints can be found: every candidate came back with the unreachable
// par sentinel or fell outside the par bounds.
var ErrNoPlayableRoute = errors.New("no playable route found for pack")

// maxRouteAttempts bounds random route generation per round.
const maxRouteAttempts = 100

// routeServiceImpl implements the RouteService interface.
type routeServiceImpl struct {
	sessions SessionManager
	packs    PackManager
	world    *atlas.Atlas
	rng      *rand.Rand
	mu       sync.RWMutex
}

// NewRouteService creates a new game service instance.
func NewRouteService(sessions SessionManager, packs PackManager, world *atlas.Atlas) RouteService {
	return &routeServiceImpl{
		sessions: sessions,
		packs:    packs,
		world:    world,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateSession creates a new session playing the named pack (or the default
// pack when packID is empty) and starts its first round.
func (s *routeServiceImpl) CreateSession(ctx context.Context, packID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pack, resolvedID, err := s.resolvePack(packID)
	if err != nil {
		return nil, err
	}

	eng, err := s.pickRoute(pack)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:             s.sessions.GenerateID(),
		Engine:         eng,
		Pack:           pack,
		PackID:         resolvedID,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information.
func (s *routeServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions.
func (s *routeServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session.
func (s *routeServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Guess submits a candidate country for the session's round.
//
// The service screens guesses the engine deliberately leaves to its host:
// unknown names, countries already on the route, and typing the destination
// directly. Screened-out guesses and engine-rejected guesses both count as
// wrong guesses, which the engine folds into its undo snapshots.
func (s *routeServiceImpl) Guess(ctx context.Context, sessionID, country string) (*GuessOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	eng := sess.Engine
	if eng.RoundEnded() {
		return &GuessOutcome{
			GuessResult:  engine.GuessResult{Action: engine.ActionIgnore},
			WrongGuesses: eng.WrongGuesses(),
		}, nil
	}

	if msg := s.screenGuess(eng, country); msg != "" {
		eng.RecordWrongGuess()
		s.autoSave(sessionID)
		return &GuessOutcome{
			GuessResult: engine.GuessResult{
				Action:  engine.ActionInvalid,
				Country: country,
				Message: msg,
			},
			WrongGuesses: eng.WrongGuesses(),
		}, nil
	}

	wrongBefore := eng.WrongGuesses()
	res := eng.AddCountry(country)

	outcome := &GuessOutcome{GuessResult: res}
	switch res.Action {
	case engine.ActionInvalid:
		eng.RecordWrongGuess()
	case engine.ActionComplete:
		outcome.FirstTry = wrongBefore == 0
		outcome.Score = engine.StandaloneScore(engine.Outcome{
			Correct:      true,
			ParDiff:      res.ParDiff,
			WrongGuesses: wrongBefore,
			HintsUsed:    res.HintsUsed,
			TimeSeconds:  res.TimeSeconds,
		})
		sess.RoundsPlayed++
		sess.TotalScore += outcome.Score

		log.Info().
			Str("session", sessionID).
			Int("steps", res.Steps).
			Int("par", res.Par).
			Int("score", outcome.Score).
			Msg("route completed")
	}
	outcome.WrongGuesses = eng.WrongGuesses()
	outcome.RenderPath = eng.RenderPath()

	s.autoSave(sessionID)
	return outcome, nil
}

// Undo reverts the most recent append for the session's round.
func (s *routeServiceImpl) Undo(ctx context.Context, sessionID string) (*UndoOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	res := sess.Engine.Undo()
	if res.Action == engine.ActionUndone {
		s.autoSave(sessionID)
	}

	return &UndoOutcome{
		UndoResult: res,
		RenderPath: sess.Engine.RenderPath(),
	}, nil
}

// Hint requests a hint for the session's round.
func (s *routeServiceImpl) Hint(ctx context.Context, sessionID string) (*HintOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	res := sess.Engine.Hint()
	if res.Action == engine.ActionHint {
		s.autoSave(sessionID)
	}
	return &HintOutcome{HintResult: res}, nil
}

// GiveUp concedes the session's round.
func (s *routeServiceImpl) GiveUp(ctx context.Context, sessionID string) (*TerminalOutcome, error) {
	return s.concede(sessionID, false)
}

// Timeout ends the session's round after the host's countdown elapsed. The
// engine treats it exactly like a concession.
func (s *routeServiceImpl) Timeout(ctx context.Context, sessionID string) (*TerminalOutcome, error) {
	return s.concede(sessionID, true)
}

func (s *routeServiceImpl) concede(sessionID string, timedOut bool) (*TerminalOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	alreadyEnded := sess.Engine.RoundEnded()

	var res engine.TerminalResult
	if timedOut {
		res = sess.Engine.HandleTimeout()
	} else {
		res = sess.Engine.GiveUp()
	}

	if !alreadyEnded {
		sess.RoundsPlayed++
		log.Info().
			Str("session", sessionID).
			Bool("timed_out", timedOut).
			Int("par", res.Par).
			Msg("round conceded")
	}

	s.autoSave(sessionID)
	return &TerminalOutcome{TerminalResult: res}, nil
}

// NewRound starts a fresh round in an existing session. Cumulative totals
// carry over; an unfinished current round is abandoned without scoring.
func (s *routeServiceImpl) NewRound(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	eng, err := s.pickRoute(sess.Pack)
	if err != nil {
		return nil, err
	}
	sess.Engine = eng

	s.autoSave(sessionID)
	return s.sessionInfo(sess), nil
}

// Progress returns the renderer-ready view of the session's round.
func (s *routeServiceImpl) Progress(ctx context.Context, sessionID string) (*ProgressOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return &ProgressOutcome{
		Progress:   sess.Engine.Progress(),
		Route:      sess.Engine.Route(),
		RenderPath: sess.Engine.RenderPath(),
	}, nil
}

// ListPacks returns available route packs.
func (s *routeServiceImpl) ListPacks(ctx context.Context) ([]*config.PackInfo, error) {
	return s.packs.ListPacks()
}

// LoadPack loads a specific route pack.
func (s *routeServiceImpl) LoadPack(ctx context.Context, name string) (*config.RoutePack, error) {
	return s.packs.LoadPack(name)
}

// SavePack saves a route pack to disk.
func (s *routeServiceImpl) SavePack(ctx context.Context, name string, pack *config.RoutePack) error {
	return s.packs.SavePack(name, pack)
}

// Countries returns the master country list for host-side autocomplete.
func (s *routeServiceImpl) Countries(ctx context.Context) []string {
	return s.world.Countries()
}

// resolvePack loads the named pack, falling back to the default for an
// empty name and listing valid IDs when the name is unknown.
func (s *routeServiceImpl) resolvePack(packID string) (*config.RoutePack, string, error) {
	if packID == "" {
		return s.packs.GetDefault(), "default", nil
	}

	pack, err := s.packs.LoadPack(packID)
	if err != nil {
		if errors.Is(err, config.ErrPackNotFound) {
			if infos, listErr := s.packs.ListPacks(); listErr == nil && len(infos) > 0 {
				ids := make([]string, 0, len(infos))
				for _, info := range infos {
					ids = append(ids, info.PackID)
				}
				return nil, "", fmt.Errorf("pack '%s' not found. Available packs: %v", packID, ids)
			}
			return nil, "", fmt.Errorf("pack '%s' not found. Use /api/packs to list available packs", packID)
		}
		return nil, "", fmt.Errorf("failed to load pack %s: %w", packID, err)
	}
	return pack, packID, nil
}

// pickRoute builds an engine for a playable route from the pack. Fixed
// routes are tried in random order; otherwise random country pairs are drawn
// until one lands inside the pack's par bounds. Routes whose par is the
// unreachable sentinel are never handed to a player.
func (s *routeServiceImpl) pickRoute(pack *config.RoutePack) (*engine.RouteEngine, error) {
	borders := s.world.Borders()

	if len(pack.Routes) > 0 {
		for _, i := range s.rng.Perm(len(pack.Routes)) {
			route := pack.Routes[i]
			if !s.world.Has(route.Start) || !s.world.Has(route.End) {
				log.Warn().
					Str("start", route.Start).
					Str("end", route.End).
					Msg("pack route references unknown country")
				continue
			}
			eng := engine.NewRouteEngine(borders, route.Start, route.End)
			if eng.Route().Par == engine.UnreachablePar {
				log.Warn().
					Str("start", route.Start).
					Str("end", route.End).
					Msg("pack route is unreachable")
				continue
			}
			eng.SetMaxHints(pack.MaxHints)
			return eng, nil
		}
		return nil, ErrNoPlayableRoute
	}

	countries := s.world.Countries()
	if len(countries) < 2 {
		return nil, ErrNoPlayableRoute
	}

	for attempt := 0; attempt < maxRouteAttempts; attempt++ {
		start := countries[s.rng.Intn(len(countries))]
		end := countries[s.rng.Intn(len(countries))]
		if start == end {
			continue
		}

		eng := engine.NewRouteEngine(borders, start, end)
		par := eng.Route().Par
		if par == engine.UnreachablePar || par < pack.MinPar || par > pack.MaxPar {
			continue
		}
		eng.SetMaxHints(pack.MaxHints)
		return eng, nil
	}

	return nil, ErrNoPlayableRoute
}

// screenGuess applies the host-side rejections the engine does not own.
// An empty return means the guess may go to the engine.
func (s *routeServiceImpl) screenGuess(eng *engine.RouteEngine, country string) string {
	if !s.world.Has(country) {
		return fmt.Sprintf("%s is not a country in this atlas", country)
	}
	if country == eng.Route().End {
		return "you can't name the destination directly; reach a country that borders it"
	}
	for _, placed := range eng.Progress().Route {
		if placed == country {
			return fmt.Sprintf("%s is already on your route", country)
		}
	}
	return ""
}

func (s *routeServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:               sess.ID,
		PackID:           sess.PackID,
		CreatedAt:        sess.CreatedAt,
		LastAccessedAt:   sess.LastAccessedAt,
		Route:            sess.Engine.Route(),
		Progress:         sess.Engine.Progress(),
		RoundsPlayed:     sess.RoundsPlayed,
		TotalScore:       sess.TotalScore,
		TimeLimitSeconds: sess.Pack.TimeLimitSeconds,
	}
}

// autoSave persists the session after a mutation; failures are logged, not
// returned, so play continues on a broken disk.
func (s *routeServiceImpl) autoSave(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to persist session")
	}
}
