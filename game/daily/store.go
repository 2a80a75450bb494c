package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrAlreadyPlayed is returned when a player submits a second result for
// the same date.
var ErrAlreadyPlayed = errors.New("daily: already played")

const schema = `
CREATE TABLE IF NOT EXISTS daily_results (
	id         TEXT PRIMARY KEY,
	player_id  TEXT NOT NULL,
	date       TEXT NOT NULL,
	par_diff   INTEGER NOT NULL,
	stars      INTEGER NOT NULL,
	hints_used INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	gave_up    INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(player_id, date)
);
CREATE INDEX IF NOT EXISTS idx_daily_results_date ON daily_results(date);
CREATE INDEX IF NOT EXISTS idx_daily_results_player ON daily_results(player_id, date);
`

// Result is one player's finished (or abandoned) daily round.
type Result struct {
	ID        string `json:"id"`
	PlayerID  string `json:"player_id"`
	Date      string `json:"date"`
	ParDiff   int    `json:"par_diff"`
	Stars     int    `json:"stars"`
	HintsUsed int    `json:"hints_used"`
	ElapsedMs int    `json:"elapsed_ms"`
	GaveUp    bool   `json:"gave_up"`
}

// LeaderboardRow is one line of a date's standings.
type LeaderboardRow struct {
	PlayerID  string `json:"player_id"`
	Stars     int    `json:"stars"`
	ParDiff   int    `json:"par_diff"`
	HintsUsed int    `json:"hints_used"`
	ElapsedMs int    `json:"elapsed_ms"`
}

// Store persists daily results in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the results database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AlreadyPlayed reports whether the player has a result for the date.
func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE player_id = ? AND date = ?`,
		playerID, date).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query played: %w", err)
	}
	return n > 0, nil
}

// InsertResult records a result. A missing ID gets a fresh UUID. Submitting
// twice for the same (player, date) returns ErrAlreadyPlayed.
func (s *Store) InsertResult(ctx context.Context, r Result) (Result, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	gaveUp := 0
	if r.GaveUp {
		gaveUp = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_results (id, player_id, date, par_diff, stars, hints_used, elapsed_ms, gave_up)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.PlayerID, r.Date, r.ParDiff, r.Stars, r.HintsUsed, r.ElapsedMs, gaveUp)
	if err != nil {
		played, perr := s.AlreadyPlayed(ctx, r.PlayerID, r.Date)
		if perr == nil && played {
			return Result{}, ErrAlreadyPlayed
		}
		return Result{}, fmt.Errorf("insert result: %w", err)
	}
	return r, nil
}

// Leaderboard returns the date's standings, best first: most stars, then
// closest to par, then fewest hints, then fastest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, stars, par_diff, hints_used, elapsed_ms
		 FROM daily_results
		 WHERE date = ?
		 ORDER BY stars DESC, par_diff ASC, hints_used ASC, elapsed_ms ASC
		 LIMIT ?`,
		date, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var board []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.PlayerID, &row.Stars, &row.ParDiff, &row.HintsUsed, &row.ElapsedMs); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		board = append(board, row)
	}
	return board, rows.Err()
}

// Streak counts consecutive played days ending at date. If the player has
// not played the date itself yet, the run ending the day before still
// counts, so an unbroken streak survives until that day's challenge lapses.
func (s *Store) Streak(ctx context.Context, playerID, date string) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT date FROM daily_results WHERE player_id = ? ORDER BY date DESC`,
		playerID)
	if err != nil {
		return 0, fmt.Errorf("query streak: %w", err)
	}
	defer rows.Close()

	played := make(map[string]bool)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("scan streak row: %w", err)
		}
		played[d] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", date, err)
	}
	if !played[DateKey(day)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for played[DateKey(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}
