// Package daily runs the shared route-of-the-day challenge: a
// deterministically derived route everyone plays once per UTC date, with
// star ratings, a per-date leaderboard, and streak tracking backed by
// SQLite.
package daily
