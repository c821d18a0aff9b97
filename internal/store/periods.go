package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IndexedPeriod records one (player, platform, month) fetch from the chess
// provider. Complete periods never need re-fetching.
type IndexedPeriod struct {
	Player     string
	Platform   string
	YearMonth  string
	FetchedAt  time.Time
	IsComplete bool
	GamesCount int
}

// FindCompletePeriod returns the cached period if it was fetched as complete;
// ErrNotFound otherwise.
func (s *Store) FindCompletePeriod(player, platform, month string) (IndexedPeriod, error) {
	var p IndexedPeriod
	err := s.db.QueryRow(
		`SELECT player, platform, year_month, fetched_at, is_complete, games_count
		FROM indexed_periods
		WHERE player = ? AND platform = ? AND year_month = ? AND is_complete = TRUE`,
		player, platform, month).
		Scan(&p.Player, &p.Platform, &p.YearMonth, &p.FetchedAt, &p.IsComplete, &p.GamesCount)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("find complete period: %w", err)
	}
	return p, nil
}

// UpsertPeriod records a fetch of one month of a player's games.
func (s *Store) UpsertPeriod(p IndexedPeriod) error {
	_, err := s.db.Exec(
		`INSERT INTO indexed_periods (id, player, platform, year_month, fetched_at, is_complete, games_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player, platform, year_month)
		DO UPDATE SET fetched_at = excluded.fetched_at, is_complete = excluded.is_complete,
			games_count = excluded.games_count`,
		uuid.NewString(), p.Player, p.Platform, p.YearMonth, p.FetchedAt.UTC(), p.IsComplete, p.GamesCount)
	if err != nil {
		return fmt.Errorf("upsert indexed period %s/%s/%s: %w", p.Player, p.Platform, p.YearMonth, err)
	}
	return nil
}

// DeletePeriodsOlderThan removes period rows fetched before the threshold.
func (s *Store) DeletePeriodsOlderThan(threshold time.Time) (int, error) {
	res, err := s.db.Exec("DELETE FROM indexed_periods WHERE fetched_at < ?", threshold.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old periods: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
