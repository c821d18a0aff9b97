package store

import "fmt"

// Schema statements are idempotent; migrate runs them all on every open.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS indexing_requests (
		id            TEXT PRIMARY KEY,
		player        TEXT NOT NULL,
		platform      TEXT NOT NULL,
		start_month   TEXT NOT NULL,
		end_month     TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'PENDING',
		created_at    TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at    TIMESTAMP NOT NULL DEFAULT current_timestamp,
		error_message TEXT,
		games_indexed INTEGER DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS game_features (
		id             TEXT PRIMARY KEY,
		request_id     TEXT NOT NULL REFERENCES indexing_requests(id),
		game_url       TEXT NOT NULL UNIQUE,
		platform       TEXT NOT NULL,
		white_username TEXT,
		black_username TEXT,
		white_elo      INTEGER,
		black_elo      INTEGER,
		time_class     TEXT,
		eco            TEXT,
		result         TEXT,
		played_at      TIMESTAMP,
		num_moves      INTEGER,
		has_pin        BOOLEAN DEFAULT FALSE,
		has_cross_pin  BOOLEAN DEFAULT FALSE,
		has_fork       BOOLEAN DEFAULT FALSE,
		has_skewer     BOOLEAN DEFAULT FALSE,
		has_discovered_attack BOOLEAN DEFAULT FALSE,
		has_discovered_mate   BOOLEAN DEFAULT FALSE,
		has_discovered_check  BOOLEAN DEFAULT FALSE,
		has_check      BOOLEAN DEFAULT FALSE,
		has_checkmate  BOOLEAN DEFAULT FALSE,
		has_promotion  BOOLEAN DEFAULT FALSE,
		has_promotion_with_check     BOOLEAN DEFAULT FALSE,
		has_promotion_with_checkmate BOOLEAN DEFAULT FALSE,
		has_back_rank_mate  BOOLEAN DEFAULT FALSE,
		has_smothered_mate  BOOLEAN DEFAULT FALSE,
		has_sacrifice       BOOLEAN DEFAULT FALSE,
		has_zugzwang        BOOLEAN DEFAULT FALSE,
		has_double_check    BOOLEAN DEFAULT FALSE,
		has_interference    BOOLEAN DEFAULT FALSE,
		has_overloaded_piece BOOLEAN DEFAULT FALSE,
		indexed_at     TIMESTAMP NOT NULL DEFAULT current_timestamp,
		pgn            TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS indexed_periods (
		id          TEXT PRIMARY KEY,
		player      TEXT NOT NULL,
		platform    TEXT NOT NULL,
		year_month  TEXT NOT NULL,
		fetched_at  TIMESTAMP NOT NULL,
		is_complete BOOLEAN NOT NULL,
		games_count INTEGER NOT NULL,
		UNIQUE (player, platform, year_month)
	)`,

	// One row per motif firing per game.
	`CREATE TABLE IF NOT EXISTS motif_occurrences (
		id            TEXT NOT NULL PRIMARY KEY,
		game_url      TEXT NOT NULL REFERENCES game_features(game_url) ON DELETE CASCADE,
		motif         TEXT NOT NULL,
		ply           INTEGER NOT NULL,
		side          TEXT NOT NULL,
		move_number   INTEGER NOT NULL,
		description   TEXT,
		moved_piece   TEXT,
		attacker      TEXT,
		target        TEXT,
		is_discovered BOOLEAN DEFAULT FALSE,
		is_mate       BOOLEAN DEFAULT FALSE,
		pin_type      TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_motif_occ_game_url ON motif_occurrences(game_url)`,
	`CREATE INDEX IF NOT EXISTS idx_motif_occ_motif ON motif_occurrences(motif)`,
	`CREATE INDEX IF NOT EXISTS idx_motif_occ_ply ON motif_occurrences(game_url, ply)`,
	`CREATE INDEX IF NOT EXISTS idx_game_features_indexed_at ON game_features(indexed_at)`,
}

func (s *Store) migrate() error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	s.log.Debug().Msg("migrations applied")
	return nil
}
