package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/chessindex/internal/chessql"
	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/motifs"
)

// GameFeature is one game_features row.
type GameFeature struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"requestId"`
	GameURL       string    `json:"gameUrl"`
	Platform      string    `json:"platform"`
	WhiteUsername string    `json:"whiteUsername"`
	BlackUsername string    `json:"blackUsername"`
	WhiteElo      int       `json:"whiteElo"`
	BlackElo      int       `json:"blackElo"`
	TimeClass     string    `json:"timeClass"`
	ECO           string    `json:"eco"`
	Result        string    `json:"result"`
	PlayedAt      time.Time `json:"playedAt"`
	NumMoves      int       `json:"numMoves"`

	HasPin                    bool `json:"hasPin"`
	HasCrossPin               bool `json:"hasCrossPin"`
	HasFork                   bool `json:"hasFork"`
	HasSkewer                 bool `json:"hasSkewer"`
	HasDiscoveredAttack       bool `json:"hasDiscoveredAttack"`
	HasDiscoveredMate         bool `json:"hasDiscoveredMate"`
	HasDiscoveredCheck        bool `json:"hasDiscoveredCheck"`
	HasCheck                  bool `json:"hasCheck"`
	HasCheckmate              bool `json:"hasCheckmate"`
	HasPromotion              bool `json:"hasPromotion"`
	HasPromotionWithCheck     bool `json:"hasPromotionWithCheck"`
	HasPromotionWithCheckmate bool `json:"hasPromotionWithCheckmate"`
	HasBackRankMate           bool `json:"hasBackRankMate"`
	HasSmotheredMate          bool `json:"hasSmotheredMate"`
	HasSacrifice              bool `json:"hasSacrifice"`
	HasZugzwang               bool `json:"hasZugzwang"`
	HasDoubleCheck            bool `json:"hasDoubleCheck"`
	HasInterference           bool `json:"hasInterference"`
	HasOverloadedPiece        bool `json:"hasOverloadedPiece"`

	IndexedAt time.Time `json:"indexedAt"`
	PGN       string    `json:"-"`
}

// OccurrenceRow is one stored motif occurrence, keyed back to its game. The
// motif name is lowercase to match query-language naming.
type OccurrenceRow struct {
	GameURL      string `json:"gameUrl"`
	Motif        string `json:"motif"`
	MoveNumber   int    `json:"moveNumber"`
	Side         string `json:"side"`
	Description  string `json:"description"`
	MovedPiece   string `json:"movedPiece,omitempty"`
	Attacker     string `json:"attacker,omitempty"`
	Target       string `json:"target,omitempty"`
	IsDiscovered bool   `json:"isDiscovered"`
	IsMate       bool   `json:"isMate"`
	PinType      string `json:"pinType,omitempty"`
}

// GameForReanalysis is the minimal slice of a stored game the reanalysis
// pass needs.
type GameForReanalysis struct {
	RequestID string
	GameURL   string
	PGN       string
}

const insertFeature = `INSERT INTO game_features (
	id, request_id, game_url, platform, white_username, black_username,
	white_elo, black_elo, time_class, eco, result, played_at, num_moves,
	has_pin, has_cross_pin, has_fork, has_skewer,
	has_discovered_attack, has_discovered_mate, has_discovered_check,
	has_check, has_checkmate, has_promotion, has_promotion_with_check, has_promotion_with_checkmate,
	has_back_rank_mate, has_smothered_mate, has_sacrifice, has_zugzwang,
	has_double_check, has_interference, has_overloaded_piece,
	indexed_at, pgn
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_url) DO UPDATE SET
	indexed_at = excluded.indexed_at,
	request_id = excluded.request_id`

// InsertFeature upserts a game row. Re-indexing the same game_url only
// refreshes indexed_at and request_id.
func (s *Store) InsertFeature(row GameFeature) error {
	id := row.ID
	if id == "" {
		id = uuid.NewString()
	}
	var playedAt any
	if !row.PlayedAt.IsZero() {
		playedAt = row.PlayedAt.UTC()
	}
	_, err := s.db.Exec(insertFeature,
		id, row.RequestID, row.GameURL, row.Platform, row.WhiteUsername, row.BlackUsername,
		row.WhiteElo, row.BlackElo, row.TimeClass, row.ECO, row.Result, playedAt, row.NumMoves,
		row.HasPin, row.HasCrossPin, row.HasFork, row.HasSkewer,
		row.HasDiscoveredAttack, row.HasDiscoveredMate, row.HasDiscoveredCheck,
		row.HasCheck, row.HasCheckmate, row.HasPromotion, row.HasPromotionWithCheck, row.HasPromotionWithCheckmate,
		row.HasBackRankMate, row.HasSmotheredMate, row.HasSacrifice, row.HasZugzwang,
		row.HasDoubleCheck, row.HasInterference, row.HasOverloadedPiece,
		time.Now().UTC(), row.PGN,
	)
	if err != nil {
		return fmt.Errorf("insert game feature %s: %w", row.GameURL, err)
	}
	return nil
}

const updateMotifsSQL = `UPDATE game_features SET
	has_pin = ?, has_cross_pin = ?, has_fork = ?, has_skewer = ?,
	has_discovered_attack = ?, has_discovered_mate = ?, has_discovered_check = ?,
	has_check = ?, has_checkmate = ?, has_promotion = ?,
	has_promotion_with_check = ?, has_promotion_with_checkmate = ?,
	has_back_rank_mate = ?, has_smothered_mate = ?, has_sacrifice = ?, has_zugzwang = ?,
	has_double_check = ?, has_interference = ?, has_overloaded_piece = ?,
	indexed_at = ?
WHERE game_url = ?`

// UpdateMotifs rewrites the boolean motif columns from a fresh extraction.
// The discovered-attack, discovered-mate and checkmate flags come from the
// ATTACK stream rather than their dedicated detectors.
func (s *Store) UpdateMotifs(gameURL string, f *extract.GameFeatures) error {
	return updateMotifsExec(s.db, gameURL, f)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func updateMotifsExec(db execer, gameURL string, f *extract.GameFeatures) error {
	hasDiscoveredAttack, hasDiscoveredMate, hasCheckmate := f.AttackDerived()

	_, err := db.Exec(updateMotifsSQL,
		f.Has(motifs.Pin), f.Has(motifs.CrossPin), f.Has(motifs.Fork), f.Has(motifs.Skewer),
		hasDiscoveredAttack, hasDiscoveredMate, f.Has(motifs.DiscoveredCheck),
		f.Has(motifs.Check), hasCheckmate, f.Has(motifs.Promotion),
		f.Has(motifs.PromotionWithCheck), f.Has(motifs.PromotionWithCheckmate),
		f.Has(motifs.BackRankMate), f.Has(motifs.SmotheredMate), f.Has(motifs.Sacrifice), f.Has(motifs.Zugzwang),
		f.Has(motifs.DoubleCheck), f.Has(motifs.Interference), f.Has(motifs.OverloadedPiece),
		time.Now().UTC(), gameURL,
	)
	if err != nil {
		return fmt.Errorf("update motifs %s: %w", gameURL, err)
	}
	return nil
}

const insertOccurrence = `INSERT INTO motif_occurrences
	(id, game_url, motif, ply, side, move_number, description,
	moved_piece, attacker, target, is_discovered, is_mate, pin_type)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertOccurrences stores detail rows for every detected occurrence.
// Occurrences at ply <= 0 (pre-game positions) are skipped.
func (s *Store) InsertOccurrences(gameURL string, occurrences map[motifs.Motif][]motifs.Occurrence) error {
	return insertOccurrencesExec(s.db, gameURL, occurrences)
}

func insertOccurrencesExec(db execer, gameURL string, occurrences map[motifs.Motif][]motifs.Occurrence) error {
	for motif, occs := range occurrences {
		for _, occ := range occs {
			if occ.Ply <= 0 {
				continue
			}
			_, err := db.Exec(insertOccurrence,
				uuid.NewString(), gameURL, string(motif), occ.Ply, occ.Side, occ.MoveNumber,
				occ.Description, nullable(occ.MovedPiece), nullable(occ.Attacker), nullable(occ.Target),
				occ.Discovered, occ.Mate, nullable(occ.PinType),
			)
			if err != nil {
				return fmt.Errorf("insert occurrence %s/%s: %w", gameURL, motif, err)
			}
		}
	}
	return nil
}

// ReplaceAnalysis atomically rewrites everything derived from a game's PGN:
// the boolean columns and all occurrence rows.
func (s *Store) ReplaceAnalysis(gameURL string, f *extract.GameFeatures) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace analysis %s: %w", gameURL, err)
	}
	defer tx.Rollback()

	if err := updateMotifsExec(tx, gameURL, f); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM motif_occurrences WHERE game_url = ?", gameURL); err != nil {
		return fmt.Errorf("delete occurrences %s: %w", gameURL, err)
	}
	if err := insertOccurrencesExec(tx, gameURL, f.AllOccurrences()); err != nil {
		return err
	}
	return tx.Commit()
}

// StoreExtraction persists a fresh extraction for a game that already has a
// feature row: boolean columns plus all occurrence detail rows.
func (s *Store) StoreExtraction(gameURL string, f *extract.GameFeatures) error {
	if err := s.UpdateMotifs(gameURL, f); err != nil {
		return err
	}
	return s.InsertOccurrences(gameURL, f.AllOccurrences())
}

// Query runs a compiled query with pagination and returns the matching
// feature rows.
func (s *Store) Query(cq chessql.CompiledQuery, limit, offset int) ([]GameFeature, error) {
	sqlText := cq.SQL + " LIMIT ? OFFSET ?"
	args := append(append([]any{}, cq.Params...), limit, offset)
	rows, err := s.db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query game features: %w", err)
	}
	defer rows.Close()

	var results []GameFeature
	for rows.Next() {
		gf, err := scanGameFeature(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, gf)
	}
	return results, rows.Err()
}

func scanGameFeature(rows *sql.Rows) (GameFeature, error) {
	var gf GameFeature
	var whiteElo, blackElo, numMoves sql.NullInt64
	var whiteUser, blackUser, timeClass, eco, result, pgn sql.NullString
	var playedAt, indexedAt sql.NullTime
	err := rows.Scan(
		&gf.ID, &gf.RequestID, &gf.GameURL, &gf.Platform, &whiteUser, &blackUser,
		&whiteElo, &blackElo, &timeClass, &eco, &result, &playedAt, &numMoves,
		&gf.HasPin, &gf.HasCrossPin, &gf.HasFork, &gf.HasSkewer,
		&gf.HasDiscoveredAttack, &gf.HasDiscoveredMate, &gf.HasDiscoveredCheck,
		&gf.HasCheck, &gf.HasCheckmate, &gf.HasPromotion, &gf.HasPromotionWithCheck, &gf.HasPromotionWithCheckmate,
		&gf.HasBackRankMate, &gf.HasSmotheredMate, &gf.HasSacrifice, &gf.HasZugzwang,
		&gf.HasDoubleCheck, &gf.HasInterference, &gf.HasOverloadedPiece,
		&indexedAt, &pgn,
	)
	if err != nil {
		return gf, fmt.Errorf("scan game feature: %w", err)
	}
	gf.WhiteUsername = whiteUser.String
	gf.BlackUsername = blackUser.String
	gf.WhiteElo = int(whiteElo.Int64)
	gf.BlackElo = int(blackElo.Int64)
	gf.TimeClass = timeClass.String
	gf.ECO = eco.String
	gf.Result = result.String
	gf.PlayedAt = playedAt.Time
	gf.NumMoves = int(numMoves.Int64)
	gf.IndexedAt = indexedAt.Time
	gf.PGN = pgn.String
	return gf, nil
}

// QueryOccurrences loads all occurrence rows for the given games, grouped by
// game_url then lowercase motif name, ordered by ply. Games with no rows are
// absent from the result.
func (s *Store) QueryOccurrences(gameURLs []string) (map[string]map[string][]OccurrenceRow, error) {
	result := make(map[string]map[string][]OccurrenceRow)
	if len(gameURLs) == 0 {
		return result, nil
	}
	placeholders := strings.Repeat("?, ", len(gameURLs)-1) + "?"
	sqlText := `SELECT game_url, motif, move_number, side, description,
		moved_piece, attacker, target, is_discovered, is_mate, pin_type
		FROM motif_occurrences WHERE game_url IN (` + placeholders + `) ORDER BY ply ASC`
	args := make([]any, len(gameURLs))
	for i, u := range gameURLs {
		args[i] = u
	}
	rows, err := s.db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row OccurrenceRow
		var description, movedPiece, attacker, target, pinType sql.NullString
		if err := rows.Scan(&row.GameURL, &row.Motif, &row.MoveNumber, &row.Side, &description,
			&movedPiece, &attacker, &target, &row.IsDiscovered, &row.IsMate, &pinType); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		row.Motif = strings.ToLower(row.Motif)
		row.Description = description.String
		row.MovedPiece = movedPiece.String
		row.Attacker = attacker.String
		row.Target = target.String
		byMotif, ok := result[row.GameURL]
		if !ok {
			byMotif = make(map[string][]OccurrenceRow)
			result[row.GameURL] = byMotif
		}
		byMotif[row.Motif] = append(byMotif[row.Motif], row)
	}
	return result, rows.Err()
}

// DeleteOccurrencesByGameURL removes all occurrence rows for one game.
func (s *Store) DeleteOccurrencesByGameURL(gameURL string) error {
	if _, err := s.db.Exec("DELETE FROM motif_occurrences WHERE game_url = ?", gameURL); err != nil {
		return fmt.Errorf("delete occurrences %s: %w", gameURL, err)
	}
	return nil
}

// FetchForReanalysis returns the next page of stored games ordered by
// game_url, starting strictly after afterURL ("" starts from the beginning).
// Paging is keyed on game_url because ReplaceAnalysis bumps indexed_at
// mid-pass, which would shuffle an indexed_at/offset scan.
func (s *Store) FetchForReanalysis(limit int, afterURL string) ([]GameForReanalysis, error) {
	rows, err := s.db.Query(
		"SELECT request_id, game_url, pgn FROM game_features WHERE game_url > ? ORDER BY game_url LIMIT ?",
		afterURL, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch for reanalysis: %w", err)
	}
	defer rows.Close()

	var results []GameForReanalysis
	for rows.Next() {
		var g GameForReanalysis
		var pgn sql.NullString
		if err := rows.Scan(&g.RequestID, &g.GameURL, &pgn); err != nil {
			return nil, fmt.Errorf("scan reanalysis row: %w", err)
		}
		g.PGN = pgn.String
		results = append(results, g)
	}
	return results, rows.Err()
}

// DeleteGamesOlderThan removes feature rows last indexed before the
// threshold; occurrence rows cascade.
func (s *Store) DeleteGamesOlderThan(threshold time.Time) (int, error) {
	res, err := s.db.Exec("DELETE FROM game_features WHERE indexed_at < ?", threshold.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old games: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.log.Debug().Int64("deleted", n).Time("threshold", threshold).Msg("deleted old games")
	}
	return int(n), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
