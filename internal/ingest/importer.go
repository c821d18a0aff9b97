// Package ingest bulk-imports PGN archives into the feature store. Archives
// may be plain .pgn or zstd-compressed .pgn.zst files holding any number of
// games.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/freeeve/chessindex/internal/eco"
	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/motifs"
	"github.com/freeeve/chessindex/internal/pgn"
	"github.com/freeeve/chessindex/internal/store"
)

// Config configures the importer.
type Config struct {
	RatingMin int // games where either side is below this are skipped
	Platform  string
	Logger    zerolog.Logger
}

// Stats summarizes one archive import.
type Stats struct {
	Imported int
	Skipped  int
	Failed   int
}

// Importer streams games out of PGN archives, extracts features and
// persists them.
type Importer struct {
	cfg       Config
	store     *store.Store
	extractor *extract.Extractor
	ecoDB     *eco.Database
	log       zerolog.Logger
}

// NewImporter wires an importer. ecoDB is optional; when present it
// classifies games whose PGN carries no ECO tag.
func NewImporter(cfg Config, s *store.Store, extractor *extract.Extractor, ecoDB *eco.Database) *Importer {
	if cfg.Platform == "" {
		cfg.Platform = "IMPORT"
	}
	return &Importer{
		cfg:       cfg,
		store:     s,
		extractor: extractor,
		ecoDB:     ecoDB,
		log:       cfg.Logger.With().Str("component", "importer").Logger(),
	}
}

// ImportFile imports every game in one archive. Each archive gets its own
// indexing request row so imported games satisfy the same foreign key as
// fetched ones.
func (im *Importer) ImportFile(ctx context.Context, path string) (Stats, error) {
	var stats Stats

	f, err := os.Open(path)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return stats, fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer dec.Close()
		reader = dec
	}

	month := time.Now().UTC().Format("2006-01")
	requestID, err := im.store.CreateRequest("import:"+filepath.Base(path), im.cfg.Platform, month, month)
	if err != nil {
		return stats, err
	}
	if err := im.store.UpdateRequestStatus(requestID, store.StatusProcessing, "", 0); err != nil {
		return stats, err
	}

	start := time.Now()
	lastLog := start
	scanner := NewGameScanner(reader)
	gameIndex := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			_ = im.store.UpdateRequestStatus(requestID, store.StatusFailed, ctx.Err().Error(), stats.Imported)
			return stats, ctx.Err()
		default:
		}

		gameIndex++
		switch im.importGame(requestID, path, gameIndex, scanner.Game()) {
		case imported:
			stats.Imported++
		case skipped:
			stats.Skipped++
		case failed:
			stats.Failed++
		}

		if time.Since(lastLog) > 10*time.Second {
			im.log.Info().
				Str("file", filepath.Base(path)).
				Int("imported", stats.Imported).
				Int("skipped", stats.Skipped).
				Int("failed", stats.Failed).
				Msg("import progress")
			lastLog = time.Now()
		}
	}
	if err := scanner.Err(); err != nil {
		_ = im.store.UpdateRequestStatus(requestID, store.StatusFailed, err.Error(), stats.Imported)
		return stats, fmt.Errorf("scan %s: %w", path, err)
	}

	if err := im.store.UpdateRequestStatus(requestID, store.StatusCompleted, "", stats.Imported); err != nil {
		return stats, err
	}
	im.log.Info().
		Str("file", filepath.Base(path)).
		Int("imported", stats.Imported).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("import complete")
	return stats, nil
}

type outcome int

const (
	imported outcome = iota
	skipped
	failed
)

func (im *Importer) importGame(requestID, path string, gameIndex int, raw string) outcome {
	game, err := pgn.Parse(raw)
	if err != nil {
		im.log.Warn().Err(err).Int("game", gameIndex).Msg("unparseable game")
		return failed
	}

	whiteRating := parseRating(game.Tags["WhiteElo"])
	blackRating := parseRating(game.Tags["BlackElo"])
	if whiteRating < im.cfg.RatingMin || blackRating < im.cfg.RatingMin {
		return skipped
	}

	f, err := im.extractor.Extract(raw)
	if err != nil {
		im.log.Warn().Err(err).Int("game", gameIndex).Msg("extraction failed")
		return failed
	}

	row := featureRow(requestID, im.cfg.Platform, gameURL(game, path, gameIndex), raw, game, f)
	row.WhiteElo = whiteRating
	row.BlackElo = blackRating
	if row.ECO == "" && im.ecoDB != nil {
		if moves, err := game.Moves(); err == nil {
			if o := im.ecoDB.LookupMoves(moves); o != nil {
				row.ECO = o.ECO
			}
		}
	}

	if err := im.store.InsertFeature(row); err != nil {
		im.log.Warn().Err(err).Str("game_url", row.GameURL).Msg("insert failed")
		return failed
	}
	if err := im.store.InsertOccurrences(row.GameURL, f.AllOccurrences()); err != nil {
		im.log.Warn().Err(err).Str("game_url", row.GameURL).Msg("insert occurrences failed")
		return failed
	}
	return imported
}

// gameURL prefers the chess.com Link tag; otherwise an address is
// synthesized from the archive name and position.
func gameURL(game *pgn.Game, path string, gameIndex int) string {
	if link := game.Tags["Link"]; link != "" {
		return link
	}
	if site := game.Tags["Site"]; strings.HasPrefix(site, "http") {
		return site
	}
	return "import://" + filepath.Base(path) + "#" + strconv.Itoa(gameIndex)
}

func featureRow(requestID, platform, url, raw string, game *pgn.Game, f *extract.GameFeatures) store.GameFeature {
	discoveredAttack, discoveredMate, checkmate := f.AttackDerived()
	return store.GameFeature{
		RequestID:     requestID,
		GameURL:       url,
		Platform:      platform,
		WhiteUsername: game.Tags["White"],
		BlackUsername: game.Tags["Black"],
		TimeClass:     game.Tags["TimeClass"],
		ECO:           game.Tags["ECO"],
		Result:        game.Tags["Result"],
		PlayedAt:      playedAt(game),
		NumMoves:      f.NumMoves,
		PGN:           raw,

		HasPin:                    f.Has(motifs.Pin),
		HasCrossPin:               f.Has(motifs.CrossPin),
		HasFork:                   f.Has(motifs.Fork),
		HasSkewer:                 f.Has(motifs.Skewer),
		HasDiscoveredAttack:       discoveredAttack,
		HasDiscoveredMate:         discoveredMate,
		HasDiscoveredCheck:        f.Has(motifs.DiscoveredCheck),
		HasCheck:                  f.Has(motifs.Check),
		HasCheckmate:              checkmate,
		HasPromotion:              f.Has(motifs.Promotion),
		HasPromotionWithCheck:     f.Has(motifs.PromotionWithCheck),
		HasPromotionWithCheckmate: f.Has(motifs.PromotionWithCheckmate),
		HasBackRankMate:           f.Has(motifs.BackRankMate),
		HasSmotheredMate:          f.Has(motifs.SmotheredMate),
		HasSacrifice:              f.Has(motifs.Sacrifice),
		HasZugzwang:               f.Has(motifs.Zugzwang),
		HasDoubleCheck:            f.Has(motifs.DoubleCheck),
		HasInterference:           f.Has(motifs.Interference),
		HasOverloadedPiece:        f.Has(motifs.OverloadedPiece),
	}
}

func playedAt(game *pgn.Game) time.Time {
	date := game.Tags["UTCDate"]
	if date == "" {
		date = game.Tags["Date"]
	}
	clock := game.Tags["UTCTime"]
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.Parse("2006.01.02 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseRating(s string) int {
	if s == "" || s == "?" || s == "-" {
		return 0
	}
	r, _ := strconv.Atoi(s)
	return r
}
