package index

import (
	"github.com/rs/zerolog"

	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/store"
)

const reanalyzeBatchSize = 1000

// ReanalysisStore pages stored games and atomically rewrites their derived
// data.
type ReanalysisStore interface {
	FetchForReanalysis(limit int, afterURL string) ([]store.GameForReanalysis, error)
	ReplaceAnalysis(gameURL string, f *extract.GameFeatures) error
}

// Reanalyzer re-runs extraction over every stored game, picking up detector
// changes without re-fetching from the provider.
type Reanalyzer struct {
	store     ReanalysisStore
	extractor *extract.Extractor
	batchSize int
	log       zerolog.Logger
}

// NewReanalyzer wires a reanalyzer.
func NewReanalyzer(s ReanalysisStore, extractor *extract.Extractor, logger zerolog.Logger) *Reanalyzer {
	return &Reanalyzer{
		store:     s,
		extractor: extractor,
		batchSize: reanalyzeBatchSize,
		log:       logger.With().Str("component", "reanalyzer").Logger(),
	}
}

// Run pages through all stored games in game_url order, keyset-style, so
// rewriting a row mid-pass cannot skip or repeat games. Each game either
// counts as processed or failed; one bad game never stops the pass.
func (r *Reanalyzer) Run() (processed, failed int, err error) {
	cursor := ""
	for {
		batch, err := r.store.FetchForReanalysis(r.batchSize, cursor)
		if err != nil {
			return processed, failed, err
		}

		for _, game := range batch {
			if r.reanalyzeGame(game) {
				processed++
			} else {
				failed++
			}
		}

		if len(batch) < r.batchSize {
			break
		}
		cursor = batch[len(batch)-1].GameURL
	}

	r.log.Info().Int("processed", processed).Int("failed", failed).Msg("reanalysis finished")
	return processed, failed, nil
}

func (r *Reanalyzer) reanalyzeGame(game store.GameForReanalysis) bool {
	if game.PGN == "" {
		r.log.Warn().Str("game_url", game.GameURL).Msg("blank pgn, skipping")
		return false
	}
	f, err := r.extractor.Extract(game.PGN)
	if err != nil {
		r.log.Warn().Err(err).Str("game_url", game.GameURL).Msg("reextract failed")
		return false
	}
	if err := r.store.ReplaceAnalysis(game.GameURL, f); err != nil {
		r.log.Warn().Err(err).Str("game_url", game.GameURL).Msg("replace analysis failed")
		return false
	}
	return true
}
