package index

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/motifs"
	"github.com/freeeve/chessindex/internal/store"
)

// GamesFetcher fetches one month of a player's games from the provider.
type GamesFetcher interface {
	FetchGames(player, month string) ([]PlayedGame, error)
}

// RequestStore records indexing request status transitions.
type RequestStore interface {
	UpdateRequestStatus(id, status, errorMessage string, gamesIndexed int) error
}

// FeatureStore persists extracted games.
type FeatureStore interface {
	InsertFeature(row store.GameFeature) error
	InsertOccurrences(gameURL string, occurrences map[motifs.Motif][]motifs.Occurrence) error
}

// PeriodStore caches which (player, month) archives were already fetched.
type PeriodStore interface {
	FindCompletePeriod(player, platform, month string) (store.IndexedPeriod, error)
	UpsertPeriod(p store.IndexedPeriod) error
}

// Worker consumes indexing requests and turns each into stored game
// features.
type Worker struct {
	client    GamesFetcher
	extractor *extract.Extractor
	requests  RequestStore
	features  FeatureStore
	periods   PeriodStore
	log       zerolog.Logger
	now       func() time.Time
}

// NewWorker wires a worker from its dependencies.
func NewWorker(client GamesFetcher, extractor *extract.Extractor,
	requests RequestStore, features FeatureStore, periods PeriodStore,
	logger zerolog.Logger) *Worker {
	return &Worker{
		client:    client,
		extractor: extractor,
		requests:  requests,
		features:  features,
		periods:   periods,
		log:       logger.With().Str("component", "index-worker").Logger(),
		now:       time.Now,
	}
}

// Run consumes the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context, queue *Queue) error {
	w.log.Info().Msg("index worker started")
	for {
		msg, ok := queue.Dequeue(ctx)
		if !ok {
			return ctx.Err()
		}
		w.Process(msg)
	}
}

// Process indexes one request: every month in the range is either served
// from the period cache or fetched, extracted and stored. The request ends
// COMPLETED with the total game count, or FAILED with the first fetch error.
func (w *Worker) Process(msg Message) {
	log := w.log.With().Str("request_id", msg.RequestID).Str("player", msg.Player).Logger()
	if err := w.requests.UpdateRequestStatus(msg.RequestID, store.StatusProcessing, "", 0); err != nil {
		log.Error().Err(err).Msg("mark processing")
		return
	}

	months, err := monthsInRange(msg.StartMonth, msg.EndMonth)
	if err != nil {
		log.Error().Err(err).Msg("bad month range")
		w.fail(msg.RequestID, err, 0)
		return
	}

	total := 0
	for _, month := range months {
		if cached, err := w.periods.FindCompletePeriod(msg.Player, msg.Platform, month); err == nil {
			log.Debug().Str("month", month).Int("games", cached.GamesCount).Msg("period cached")
			total += cached.GamesCount
			continue
		}

		indexed, err := w.indexMonth(msg, month)
		if err != nil {
			log.Error().Err(err).Str("month", month).Msg("index month")
			w.fail(msg.RequestID, err, total)
			return
		}
		total += indexed
	}

	if err := w.requests.UpdateRequestStatus(msg.RequestID, store.StatusCompleted, "", total); err != nil {
		log.Error().Err(err).Msg("mark completed")
		return
	}
	log.Info().Int("games", total).Msg("request completed")
}

// indexMonth fetches one archive month and stores every extractable game.
// Games with blank PGNs or failing extraction are skipped, not fatal.
func (w *Worker) indexMonth(msg Message, month string) (int, error) {
	games, err := w.client.FetchGames(msg.Player, month)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, game := range games {
		if err := w.indexGame(msg, game); err != nil {
			w.log.Warn().Err(err).Str("game_url", game.URL).Msg("skipping game")
			continue
		}
		indexed++
	}

	if err := w.periods.UpsertPeriod(store.IndexedPeriod{
		Player:     msg.Player,
		Platform:   msg.Platform,
		YearMonth:  month,
		FetchedAt:  w.now().UTC(),
		IsComplete: w.isMonthComplete(month),
		GamesCount: indexed,
	}); err != nil {
		return indexed, err
	}
	return indexed, nil
}

func (w *Worker) indexGame(msg Message, game PlayedGame) error {
	if game.PGN == "" {
		return fmt.Errorf("blank pgn for %s", game.URL)
	}
	f, err := w.extractor.Extract(game.PGN)
	if err != nil {
		return err
	}
	if err := w.features.InsertFeature(featureRow(msg, game, f)); err != nil {
		return err
	}
	return w.features.InsertOccurrences(game.URL, f.AllOccurrences())
}

func (w *Worker) fail(requestID string, cause error, gamesIndexed int) {
	if err := w.requests.UpdateRequestStatus(requestID, store.StatusFailed, cause.Error(), gamesIndexed); err != nil {
		w.log.Error().Err(err).Str("request_id", requestID).Msg("mark failed")
	}
}

// featureRow maps one fetched game plus its extraction to a feature row.
func featureRow(msg Message, game PlayedGame, f *extract.GameFeatures) store.GameFeature {
	discoveredAttack, discoveredMate, checkmate := f.AttackDerived()
	var playedAt time.Time
	if game.EndTime > 0 {
		playedAt = time.Unix(game.EndTime, 0).UTC()
	}
	return store.GameFeature{
		RequestID:     msg.RequestID,
		GameURL:       game.URL,
		Platform:      msg.Platform,
		WhiteUsername: game.White.Username,
		BlackUsername: game.Black.Username,
		WhiteElo:      game.White.Rating,
		BlackElo:      game.Black.Rating,
		TimeClass:     game.TimeClass,
		ECO:           game.ECO,
		Result:        MapResult(game.White.Result, game.Black.Result),
		PlayedAt:      playedAt,
		NumMoves:      f.NumMoves,
		PGN:           game.PGN,

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

// monthsInRange expands "2006-01".."2006-03" to every month, inclusive.
func monthsInRange(start, end string) ([]string, error) {
	from, err := time.Parse("2006-01", start)
	if err != nil {
		return nil, fmt.Errorf("bad start month %q: %w", start, err)
	}
	to, err := time.Parse("2006-01", end)
	if err != nil {
		return nil, fmt.Errorf("bad end month %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end month %q before start month %q", end, start)
	}

	var months []string
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		months = append(months, m.Format("2006-01"))
	}
	return months, nil
}

// isMonthComplete reports whether the month is strictly before the current
// one; only finished months are safe to cache as complete.
func (w *Worker) isMonthComplete(month string) bool {
	m, err := time.Parse("2006-01", month)
	if err != nil {
		return false
	}
	now := w.now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return m.Before(current)
}
