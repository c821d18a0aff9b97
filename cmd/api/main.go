package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/httpapi"
	"github.com/freeeve/chessindex/internal/index"
	"github.com/freeeve/chessindex/internal/ingest"
	"github.com/freeeve/chessindex/internal/logx"
	"github.com/freeeve/chessindex/internal/store"
)

func main() {
	var (
		addr   = flag.String("addr", ":8007", "listen address")
		dbPath = flag.String("db", "./data/chessindex.db", "SQLite database path")

		// Workers
		indexWorker   = flag.Bool("worker", true, "enable in-process index worker")
		retention     = flag.Bool("retention", true, "enable retention loop")
		queueSize     = flag.Int("queue-size", 128, "pending indexing requests before rejecting")
		retentionAge  = flag.Duration("retention-age", 7*24*time.Hour, "delete games not re-indexed within this window")
		retentionTick = flag.Duration("retention-interval", time.Hour, "how often to run the retention sweep")

		// Bulk import
		importDir    = flag.String("import-dir", "", "directory to watch for PGN archives (empty = disabled)")
		importRating = flag.Int("import-rating", 0, "minimum rating for imported games")
	)
	flag.Parse()

	logger := logx.NewLogger()

	st, err := store.Open(*dbPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("db", *dbPath).Msg("open store")
	}
	defer st.Close()
	logger.Info().Str("db", *dbPath).Msg("store opened")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor := extract.New(logger)
	queue := index.NewQueue(*queueSize)
	reanalyzer := index.NewReanalyzer(st, extractor, logger)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      httpapi.NewRouter(logger, st, queue, reanalyzer),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	if *indexWorker {
		worker := index.NewWorker(index.NewChessComClient(logger), extractor, st, st, st, logger)
		go func() {
			if err := worker.Run(ctx, queue); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("index worker stopped")
			}
		}()
	} else {
		logger.Info().Msg("index worker disabled - requests will stay PENDING")
	}

	if *retention {
		sweeper := index.NewRetention(index.RetentionConfig{
			MaxAge:   *retentionAge,
			Interval: *retentionTick,
		}, st, logger)
		go func() {
			if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("retention loop stopped")
			}
		}()
	}

	if *importDir != "" {
		importer := ingest.NewImporter(ingest.Config{
			RatingMin: *importRating,
			Logger:    logger,
		}, st, extractor, nil)
		go func() {
			err := importer.Watch(ctx, ingest.WatchConfig{WatchDir: *importDir})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("import watcher stopped")
			}
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
}
