package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/freeeve/chessindex/internal/eco"
	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/ingest"
	"github.com/freeeve/chessindex/internal/logx"
	"github.com/freeeve/chessindex/internal/store"
)

func main() {
	var (
		dbPath    = flag.String("db", "./data/chessindex.db", "SQLite database path")
		ratingMin = flag.Int("rating", 0, "skip games where either side is below this rating")
		ecoDir    = flag.String("eco-dir", "", "directory with ECO .tsv files (empty = no classification)")
	)
	flag.Parse()

	logger := logx.NewLogger()

	files := flag.Args()
	if len(files) == 0 {
		logger.Fatal().Msg("usage: import-pgn [flags] file.pgn [file.pgn.zst ...]")
	}
	for _, f := range files {
		if !ingest.IsPGNFile(f) {
			logger.Fatal().Str("file", f).Msg("not a .pgn or .pgn.zst file")
		}
	}

	st, err := store.Open(*dbPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("db", *dbPath).Msg("open store")
	}
	defer st.Close()

	var ecoDB *eco.Database
	if *ecoDir != "" {
		ecoDB = eco.NewDatabase()
		if err := ecoDB.LoadDir(*ecoDir); err != nil {
			logger.Warn().Err(err).Str("dir", *ecoDir).Msg("failed to load ECO database")
			ecoDB = nil
		} else {
			logger.Info().Int("openings", ecoDB.Count()).Msg("ECO database loaded")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	importer := ingest.NewImporter(ingest.Config{
		RatingMin: *ratingMin,
		Logger:    logger,
	}, st, extract.New(logger), ecoDB)

	var total ingest.Stats
	for _, path := range files {
		stats, err := importer.ImportFile(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Warn().Msg("import interrupted")
				break
			}
			logger.Error().Err(err).Str("file", path).Msg("import failed")
			continue
		}
		total.Imported += stats.Imported
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed
	}

	logger.Info().
		Int("imported", total.Imported).
		Int("skipped", total.Skipped).
		Int("failed", total.Failed).
		Msg("import finished")
}
