package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// WatchConfig configures the archive watcher.
type WatchConfig struct {
	WatchDir     string        // directory scanned for new archives
	ProcessedDir string        // processed archives move here; default WatchDir/processed
	PollInterval time.Duration // default 10s
}

// Watch polls a directory for PGN archives and imports each one, moving it
// to the processed directory afterwards. Runs until the context is
// cancelled.
func (im *Importer) Watch(ctx context.Context, cfg WatchConfig) error {
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = filepath.Join(cfg.WatchDir, "processed")
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if err := os.MkdirAll(cfg.WatchDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ProcessedDir, 0o755); err != nil {
		return err
	}

	im.log.Info().Str("watch_dir", cfg.WatchDir).Msg("import watcher started")

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := im.sweep(ctx, cfg); err != nil {
				im.log.Warn().Err(err).Msg("import sweep failed")
			}
		}
	}
}

func (im *Importer) sweep(ctx context.Context, cfg WatchConfig) error {
	entries, err := os.ReadDir(cfg.WatchDir)
	if err != nil {
		return err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsPGNFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		path := filepath.Join(cfg.WatchDir, name)
		if _, err := im.ImportFile(ctx, path); err != nil {
			im.log.Error().Err(err).Str("file", name).Msg("import failed, leaving file in place")
			continue
		}
		if err := os.Rename(path, filepath.Join(cfg.ProcessedDir, name)); err != nil {
			im.log.Warn().Err(err).Str("file", name).Msg("move to processed failed")
		}
	}
	return nil
}
