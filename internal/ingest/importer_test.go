package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/chessindex/internal/chessql"
	"github.com/freeeve/chessindex/internal/eco"
	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/store"
)

func mustQuery(t *testing.T, input string) chessql.CompiledQuery {
	t.Helper()
	pq, err := chessql.Parse(input)
	require.NoError(t, err)
	cq, err := chessql.Compile(pq)
	require.NoError(t, err)
	return cq
}

const archiveTwoGames = `[Event "Live Chess"]
[Site "Chess.com"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[WhiteElo "2100"]
[BlackElo "2050"]
[ECO "C20"]
[UTCDate "2024.01.15"]
[UTCTime "12:30:00"]
[Link "https://chess.com/game/import-1"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0

[Event "Live Chess"]
[Site "Chess.com"]
[White "carol"]
[Black "dave"]
[Result "0-1"]
[WhiteElo "900"]
[BlackElo "2200"]
[Link "https://chess.com/game/import-2"]

1. d4 d5 2. c4 e6 0-1
`

func newTestImporter(t *testing.T, ratingMin int, ecoDB *eco.Database) (*Importer, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	im := NewImporter(Config{RatingMin: ratingMin, Logger: zerolog.Nop()}, s, extract.New(zerolog.Nop()), ecoDB)
	return im, s
}

func writeArchive(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if strings.HasSuffix(name, ".zst") {
		f, err := os.Create(path)
		require.NoError(t, err)
		enc, err := zstd.NewWriter(f)
		require.NoError(t, err)
		_, err = enc.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, enc.Close())
		require.NoError(t, f.Close())
	} else {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return path
}

func TestGameScannerSplitsGames(t *testing.T) {
	sc := NewGameScanner(strings.NewReader(archiveTwoGames))

	require.True(t, sc.Scan())
	first := sc.Game()
	assert.Contains(t, first, `[White "alice"]`)
	assert.Contains(t, first, "Qxf7#")
	assert.NotContains(t, first, "carol")

	require.True(t, sc.Scan())
	second := sc.Game()
	assert.Contains(t, second, `[White "carol"]`)

	assert.False(t, sc.Scan())
	assert.NoError(t, sc.Err())
}

func TestGameScannerEmptyInput(t *testing.T) {
	sc := NewGameScanner(strings.NewReader(""))
	assert.False(t, sc.Scan())
}

func TestImportFileStoresGames(t *testing.T) {
	im, s := newTestImporter(t, 0, nil)
	path := writeArchive(t, "games.pgn", archiveTwoGames)

	stats, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Failed)

	rows, err := s.Query(mustQuery(t, `white_username = "alice"`), 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	got := rows[0]
	assert.Equal(t, "https://chess.com/game/import-1", got.GameURL)
	assert.Equal(t, 2100, got.WhiteElo)
	assert.Equal(t, "C20", got.ECO)
	assert.Equal(t, "1-0", got.Result)
	assert.True(t, got.HasCheck)
	assert.True(t, got.HasCheckmate)
	assert.Equal(t, 2024, got.PlayedAt.Year())

	occurrences, err := s.QueryOccurrences([]string{got.GameURL})
	require.NoError(t, err)
	assert.NotEmpty(t, occurrences[got.GameURL]["check"])
}

func TestImportFileMarksRequestCompleted(t *testing.T) {
	im, s := newTestImporter(t, 0, nil)
	path := writeArchive(t, "games.pgn", archiveTwoGames)

	_, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)

	requests, err := s.ListRecentRequests(1)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, store.StatusCompleted, requests[0].Status)
	assert.Equal(t, 2, requests[0].GamesIndexed)
	assert.Contains(t, requests[0].Player, "games.pgn")
}

func TestImportFileAppliesRatingFloor(t *testing.T) {
	im, _ := newTestImporter(t, 2000, nil)
	path := writeArchive(t, "games.pgn", archiveTwoGames)

	stats, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	// Second game has a 900-rated side.
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
}

func TestImportFileReadsZstdArchives(t *testing.T) {
	im, s := newTestImporter(t, 0, nil)
	path := writeArchive(t, "games.pgn.zst", archiveTwoGames)

	stats, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)

	rows, err := s.Query(mustQuery(t, `platform = "IMPORT"`), 10, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestImportFileFillsECOFromDatabase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eco.tsv"),
		[]byte("eco\tname\tpgn\nD35\tQueen's Gambit Declined\t1. d4 d5 2. c4 e6\n"), 0o644))
	ecoDB := eco.NewDatabase()
	require.NoError(t, ecoDB.LoadDir(dir))

	im, s := newTestImporter(t, 0, ecoDB)
	path := writeArchive(t, "games.pgn", archiveTwoGames)

	_, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)

	rows, err := s.Query(mustQuery(t, `white_username = "carol"`), 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// The second game has no ECO tag; classification fills it.
	assert.Equal(t, "D35", rows[0].ECO)
}

func TestImportFileCountsBadGamesAsFailed(t *testing.T) {
	im, _ := newTestImporter(t, 0, nil)
	bad := `[Event "Live Chess"]
[White "x"]
[Black "y"]
[Result "1-0"]

1. e4 e5 2. Ke3 1-0
`
	path := writeArchive(t, "games.pgn", bad)

	stats, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, stats.Imported)
	assert.Equal(t, 1, stats.Failed)
}

func TestIsPGNFile(t *testing.T) {
	assert.True(t, IsPGNFile("games.pgn"))
	assert.True(t, IsPGNFile("games.pgn.zst"))
	assert.False(t, IsPGNFile("games.zst"))
	assert.False(t, IsPGNFile("games.txt"))
}
