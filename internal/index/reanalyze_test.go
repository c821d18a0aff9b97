package index

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/chessindex/internal/extract"
	"github.com/freeeve/chessindex/internal/store"
)

func newTestReanalyzer(t *testing.T) (*Reanalyzer, *store.Store, string) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	requestID, err := s.CreateRequest("p", "CHESS_COM", "2024-01", "2024-01")
	require.NoError(t, err)

	return NewReanalyzer(s, extract.New(zerolog.Nop()), zerolog.Nop()), s, requestID
}

func insertStoredGame(t *testing.T, s *store.Store, requestID, gameURL, pgn string) {
	t.Helper()
	require.NoError(t, s.InsertFeature(store.GameFeature{
		RequestID: requestID,
		GameURL:   gameURL,
		Platform:  "CHESS_COM",
		Result:    "1-0",
		NumMoves:  4,
		PGN:       pgn,
	}))
}

func TestReanalyzeEmptyStore(t *testing.T) {
	r, _, _ := newTestReanalyzer(t)

	processed, failed, err := r.Run()
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, failed)
}

func TestReanalyzeRewritesOccurrences(t *testing.T) {
	r, s, requestID := newTestReanalyzer(t)
	gameURL := "https://chess.com/game/re-1"
	insertStoredGame(t, s, requestID, gameURL, scholarsMatePGN)

	processed, failed, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Zero(t, failed)

	occurrences, err := s.QueryOccurrences([]string{gameURL})
	require.NoError(t, err)
	require.Contains(t, occurrences, gameURL)
	assert.NotEmpty(t, occurrences[gameURL]["check"])

	rows, err := s.Query(queryFor(t, `motif(checkmate)`), 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, gameURL, rows[0].GameURL)
}

func TestReanalyzeIsIdempotent(t *testing.T) {
	r, s, requestID := newTestReanalyzer(t)
	gameURL := "https://chess.com/game/re-2"
	insertStoredGame(t, s, requestID, gameURL, scholarsMatePGN)

	_, _, err := r.Run()
	require.NoError(t, err)
	first, err := s.QueryOccurrences([]string{gameURL})
	require.NoError(t, err)

	_, _, err = r.Run()
	require.NoError(t, err)
	second, err := s.QueryOccurrences([]string{gameURL})
	require.NoError(t, err)

	// A second pass replaces rather than appends.
	assert.Equal(t, len(first[gameURL]["check"]), len(second[gameURL]["check"]))
}

func TestReanalyzeCountsBlankPGNAsFailed(t *testing.T) {
	r, s, requestID := newTestReanalyzer(t)
	insertStoredGame(t, s, requestID, "https://chess.com/game/blank", "")
	insertStoredGame(t, s, requestID, "https://chess.com/game/good", scholarsMatePGN)

	processed, failed, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, failed)
}

func TestReanalyzeCountsUnparseableGameAsFailed(t *testing.T) {
	r, s, requestID := newTestReanalyzer(t)
	insertStoredGame(t, s, requestID, "https://chess.com/game/bad", "1. e4 e5 2. Ke3 1-0")

	processed, failed, err := r.Run()
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Equal(t, 1, failed)
}

func TestReanalyzePagesThroughBatches(t *testing.T) {
	r, s, requestID := newTestReanalyzer(t)
	var urls []string
	for i := 0; i < 5; i++ {
		u := fmt.Sprintf("https://chess.com/game/batch-%d", i)
		insertStoredGame(t, s, requestID, u, scholarsMatePGN)
		urls = append(urls, u)
	}

	r.batchSize = 2

	processed, failed, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 5, processed)
	assert.Zero(t, failed)

	// Each stored game must come out of the pass with occurrences, even
	// though rewriting a row bumps its indexed_at between batches.
	occurrences, err := s.QueryOccurrences(urls)
	require.NoError(t, err)
	for _, u := range urls {
		assert.NotEmpty(t, occurrences[u]["check"], "game %s was not reanalyzed", u)
	}

	rows, err := s.Query(queryFor(t, `motif(checkmate)`), 10, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}
