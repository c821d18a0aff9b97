package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/chessindex/internal/store"
)

func newTestRetention(t *testing.T) (*Retention, *store.Store, string) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	requestID, err := s.CreateRequest("p", "CHESS_COM", "2024-01", "2024-01")
	require.NoError(t, err)

	r := NewRetention(RetentionConfig{MaxAge: 7 * 24 * time.Hour}, s, zerolog.Nop())
	return r, s, requestID
}

func TestRetentionDeletesOldGames(t *testing.T) {
	r, s, requestID := newTestRetention(t)
	insertStoredGame(t, s, requestID, "https://chess.com/game/fresh", "pgn")
	insertStoredGame(t, s, requestID, "https://chess.com/game/old", "pgn")

	// Both games were just indexed; a sweep now deletes nothing.
	require.NoError(t, r.RunOnce())

	rows, err := s.Query(queryFor(t, `platform = "CHESS_COM"`), 10, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	r.now = func() time.Time { return time.Now().UTC().Add(8 * 24 * time.Hour) }
	require.NoError(t, r.RunOnce())

	rows, err = s.Query(queryFor(t, `platform = "CHESS_COM"`), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRetentionDeletesOldPeriods(t *testing.T) {
	r, s, _ := newTestRetention(t)
	require.NoError(t, s.UpsertPeriod(store.IndexedPeriod{
		Player: "p", Platform: "CHESS_COM", YearMonth: "2024-01",
		FetchedAt: time.Now().UTC().Add(-8 * 24 * time.Hour), IsComplete: true, GamesCount: 5,
	}))
	require.NoError(t, s.UpsertPeriod(store.IndexedPeriod{
		Player: "p", Platform: "CHESS_COM", YearMonth: "2024-02",
		FetchedAt: time.Now().UTC(), IsComplete: true, GamesCount: 5,
	}))

	require.NoError(t, r.RunOnce())

	_, err := s.FindCompletePeriod("p", "CHESS_COM", "2024-01")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.FindCompletePeriod("p", "CHESS_COM", "2024-02")
	assert.NoError(t, err)
}
