package motifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkewerMotifType(t *testing.T) {
	d := &SkewerDetector{}
	assert.Equal(t, Skewer, d.Motif())
}

func TestSkewerRookSkewersKingAndRook(t *testing.T) {
	// White rook on a4 attacks black king on e4 with black rook on h4 behind.
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(15, "8/8/8/8/R3k2r/8/8/4K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "Ra4", occurrences[0].Attacker)
	assert.Equal(t, "ke4", occurrences[0].Target)
	assert.Empty(t, occurrences[0].PinType)
	assert.False(t, occurrences[0].Discovered)
	assert.False(t, occurrences[0].Mate)
}

func TestSkewerQueenSkewersKingAndBishop(t *testing.T) {
	// White queen on a1 attacks black king on d4 with black bishop on g7 behind.
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(20, "8/6b1/8/8/3k4/8/8/Q3K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "Qa1", occurrences[0].Attacker)
	assert.Equal(t, "kd4", occurrences[0].Target)
}

func TestSkewerBishopSkewersQueenAndRook(t *testing.T) {
	// White bishop on b1 attacks black queen on d3 with black rook on f5 behind.
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(18, "8/8/8/5r2/8/3q4/8/1B2K2k b - - 0 1", false, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "Bb1", occurrences[0].Attacker)
	assert.Equal(t, "qd3", occurrences[0].Target)
}

func TestSkewerRookSkewersQueenAndKnight(t *testing.T) {
	// White rook on a5 attacks black queen on d5 with black knight on h5 behind.
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(22, "8/8/8/R2q3n/8/8/8/4K2k b - - 0 1", false, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "Ra5", occurrences[0].Attacker)
	assert.Equal(t, "qd5", occurrences[0].Target)
}

func TestSkewerBlackSkewersWhitePieces(t *testing.T) {
	// Black rook on h4 attacks white king on e4 with white bishop on b4 behind.
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(15, "8/8/8/8/1B2K2r/8/8/7k w - - 0 1", true, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "black", occurrences[0].Side)
	assert.Equal(t, "rh4", occurrences[0].Attacker)
	assert.Equal(t, "Ke4", occurrences[0].Target)
}

func TestSkewerNotWhenLessValuableInFront(t *testing.T) {
	// Knight in front of the king is a pin, not a skewer.
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/8/8/R3n2k/8/8/4K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSkewerNotForEqualValuePieces(t *testing.T) {
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/8/8/R3r2r/8/8/4K2k b - - 0 1", false, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSkewerNotWithOnlyOnePieceOnRay(t *testing.T) {
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/8/8/R3k3/8/8/4K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSkewerNotWithPawnBehind(t *testing.T) {
	// King with a pawn behind: pawn value is below a minor piece.
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/8/8/R3k2p/8/8/4K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSkewerNotWhenFriendlyPieceBlocks(t *testing.T) {
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/8/8/R1N1k2r/8/8/4K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSkewerKnightCannotSkewer(t *testing.T) {
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/5q2/8/4N3/8/3r4/4K2k b - - 0 1", false, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSkewerNoneInStartingPosition(t *testing.T) {
	d := &SkewerDetector{}
	occurrences, err := d.Detect(game(position(1, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSkewerTooFewPositions(t *testing.T) {
	d := &SkewerDetector{}
	occurrences, err := d.Detect(nil)
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}
