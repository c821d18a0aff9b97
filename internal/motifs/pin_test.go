package motifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinMotifType(t *testing.T) {
	d := &PinDetector{}
	assert.Equal(t, Pin, d.Motif())
}

func TestPinAbsoluteRookPinsKnightToKing(t *testing.T) {
	// Black rook on a4 pins white knight on e4 to white king on h4.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(15, "8/8/8/8/r3N2K/8/8/7k w - - 0 1", true, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, PinAbsolute, occurrences[0].PinType)
	assert.Equal(t, "ra4", occurrences[0].Attacker)
	assert.Equal(t, "Ne4", occurrences[0].Target)
}

func TestPinAbsoluteBishopPinsBishopToKing(t *testing.T) {
	// Black bishop on a1 pins white bishop on d4 to white king on g7.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(20, "8/6K1/8/8/3B4/8/8/b6k w - - 0 1", true, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, PinAbsolute, occurrences[0].PinType)
	assert.Equal(t, "ba1", occurrences[0].Attacker)
	assert.Equal(t, "Bd4", occurrences[0].Target)
}

func TestPinAbsoluteQueenPinsRookToKing(t *testing.T) {
	// Black queen on a8 pins white rook on d8 to white king on h8.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(25, "q2R3K/8/8/8/8/8/8/7k w - - 0 1", true, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, PinAbsolute, occurrences[0].PinType)
	assert.Equal(t, "qa8", occurrences[0].Attacker)
	assert.Equal(t, "Rd8", occurrences[0].Target)
}

func TestPinAbsoluteBlackPieceIsPinned(t *testing.T) {
	// White rook on a5 pins black knight on e5 to black king on h5.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(18, "8/8/8/R3n2k/8/8/8/4K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, PinAbsolute, occurrences[0].PinType)
	assert.Equal(t, "Ra5", occurrences[0].Attacker)
	assert.Equal(t, "ne5", occurrences[0].Target)
}

func TestPinAbsoluteDiagonal(t *testing.T) {
	// White bishop on b1 pins black knight on d3 to black king on f5.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(12, "8/8/8/5k2/8/3n4/8/1B2K3 b - - 0 1", false, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, PinAbsolute, occurrences[0].PinType)
	assert.Equal(t, "Bb1", occurrences[0].Attacker)
	assert.Equal(t, "nd3", occurrences[0].Target)
}

func TestPinMultipleSimultaneousPins(t *testing.T) {
	// Black rook a8 pins white knight e8 along rank 8, and black bishop a1
	// pins white rook e5 along the a1-h8 diagonal.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(10, "r3N2K/8/8/4R3/8/8/7k/b7 w - - 0 1", true, "")))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(occurrences), 2)

	foundRank, foundDiagonal := false, false
	for _, occ := range occurrences {
		assert.Equal(t, PinAbsolute, occ.PinType)
		if occ.Attacker == "ra8" && occ.Target == "Ne8" {
			foundRank = true
		}
		if occ.Attacker == "ba1" && occ.Target == "Re5" {
			foundDiagonal = true
		}
	}
	assert.True(t, foundRank)
	assert.True(t, foundDiagonal)
}

func TestPinRelativeRookPinsKnightToQueen(t *testing.T) {
	// Black rook on a5, white knight on e5 shields the white queen on h5.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(12, "8/8/8/r3N2Q/8/8/8/4K2k w - - 0 1", true, "")))
	require.NoError(t, err)

	var relative *Occurrence
	for i := range occurrences {
		if occurrences[i].PinType == PinRelative {
			relative = &occurrences[i]
			break
		}
	}
	require.NotNil(t, relative)
	assert.Equal(t, "ra5", relative.Attacker)
	assert.Equal(t, "Ne5", relative.Target)
}

func TestPinNoneInStartingPosition(t *testing.T) {
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(1, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestPinNoPieceBetweenAttackerAndKing(t *testing.T) {
	// Direct rook check, nothing shielded.
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/8/8/r6K/8/8/7k w - - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestPinTwoPiecesBetweenAttackerAndKing(t *testing.T) {
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/8/8/r2NN2K/8/8/7k w - - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestPinKnightCannotPin(t *testing.T) {
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(10, "8/8/2n5/8/3B4/8/8/4K2k w - - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestPinRookCannotPinOnDiagonal(t *testing.T) {
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(10, "8/6K1/8/8/3B4/8/8/r6k w - - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestPinTooFewPositions(t *testing.T) {
	d := &PinDetector{}

	occurrences, err := d.Detect(nil)
	require.NoError(t, err)
	assert.Empty(t, occurrences)

	occurrences, err = d.Detect(game())
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestPinOccurrenceHasNoMovedPiece(t *testing.T) {
	d := &PinDetector{}
	occurrences, err := d.Detect(game(position(15, "8/8/8/8/r3N2K/8/8/7k w - - 0 1", true, "")))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Empty(t, occurrences[0].MovedPiece)
	assert.False(t, occurrences[0].Discovered)
	assert.False(t, occurrences[0].Mate)
}
