package motifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/chessindex/internal/board"
)

func TestSacrificeMotifType(t *testing.T) {
	d := &SacrificeDetector{}
	assert.Equal(t, Sacrifice, d.Motif())
}

func TestSacrificeQueenTakesPawn(t *testing.T) {
	d := &SacrificeDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(20, "4k3/8/8/4Q3/4p3/8/8/4K3 w - - 0 1", true, "Qe5"),
		position(20, "4k3/8/8/8/4Q3/8/8/4K3 b - - 0 1", false, "Qxe4"),
	})
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, 20, occurrences[0].MoveNumber)
}

func TestSacrificeIgnoresEqualTrade(t *testing.T) {
	d := &SacrificeDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(20, "4k3/8/8/4r3/4R3/8/8/4K3 w - - 0 1", true, "Re4"),
		position(20, "4k3/8/8/4R3/8/8/8/4K3 b - - 0 1", false, "Rxe5"),
	})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSacrificeIgnoresMaterialGain(t *testing.T) {
	// Pawn takes queen: the capture wins material.
	d := &SacrificeDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(20, "4k3/8/8/4q3/5P2/8/8/4K3 w - - 0 1", true, "Pf4"),
		position(20, "4k3/8/8/4P3/8/8/8/4K3 b - - 0 1", false, "fxe5"),
	})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestSacrificeTooFewPositions(t *testing.T) {
	d := &SacrificeDetector{}

	occurrences, err := d.Detect(nil)
	require.NoError(t, err)
	assert.Empty(t, occurrences)

	occurrences, err = d.Detect([]board.Position{position(20, "4k3/8/8/4Q3/4p3/8/8/4K3 w - - 0 1", true, "Qe5")})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}
