package motifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/chessindex/internal/board"
)

func TestInterferenceMotifType(t *testing.T) {
	d := &InterferenceDetector{}
	assert.Equal(t, Interference, d.Motif())
}

func TestInterferenceDetectsBlockedSlidingLine(t *testing.T) {
	// Knight lands on a4, cutting the black rook's line up the a-file.
	d := &InterferenceDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(20, "4k3/8/8/8/8/2N5/8/r3K3 w - - 0 1", true, "Nc3"),
		position(21, "4k3/8/8/8/N7/8/8/r3K3 b - - 0 1", false, "Na4"),
	})
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, 21, occurrences[0].MoveNumber)
}

func TestInterferenceIgnoresDestinationOffSlidingLine(t *testing.T) {
	// Knight lands on d4, nowhere near the rook's a-file.
	d := &InterferenceDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(20, "4k3/8/8/8/8/3N4/8/r3K3 w - - 0 1", true, "Nd3"),
		position(21, "4k3/8/8/8/3N4/8/8/r3K3 b - - 0 1", false, "Nd4"),
	})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestInterferenceTooFewPositions(t *testing.T) {
	d := &InterferenceDetector{}

	occurrences, err := d.Detect(nil)
	require.NoError(t, err)
	assert.Empty(t, occurrences)

	occurrences, err = d.Detect([]board.Position{position(20, "4k3/8/8/8/8/2N5/8/r3K3 w - - 0 1", true, "Nc3")})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}
