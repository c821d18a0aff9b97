package motifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossPinMotifType(t *testing.T) {
	d := &CrossPinDetector{}
	assert.Equal(t, CrossPin, d.Motif())
}

func TestCrossPinNoneInStartingPosition(t *testing.T) {
	d := &CrossPinDetector{}
	occurrences, err := d.Detect(game(position(1, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestCrossPinIgnoresSingleAxisPin(t *testing.T) {
	// Ordinary absolute pin: one attacker, one direction.
	d := &CrossPinDetector{}
	occurrences, err := d.Detect(game(position(15, "8/8/8/8/r3N2K/8/8/7k w - - 0 1", true, "")))
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestCrossPinTooFewPositions(t *testing.T) {
	d := &CrossPinDetector{}
	occurrences, err := d.Detect(nil)
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}
