package motifs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/chessindex/internal/board"
)

func TestAttackMotifType(t *testing.T) {
	d := &AttackDetector{}
	assert.Equal(t, Attack, d.Motif())
}

func TestAttackDirectAttackOnKing(t *testing.T) {
	// Queen moves a1 to d5, directly attacking the black king on d8.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(10, "3k4/8/8/8/8/8/8/Q3K3 w - - 0 10", true, ""),
		position(10, "3k4/8/8/3Q4/8/8/8/4K3 b - - 1 10", false, "Qd5+"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, occurrences)

	var kingAttack *Occurrence
	for i := range occurrences {
		if occurrences[i].Target == "kd8" {
			kingAttack = &occurrences[i]
			break
		}
	}
	require.NotNil(t, kingAttack)
	assert.Equal(t, 10, kingAttack.MoveNumber)
	assert.Equal(t, "white", kingAttack.Side)
	assert.False(t, kingAttack.Discovered)
	assert.False(t, kingAttack.Mate)
}

func TestAttackDirectCheckmateIsMate(t *testing.T) {
	// Rook a1 to a8 delivers a back rank mate against the king on g8.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(20, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 20", true, ""),
		position(20, "R5k1/5ppp/8/8/8/8/8/6K1 b - - 1 20", false, "Ra8#"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, occurrences)

	var mateOcc *Occurrence
	for i := range occurrences {
		if occurrences[i].Mate {
			mateOcc = &occurrences[i]
			break
		}
	}
	require.NotNil(t, mateOcc)
	assert.False(t, mateOcc.Discovered)
	assert.Equal(t, 20, mateOcc.MoveNumber)
	assert.Equal(t, "white", mateOcc.Side)
}

func TestAttackKnightForkEmitsBothTargets(t *testing.T) {
	// Knight lands on e5, forking the black queen on d7 and the king on f7.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(5, "8/3q1k2/8/8/2N5/8/8/4K3 w - - 0 5", true, ""),
		position(5, "8/3q1k2/8/4N3/8/8/8/4K3 b - - 1 5", false, "Ne5"),
	})
	require.NoError(t, err)

	targets := make([]string, 0, len(occurrences))
	for _, occ := range occurrences {
		assert.False(t, occ.Discovered)
		targets = append(targets, occ.Target)
	}
	assert.Contains(t, targets, "kf7")
	assert.Contains(t, targets, "qd7")
}

func TestAttackKnightForkQueenAndRook(t *testing.T) {
	// Knight on e5 forks the black queen on c4 and the rook on g4.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(5, "8/8/8/8/2q3r1/8/3N4/4K2k w - - 0 1", true, ""),
		position(5, "8/8/8/4N3/2q3r1/8/8/4K2k b - - 1 1", false, "Ne5"),
	})
	require.NoError(t, err)
	require.Len(t, occurrences, 2)

	targets := []string{occurrences[0].Target, occurrences[1].Target}
	assert.ElementsMatch(t, []string{"qc4", "rg4"}, targets)
	for _, occ := range occurrences {
		assert.Equal(t, byte('N'), occ.Attacker[0])
		assert.Equal(t, occ.Attacker, occ.MovedPiece)
	}
}

func TestAttackQueenTargetWithoutFork(t *testing.T) {
	// Rook slides to a4, attacking only the black queen on d4.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(3, "7k/8/8/8/3q4/8/8/R3K3 w - - 0 1", true, ""),
		position(3, "7k/8/8/8/R2q4/8/8/4K3 b - - 1 1", false, "Ra4"),
	})
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "qd4", occurrences[0].Target)
}

func TestAttackDiscoveredRowUsesCompactMovedPiece(t *testing.T) {
	// Bishop moves e4 to h7, revealing the rook on e1 attacking the queen on e8.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(8, "4q3/8/8/8/4B3/8/8/4R2K w - - 0 8", true, ""),
		position(8, "4q3/7B/8/8/8/8/8/4R2K b - - 1 8", false, "Bh7"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, occurrences)

	var discovered *Occurrence
	for i := range occurrences {
		if occurrences[i].Discovered {
			discovered = &occurrences[i]
			break
		}
	}
	require.NotNil(t, discovered)
	assert.False(t, discovered.Mate)
	assert.Equal(t, "Be4h7", discovered.MovedPiece)
	assert.Equal(t, "Re1", discovered.Attacker)
	assert.Equal(t, "qe8", discovered.Target)
}

func TestAttackDiscoveredCheckRow(t *testing.T) {
	// Bishop clears the e-file; the rook on e1 checks the king on e8.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(6, "4k3/8/8/8/4B3/8/8/4RK2 w - - 0 1", true, ""),
		position(6, "4k3/7B/8/8/8/8/8/4RK2 b - - 1 1", false, "Bh7+"),
	})
	require.NoError(t, err)

	var discoveredCheck *Occurrence
	for i := range occurrences {
		occ := &occurrences[i]
		if occ.Discovered && isKingTarget(occ.Target) {
			discoveredCheck = occ
			break
		}
	}
	require.NotNil(t, discoveredCheck)
	assert.Equal(t, byte('k'), discoveredCheck.Target[0])
	assert.Equal(t, byte('R'), discoveredCheck.Attacker[0])
	assert.NotEqual(t, discoveredCheck.Attacker, discoveredCheck.MovedPiece)
}

func TestAttackScholarsMateFlagsKingRow(t *testing.T) {
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(4, "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5Q2/PPPP1PPP/RNB1K1NR w KQkq - 4 4", true, ""),
		position(4, "r1bqkb1r/ppppQppp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4", false, "Qxf7#"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, occurrences)

	found := false
	for _, occ := range occurrences {
		if isKingTarget(occ.Target) && occ.Mate {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAttackNoSignificantAttack(t *testing.T) {
	// Pawn push attacking nothing of value.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(1, "r1bqkbnr/pppppppp/2n5/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", true, ""),
		position(1, "r1bqkbnr/pppppppp/2n5/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", false, "e4"),
	})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestAttackSkipsCastlingDirect(t *testing.T) {
	// Castling moves two pieces; only discovered lines are considered.
	d := &AttackDetector{}
	occurrences, err := d.Detect([]board.Position{
		position(5, "4k3/8/8/8/8/8/8/4K2R w K - 0 5", true, ""),
		position(5, "4k3/8/8/8/8/8/8/5RK1 b - - 1 5", false, "O-O"),
	})
	require.NoError(t, err)
	for _, occ := range occurrences {
		assert.True(t, occ.Discovered)
	}
}

func TestAttackTooFewPositions(t *testing.T) {
	d := &AttackDetector{}

	occurrences, err := d.Detect(nil)
	require.NoError(t, err)
	assert.Empty(t, occurrences)

	occurrences, err = d.Detect([]board.Position{position(1, "4k3/8/8/8/8/8/8/4K3 w - - 0 1", true, "")})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestFilterSignificantKeepsKingAndQueen(t *testing.T) {
	assert.ElementsMatch(t, []string{"kd8", "qe4"}, filterSignificant([]string{"kd8", "qe4", "pa2"}))
}

func TestFilterSignificantKeepsForkedMinors(t *testing.T) {
	// Two minor-or-better targets make every such target significant.
	assert.ElementsMatch(t, []string{"rh8", "nb6"}, filterSignificant([]string{"rh8", "nb6", "pa2"}))
}

func TestFilterSignificantDropsLoneMinor(t *testing.T) {
	assert.Empty(t, filterSignificant([]string{"nb6", "pa2"}))
}
