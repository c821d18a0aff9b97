package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayEmptyMoveText(t *testing.T) {
	positions, err := Replay("")
	require.NoError(t, err)
	require.Len(t, positions, 1)

	initial := positions[0]
	assert.Equal(t, 0, initial.MoveNumber)
	assert.Equal(t, StartingFEN, initial.FEN)
	assert.True(t, initial.WhiteToMove)
	assert.Empty(t, initial.LastMove)
}

func TestReplayMoveNumbersAndSides(t *testing.T) {
	positions, err := Replay("1. e4 e5 2. Nf3 Nc6 3. Bb5")
	require.NoError(t, err)
	require.Len(t, positions, 6)

	wantMoveNumbers := []int{0, 1, 2, 2, 3, 3}
	wantWhiteToMove := []bool{true, false, true, false, true, false}
	for i := range positions {
		assert.Equal(t, wantMoveNumbers[i], positions[i].MoveNumber, "position %d", i)
		assert.Equal(t, wantWhiteToMove[i], positions[i].WhiteToMove, "position %d", i)
	}
	assert.Equal(t, "e4", positions[1].LastMove)
	assert.Equal(t, "Bb5", positions[5].LastMove)
}

func TestReplayFirstMoveFEN(t *testing.T) {
	positions, err := Replay("1. e4")
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/8/PPPPPPPP/RNBQKBNR b KQkq e3 0 1", positions[1].FEN)
}

func TestReplayStripsCommentsAndVariations(t *testing.T) {
	positions, err := Replay("1. e4 {best by test} e5 (1... c5 2. Nf3) 2. Nf3 $1 Nc6 1-0")
	require.NoError(t, err)
	assert.Len(t, positions, 5)
}

func TestReplayNoSpaceMoveNumbers(t *testing.T) {
	positions, err := Replay("1.e4 e5 2.Nf3 Nc6")
	require.NoError(t, err)
	assert.Len(t, positions, 5)
}

func TestReplayKingsideCastling(t *testing.T) {
	positions, err := Replay("1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. O-O")
	require.NoError(t, err)
	require.Len(t, positions, 8)

	fen := positions[7].FEN
	// White king on g1, rook on f1 after castling.
	assert.Contains(t, fen, "1RK1 ")
	// White has no castling rights left; black keeps both.
	assert.Contains(t, fen, " b kq ")
}

func TestReplayQueensideCastling(t *testing.T) {
	positions, err := Replay("1. d4 d5 2. Nc3 Nc6 3. Bf4 Bf5 4. Qd2 Qd7 5. O-O-O")
	require.NoError(t, err)
	require.Len(t, positions, 10)

	fen := positions[9].FEN
	// White king on c1, rook on d1 after long castling.
	assert.Contains(t, fen, "2KR")
	assert.Contains(t, fen, " b kq ")
}

func TestReplayPromotion(t *testing.T) {
	// White pawn marches up the board and promotes with capture on h8.
	positions, err := Replay("1. f4 e5 2. f5 e4 3. f6 e3 4. fxg7 exd2+ 5. Qxd2 a6 6. gxh8=Q")
	require.NoError(t, err)

	last := positions[len(positions)-1]
	placement := strings.Split(last.FEN, " ")[0]
	b := ParsePlacement(placement)
	assert.Equal(t, Queen, b[0][7]) // white queen on h8
}

func TestReplayEnPassant(t *testing.T) {
	positions, err := Replay("1. e4 a6 2. e5 d5 3. exd6")
	require.NoError(t, err)

	last := positions[len(positions)-1]
	b := PlacementFromFEN(last.FEN)
	assert.Equal(t, Pawn, b[2][3])    // white pawn on d6
	assert.Equal(t, int8(0), b[3][3]) // d5 pawn removed
}

func TestReplayFileDisambiguation(t *testing.T) {
	// Both knights can reach d4; Nxd4 resolves to the only legal one.
	positions, err := Replay("1. e4 e5 2. Nf3 Nc6 3. Nc3 Nf6 4. Nd5 Nxd5 5. exd5 Nd4 6. Nxd4")
	require.NoError(t, err)
	assert.Len(t, positions, 12)
}

func TestReplayRankDisambiguation(t *testing.T) {
	// After move 10 white has rooks on a3 and f1; R3a1 picks by rank.
	positions, err := Replay(
		"1. e4 e5 2. d3 d6 3. Nf3 Nf6 4. Nc3 Nc6 5. Be2 Be7 6. O-O O-O " +
			"7. Be3 Be6 8. Qd2 Qd7 9. a4 a5 10. Ra3 Ra6 11. R3a1")
	require.NoError(t, err)
	assert.Len(t, positions, 22)
}

func TestReplayBothSidesCastle(t *testing.T) {
	positions, err := Replay(
		"1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. Re1 b5 7. Bb3 d6 8. c3 O-O")
	require.NoError(t, err)
	assert.Len(t, positions, 17)
}

func TestReplayIllegalMoveFails(t *testing.T) {
	_, err := Replay("1. e5")
	assert.Error(t, err)
}

func TestReplayUnknownPieceMoveFails(t *testing.T) {
	_, err := Replay("1. e4 e5 2. Ne5")
	assert.Error(t, err)
}

func TestReplayScholarsMate(t *testing.T) {
	positions, err := Replay("1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0")
	require.NoError(t, err)
	require.Len(t, positions, 9)

	last := positions[len(positions)-1]
	assert.Equal(t, "Qxf7#", last.LastMove)
	assert.Equal(t, 4, last.MoveNumber)
	assert.True(t, last.WhiteToMove)

	b := PlacementFromFEN(last.FEN)
	assert.Equal(t, Queen, b[1][5]) // white queen on f7
	kr, kc := b.FindKing(false)
	assert.True(t, b.CountAttackers(kr, kc, true) > 0)
}
