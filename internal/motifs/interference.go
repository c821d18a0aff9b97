package motifs

import (
	"fmt"

	"github.com/freeeve/chessindex/internal/board"
)

// InterferenceDetector flags moves that place a piece on a square an enemy
// slider previously attacked through, cutting the line.
type InterferenceDetector struct{}

func (d *InterferenceDetector) Motif() Motif { return Interference }

func (d *InterferenceDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	var occurrences []Occurrence
	for i := 1; i < len(positions); i++ {
		before := positions[i-1]
		after := positions[i]

		boardBefore := board.PlacementFromFEN(before.FEN)
		boardAfter := board.PlacementFromFEN(after.FEN)
		moverIsWhite := !after.WhiteToMove

		if hasInterference(&boardBefore, &boardAfter, moverIsWhite) {
			desc := fmt.Sprintf("Interference at move %d", after.MoveNumber)
			if occ, ok := occurrenceAt(after, desc); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

func hasInterference(before, after *board.Board, moverIsWhite bool) bool {
	// Destination square: empty before, mover's piece after.
	for dr := 0; dr < 8; dr++ {
		for dc := 0; dc < 8; dc++ {
			if before[dr][dc] != 0 {
				continue
			}
			pieceAfter := after[dr][dc]
			if pieceAfter == 0 || (pieceAfter > 0) != moverIsWhite {
				continue
			}
			if blocksEnemySlidingLine(before, dr, dc, moverIsWhite) {
				return true
			}
		}
	}
	return false
}

// blocksEnemySlidingLine reports whether an enemy slider attacked through the
// destination square in the before-position, with the line extending at least
// one square beyond it.
func blocksEnemySlidingLine(before *board.Board, destR, destC int, moverIsWhite bool) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := before[r][c]
			if piece == 0 || (piece > 0) == moverIsWhite {
				continue
			}
			abs := piece
			if abs < 0 {
				abs = -abs
			}
			if abs != board.Bishop && abs != board.Rook && abs != board.Queen {
				continue
			}
			if before.PieceAttacks(r, c, destR, destC) && lineExtendsThrough(r, c, destR, destC) {
				return true
			}
		}
	}
	return false
}

func lineExtendsThrough(pr, pc, destR, destC int) bool {
	dr := sign(destR - pr)
	dc := sign(destC - pc)
	nr, nc := destR+dr, destC+dc
	return nr >= 0 && nr < 8 && nc >= 0 && nc < 8
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
