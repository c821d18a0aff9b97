package motifs

import (
	"fmt"

	"github.com/freeeve/chessindex/internal/board"
)

// ZugzwangDetector is a positional heuristic: flag endgame positions
// (8 or fewer pieces, no queens) where the side to move has all pawns
// blocked and no non-pawn, non-king piece can reach an empty square.
// True zugzwang needs engine evaluation; this captures the common
// king-and-pawn patterns with few false positives.
type ZugzwangDetector struct{}

func (d *ZugzwangDetector) Motif() Motif { return Zugzwang }

func (d *ZugzwangDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		if ctx.LastMove == "" {
			continue
		}

		b := board.PlacementFromFEN(ctx.FEN)
		if !isEndgame(&b) {
			continue
		}
		if !isLikelyZugzwang(&b, ctx.WhiteToMove) {
			continue
		}

		desc := fmt.Sprintf("Zugzwang (heuristic) at move %d", ctx.MoveNumber)
		if occ, ok := occurrenceAt(ctx, desc); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

func isEndgame(b *board.Board) bool {
	total := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece == 0 {
				continue
			}
			total++
			if piece == board.Queen || piece == -board.Queen {
				return false
			}
		}
	}
	return total <= 8
}

func isLikelyZugzwang(b *board.Board, toMove bool) bool {
	pawnDir := 1
	if toMove {
		pawnDir = -1
	}

	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece == 0 || (piece > 0) != toMove {
				continue
			}

			abs := piece
			if abs < 0 {
				abs = -abs
			}
			switch abs {
			case board.King:
				continue
			case board.Pawn:
				nr := r + pawnDir
				if nr >= 0 && nr < 8 && b[nr][c] == 0 {
					return false // pawn can advance
				}
			default:
				if canReachEmptySquare(b, r, c, abs) {
					return false
				}
			}
		}
	}
	return true
}

func canReachEmptySquare(b *board.Board, r, c int, abs int8) bool {
	switch abs {
	case board.Knight:
		offsets := [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
		for _, off := range offsets {
			nr, nc := r+off[0], c+off[1]
			if nr >= 0 && nr < 8 && nc >= 0 && nc < 8 && b[nr][nc] == 0 {
				return true
			}
		}
	case board.Bishop:
		return canStepToEmpty(b, r, c, [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}})
	case board.Rook:
		return canStepToEmpty(b, r, c, [][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}})
	}
	return false
}

func canStepToEmpty(b *board.Board, r, c int, dirs [][2]int) bool {
	for _, dir := range dirs {
		nr, nc := r+dir[0], c+dir[1]
		if nr >= 0 && nr < 8 && nc >= 0 && nc < 8 && b[nr][nc] == 0 {
			return true
		}
	}
	return false
}
