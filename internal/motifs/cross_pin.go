package motifs

import (
	"fmt"

	"github.com/freeeve/chessindex/internal/board"
)

// CrossPinDetector finds a piece pinned to its king along two different
// directions simultaneously, e.g. by a rook on a file and a bishop on a
// diagonal.
type CrossPinDetector struct{}

func (d *CrossPinDetector) Motif() Motif { return CrossPin }

func (d *CrossPinDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		b := board.PlacementFromFEN(ctx.FEN)
		if hasCrossPin(&b, ctx.WhiteToMove) {
			desc := fmt.Sprintf("Cross-pin detected at move %d", ctx.MoveNumber)
			if occ, ok := occurrenceAt(ctx, desc); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

func hasCrossPin(b *board.Board, whiteToMove bool) bool {
	kr, kc := b.FindKing(whiteToMove)
	if kr == -1 {
		return false
	}

	var pinned [][2]int
	for _, dir := range allDirections {
		if sq, ok := findPinnedPiece(b, kr, kc, dir[0], dir[1], whiteToMove); ok {
			pinned = append(pinned, sq)
		}
	}

	// Same square pinned from two directions.
	for i := 0; i < len(pinned); i++ {
		for j := i + 1; j < len(pinned); j++ {
			if pinned[i] == pinned[j] {
				return true
			}
		}
	}
	return false
}

// findPinnedPiece walks away from the king: exactly one friendly piece, then
// an enemy slider matching the direction.
func findPinnedPiece(b *board.Board, kr, kc, dr, dc int, whiteKing bool) ([2]int, bool) {
	var friendly [2]int
	haveFriendly := false

	r, c := kr+dr, kc+dc
	for r >= 0 && r < 8 && c >= 0 && c < 8 {
		piece := b[r][c]
		if piece != 0 {
			if (piece > 0) == whiteKing {
				if haveFriendly {
					return [2]int{}, false
				}
				friendly = [2]int{r, c}
				haveFriendly = true
			} else {
				if haveFriendly && isSlidingAttacker(piece, dr, dc) {
					return friendly, true
				}
				return [2]int{}, false
			}
		}
		r += dr
		c += dc
	}
	return [2]int{}, false
}
