package motifs

import (
	"fmt"

	"github.com/freeeve/chessindex/internal/board"
)

// OverloadedPieceDetector flags positions where one defending piece covers
// two or more friendly pieces that are each under attack. Committing the
// defender to one square loses the other.
type OverloadedPieceDetector struct{}

func (d *OverloadedPieceDetector) Motif() Motif { return OverloadedPiece }

func (d *OverloadedPieceDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		if ctx.LastMove == "" {
			continue
		}

		b := board.PlacementFromFEN(ctx.FEN)
		// After the move the attacker is the mover; the defender is on move.
		attackerIsWhite := !ctx.WhiteToMove
		defenderIsWhite := ctx.WhiteToMove

		if hasOverloadedPiece(&b, attackerIsWhite, defenderIsWhite) {
			desc := fmt.Sprintf("Overloaded piece at move %d", ctx.MoveNumber)
			if occ, ok := occurrenceAt(ctx, desc); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

func hasOverloadedPiece(b *board.Board, attackerIsWhite, defenderIsWhite bool) bool {
	// Defending-side pieces currently under attack.
	var attacked [][2]int
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece == 0 || (piece > 0) != defenderIsWhite {
				continue
			}
			if b.CountAttackers(r, c, attackerIsWhite) > 0 {
				attacked = append(attacked, [2]int{r, c})
			}
		}
	}
	if len(attacked) < 2 {
		return false
	}

	// A single defender recapturing on two or more of those squares.
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece == 0 || (piece > 0) != defenderIsWhite {
				continue
			}
			defended := 0
			for _, sq := range attacked {
				if sq[0] == r && sq[1] == c {
					continue
				}
				if b.PieceAttacks(r, c, sq[0], sq[1]) {
					defended++
				}
			}
			if defended >= 2 {
				return true
			}
		}
	}
	return false
}
