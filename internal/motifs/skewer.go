package motifs

import (
	"fmt"

	"github.com/freeeve/chessindex/internal/board"
)

// SkewerDetector finds the inverse of a pin: an enemy line where the more
// valuable piece stands in front and a lesser (but non-pawn) piece behind it
// falls when the front piece moves.
type SkewerDetector struct{}

func (d *SkewerDetector) Motif() Motif { return Skewer }

func (d *SkewerDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		b := board.PlacementFromFEN(ctx.FEN)
		attackerIsWhite := !ctx.WhiteToMove

		for _, sk := range findSkewers(&b, attackerIsWhite) {
			desc := fmt.Sprintf("Skewer detected at move %d", ctx.MoveNumber)
			attacker := board.PieceNotation(b[sk.attackerRow][sk.attackerCol], sk.attackerRow, sk.attackerCol)
			target := board.PieceNotation(b[sk.frontRow][sk.frontCol], sk.frontRow, sk.frontCol)
			if occ, ok := occurrenceWithPiece(ctx, desc, attacker, target); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

type foundSkewer struct {
	attackerRow, attackerCol int
	frontRow, frontCol       int
}

func findSkewers(b *board.Board, attackerIsWhite bool) []foundSkewer {
	var result []foundSkewer
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece == 0 || (piece > 0) != attackerIsWhite {
				continue
			}
			abs := piece
			if abs < 0 {
				abs = -abs
			}
			if abs != board.Bishop && abs != board.Rook && abs != board.Queen {
				continue
			}
			for _, dir := range allDirections {
				if !isSlidingAttacker(piece, dir[0], dir[1]) {
					continue
				}
				if fr, fc, ok := skewerAlongRay(b, r, c, dir[0], dir[1], attackerIsWhite); ok {
					result = append(result, foundSkewer{r, c, fr, fc})
				}
			}
		}
	}
	return result
}

// skewerAlongRay returns the front piece square when the first enemy piece on
// the ray is more valuable than the second and the second is worth a minor
// piece or more. Friendly pieces block the line.
func skewerAlongRay(b *board.Board, ar, ac, dr, dc int, attackerIsWhite bool) (int, int, bool) {
	firstValue := int8(-1)
	firstR, firstC := -1, -1

	r, c := ar+dr, ac+dc
	for r >= 0 && r < 8 && c >= 0 && c < 8 {
		piece := b[r][c]
		if piece != 0 {
			if (piece > 0) == attackerIsWhite {
				return 0, 0, false
			}
			value := piece
			if value < 0 {
				value = -value
			}
			if firstValue == -1 {
				firstValue = value
				firstR, firstC = r, c
			} else {
				if firstValue > value && value >= board.Knight {
					return firstR, firstC, true
				}
				return 0, 0, false
			}
		}
		r += dr
		c += dc
	}
	return 0, 0, false
}
