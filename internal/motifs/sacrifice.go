package motifs

import (
	"fmt"

	"github.com/freeeve/chessindex/internal/board"
)

// SacrificeDetector flags moves where the capturing piece is worth more than
// the piece it captured.
type SacrificeDetector struct{}

func (d *SacrificeDetector) Motif() Motif { return Sacrifice }

func (d *SacrificeDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	var occurrences []Occurrence
	for i := 1; i < len(positions); i++ {
		before := positions[i-1]
		after := positions[i]

		boardBefore := board.PlacementFromFEN(before.FEN)
		boardAfter := board.PlacementFromFEN(after.FEN)
		moverIsWhite := !after.WhiteToMove

		if hasSacrifice(&boardBefore, &boardAfter, moverIsWhite) {
			desc := fmt.Sprintf("Sacrifice at move %d", after.MoveNumber)
			if occ, ok := occurrenceAt(after, desc); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

// hasSacrifice finds a capture square: held an enemy piece before, holds a
// mover's piece of greater value after.
func hasSacrifice(before, after *board.Board, moverIsWhite bool) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			pb := before[r][c]
			pa := after[r][c]
			if pb == 0 || pa == 0 {
				continue
			}
			if (pb > 0) == moverIsWhite || (pa > 0) != moverIsWhite {
				continue
			}

			captured := pb
			if captured < 0 {
				captured = -captured
			}
			capturer := pa
			if capturer < 0 {
				capturer = -capturer
			}
			if capturer > captured {
				return true
			}
		}
	}
	return false
}
