package motifs

import (
	"fmt"
	"strings"

	"github.com/freeeve/chessindex/internal/board"
)

// PromotionDetector flags every promotion move.
type PromotionDetector struct{}

func (d *PromotionDetector) Motif() Motif { return Promotion }

func (d *PromotionDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		if !strings.Contains(ctx.LastMove, "=") {
			continue
		}
		desc := fmt.Sprintf("Promotion at move %d", ctx.MoveNumber)
		if occ, ok := occurrenceAt(ctx, desc); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

// PromotionWithCheckDetector flags promotions where the promoted piece itself
// delivers the check. A notation-only test also fires for discovered checks
// behind the pawn, so the attack is verified on the board.
type PromotionWithCheckDetector struct{}

func (d *PromotionWithCheckDetector) Motif() Motif { return PromotionWithCheck }

func (d *PromotionWithCheckDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		move := ctx.LastMove
		if !strings.Contains(move, "=") || !strings.HasSuffix(move, "+") {
			continue
		}
		if !promotedPieceDeliversCheck(ctx) {
			continue
		}
		desc := fmt.Sprintf("Promotion with check at move %d", ctx.MoveNumber)
		if occ, ok := occurrenceAt(ctx, desc); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

// PromotionWithCheckmateDetector flags promotions that mate, with the same
// board verification as PromotionWithCheckDetector.
type PromotionWithCheckmateDetector struct{}

func (d *PromotionWithCheckmateDetector) Motif() Motif { return PromotionWithCheckmate }

func (d *PromotionWithCheckmateDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		move := ctx.LastMove
		if !strings.Contains(move, "=") || !strings.HasSuffix(move, "#") {
			continue
		}
		if !promotedPieceDeliversCheck(ctx) {
			continue
		}
		desc := fmt.Sprintf("Promotion with checkmate at move %d", ctx.MoveNumber)
		if occ, ok := occurrenceAt(ctx, desc); ok {
			occ.Mate = true
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

// promotedPieceDeliversCheck reports whether the promoted piece at its
// destination square attacks the enemy king in the after-position.
func promotedPieceDeliversCheck(ctx board.Position) bool {
	dr, dc := board.ParsePromotionDestination(ctx.LastMove)
	if dr == -1 {
		return false
	}

	b := board.PlacementFromFEN(ctx.FEN)
	moverIsWhite := !ctx.WhiteToMove

	promoted := b[dr][dc]
	if promoted == 0 || (promoted > 0) != moverIsWhite {
		return false
	}

	kr, kc := b.FindKing(!moverIsWhite)
	if kr == -1 {
		return false
	}
	return b.PieceAttacks(dr, dc, kr, kc)
}
