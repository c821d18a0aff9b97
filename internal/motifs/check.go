package motifs

import (
	"fmt"
	"strings"

	"github.com/freeeve/chessindex/internal/board"
)

// CheckDetector flags every checking move, checkmates included. The attacker
// is the first mover piece found attacking the enemy king.
type CheckDetector struct{}

func (d *CheckDetector) Motif() Motif { return Check }

func (d *CheckDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		move := ctx.LastMove
		if move == "" || (!strings.HasSuffix(move, "+") && !strings.HasSuffix(move, "#")) {
			continue
		}
		desc := fmt.Sprintf("Check at move %d", ctx.MoveNumber)
		if occ, ok := checkOccurrence(ctx, desc, false); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

// CheckmateDetector flags mating moves only.
type CheckmateDetector struct{}

func (d *CheckmateDetector) Motif() Motif { return Checkmate }

func (d *CheckmateDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		if !strings.HasSuffix(ctx.LastMove, "#") {
			continue
		}
		desc := fmt.Sprintf("Checkmate at move %d", ctx.MoveNumber)
		if occ, ok := checkOccurrence(ctx, desc, true); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

// checkOccurrence resolves attacker and target from the board. The mover is
// the side that just played.
func checkOccurrence(ctx board.Position, description string, mate bool) (Occurrence, bool) {
	b := board.PlacementFromFEN(ctx.FEN)
	moverIsWhite := !ctx.WhiteToMove

	ar, ac := b.FindCheckingPiece(moverIsWhite)
	if ar == -1 {
		return Occurrence{}, false
	}
	kr, kc := b.FindKing(!moverIsWhite)

	occ, ok := occurrenceWithPiece(ctx, description,
		board.PieceNotation(b[ar][ac], ar, ac),
		board.PieceNotation(b[kr][kc], kr, kc))
	if !ok {
		return Occurrence{}, false
	}
	occ.Mate = mate
	return occ, true
}

// DoubleCheckDetector flags checking moves where two or more mover pieces
// attack the enemy king at once.
type DoubleCheckDetector struct{}

func (d *DoubleCheckDetector) Motif() Motif { return DoubleCheck }

func (d *DoubleCheckDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		move := ctx.LastMove
		if move == "" || (!strings.HasSuffix(move, "+") && !strings.HasSuffix(move, "#")) {
			continue
		}

		b := board.PlacementFromFEN(ctx.FEN)
		moverIsWhite := !ctx.WhiteToMove
		kr, kc := b.FindKing(!moverIsWhite)
		if kr == -1 {
			continue
		}
		if b.CountAttackers(kr, kc, moverIsWhite) < 2 {
			continue
		}

		desc := fmt.Sprintf("Double check at move %d", ctx.MoveNumber)
		if occ, ok := occurrenceAt(ctx, desc); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}
