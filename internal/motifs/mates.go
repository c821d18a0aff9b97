package motifs

import (
	"fmt"
	"strings"

	"github.com/freeeve/chessindex/internal/board"
)

// BackRankMateDetector flags checkmates where the mated king sits on its back
// rank with at least one forward escape square blocked by its own piece.
type BackRankMateDetector struct{}

func (d *BackRankMateDetector) Motif() Motif { return BackRankMate }

func (d *BackRankMateDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		if !strings.HasSuffix(ctx.LastMove, "#") {
			continue
		}

		b := board.PlacementFromFEN(ctx.FEN)

		// The checkmated side is the side now to move.
		loserIsWhite := ctx.WhiteToMove
		backRankRow := 0
		escapeRankRow := 1
		if loserIsWhite {
			backRankRow = 7
			escapeRankRow = 6
		}

		kr, kc := b.FindKing(loserIsWhite)
		if kr == -1 || kr != backRankRow {
			continue
		}

		blockedByOwnPiece := false
		for dc := -1; dc <= 1; dc++ {
			ec := kc + dc
			if ec < 0 || ec > 7 {
				continue
			}
			piece := b[escapeRankRow][ec]
			if piece != 0 && (piece > 0) == loserIsWhite {
				blockedByOwnPiece = true
				break
			}
		}
		if !blockedByOwnPiece {
			continue
		}

		desc := fmt.Sprintf("Back rank mate at move %d", ctx.MoveNumber)
		if occ, ok := occurrenceAt(ctx, desc); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

// SmotheredMateDetector flags knight checkmates where every square adjacent
// to the mated king is off-board or occupied by the king's own pieces.
type SmotheredMateDetector struct{}

func (d *SmotheredMateDetector) Motif() Motif { return SmotheredMate }

func (d *SmotheredMateDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		if !strings.HasSuffix(ctx.LastMove, "#") {
			continue
		}

		b := board.PlacementFromFEN(ctx.FEN)
		loserIsWhite := ctx.WhiteToMove
		kr, kc := b.FindKing(loserIsWhite)
		if kr == -1 {
			continue
		}

		knightPiece := board.Knight
		if loserIsWhite {
			knightPiece = -board.Knight
		}
		matedByKnight := false
		for r := 0; r < 8 && !matedByKnight; r++ {
			for c := 0; c < 8; c++ {
				if b[r][c] == knightPiece && b.PieceAttacks(r, c, kr, kc) {
					matedByKnight = true
					break
				}
			}
		}
		if !matedByKnight || !isSmothered(&b, kr, kc, loserIsWhite) {
			continue
		}

		desc := fmt.Sprintf("Smothered mate at move %d", ctx.MoveNumber)
		if occ, ok := occurrenceAt(ctx, desc); ok {
			occurrences = append(occurrences, occ)
		}
	}
	return occurrences, nil
}

func isSmothered(b *board.Board, kr, kc int, kingIsWhite bool) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			nr, nc := kr+dr, kc+dc
			if nr < 0 || nr >= 8 || nc < 0 || nc >= 8 {
				continue // off-board counts as blocked
			}
			piece := b[nr][nc]
			if piece == 0 || (piece > 0) != kingIsWhite {
				return false
			}
		}
	}
	return true
}
