package motifs

import (
	"fmt"
	"strings"

	"github.com/freeeve/chessindex/internal/board"
)

// AttackDetector emits the ATTACK occurrence stream, one row per significant
// attack created by each move:
//
//   - the attacked piece is a king or a queen, or
//   - the same attacker hits 2+ pieces of minor value or better at this ply
//     (a fork), or
//   - a discovered attack is revealed (all targets).
//
// Direct attacks carry attacker == movedPiece; discovered rows carry the
// from/to form of the moved piece and Discovered = true.
type AttackDetector struct{}

func (d *AttackDetector) Motif() Motif { return Attack }

func (d *AttackDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	var result []Occurrence

	for i := 1; i < len(positions); i++ {
		before := positions[i-1]
		after := positions[i]
		move := after.LastMove
		if move == "" {
			continue
		}

		moverIsWhite := !after.WhiteToMove
		isCheckmate := strings.HasSuffix(move, "#")

		ply, side := plyFor(after)
		if ply <= 0 {
			continue
		}

		boardBefore := board.PlacementFromFEN(before.FEN)
		boardAfter := board.PlacementFromFEN(after.FEN)

		// Direct attacks by the piece that just moved. Castling moves two
		// pieces and is skipped.
		if !strings.HasPrefix(move, "O-") {
			result = append(result, findDirectAttacks(
				&boardBefore, &boardAfter, moverIsWhite, after.MoveNumber, ply, side, isCheckmate)...)
		}

		// All discovered attacks revealed by the move.
		for _, ra := range findDiscoveredAttacks(&boardBefore, &boardAfter, moverIsWhite) {
			mate := isCheckmate && isKingTarget(ra.Target)
			desc := fmt.Sprintf("Discovered attack at move %d", after.MoveNumber)
			result = append(result, attackOccurrence(
				ply, after.MoveNumber, side, desc, ra.MovedPiece, ra.Attacker, ra.Target, true, mate))
		}
	}
	return result, nil
}

func findDirectAttacks(before, after *board.Board, moverIsWhite bool, moveNumber, ply int, side string, isCheckmate bool) []Occurrence {
	if _, _, ok := findVacatedSquare(before, after, moverIsWhite); !ok {
		return nil
	}

	dr, dc, ok := findDestSquare(before, after, moverIsWhite)
	if !ok {
		return nil
	}

	pieceAtDest := after[dr][dc]
	if pieceAtDest == 0 {
		return nil
	}

	// Direct attack: moved piece and attacker are the same, named at the
	// destination square.
	attacker := board.PieceNotation(pieceAtDest, dr, dc)

	var allTargets []string
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			ep := after[r][c]
			if ep == 0 || (ep > 0) == moverIsWhite {
				continue
			}
			if after.PieceAttacks(dr, dc, r, c) {
				allTargets = append(allTargets, board.PieceNotation(ep, r, c))
			}
		}
	}

	var result []Occurrence
	for _, t := range filterSignificant(allTargets) {
		mate := isCheckmate && isKingTarget(t)
		desc := fmt.Sprintf("Attack at move %d", moveNumber)
		result = append(result, attackOccurrence(
			ply, moveNumber, side, desc, attacker, attacker, t, false, mate))
	}
	return result
}

// findVacatedSquare returns the first square a mover's piece left (occupied
// before, empty after).
func findVacatedSquare(before, after *board.Board, moverIsWhite bool) (int, int, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			pb := before[r][c]
			if pb != 0 && (pb > 0) == moverIsWhite && after[r][c] == 0 {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// findDestSquare returns the first square where a mover's piece appeared that
// wasn't a mover's piece before (was empty or held an enemy piece).
func findDestSquare(before, after *board.Board, moverIsWhite bool) (int, int, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			pa := after[r][c]
			pb := before[r][c]
			if pa != 0 && (pa > 0) == moverIsWhite && (pb == 0 || (pb > 0) != moverIsWhite) {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// filterSignificant keeps king/queen targets always, and all targets of minor
// value or better when the attacker forks two or more of them.
func filterSignificant(targets []string) []string {
	var result []string
	for _, t := range targets {
		if isKingOrQueenTarget(t) {
			result = append(result, t)
		}
	}

	valuable := 0
	for _, t := range targets {
		if letterValue(t[0]) >= 2 {
			valuable++
		}
	}
	if valuable >= 2 {
		for _, t := range targets {
			if letterValue(t[0]) >= 2 && !contains(result, t) {
				result = append(result, t)
			}
		}
	}
	return result
}

func letterValue(letter byte) int {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	switch letter {
	case 'P':
		return 1
	case 'N':
		return 2
	case 'B':
		return 3
	case 'R':
		return 4
	case 'Q':
		return 5
	case 'K':
		return 6
	default:
		return 0
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
