package motifs

import (
	"fmt"
	"strings"

	"github.com/freeeve/chessindex/internal/board"
)

// RevealedAttack is one attack line opened up by a piece moving off it.
// MovedPiece is the compact from/to form "Be4h7".
type RevealedAttack struct {
	MovedPiece string
	Attacker   string
	Target     string
}

// DiscoveredAttackDetector finds attacks revealed when a piece vacates a
// square on a friendly slider's line.
type DiscoveredAttackDetector struct{}

func (d *DiscoveredAttackDetector) Motif() Motif { return DiscoveredAttack }

func (d *DiscoveredAttackDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	var occurrences []Occurrence
	for i := 1; i < len(positions); i++ {
		before := positions[i-1]
		after := positions[i]

		boardBefore := board.PlacementFromFEN(before.FEN)
		boardAfter := board.PlacementFromFEN(after.FEN)
		moverIsWhite := !after.WhiteToMove

		for _, ra := range findDiscoveredAttacks(&boardBefore, &boardAfter, moverIsWhite) {
			desc := fmt.Sprintf("Discovered attack at move %d", after.MoveNumber)
			if occ, ok := discoveredOccurrence(after, desc, arrowForm(ra.MovedPiece), ra.Attacker, ra.Target); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

// DiscoveredCheckDetector narrows discovered attacks to those whose revealed
// target is the enemy king, on moves annotated as checking.
type DiscoveredCheckDetector struct{}

func (d *DiscoveredCheckDetector) Motif() Motif { return DiscoveredCheck }

func (d *DiscoveredCheckDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	var occurrences []Occurrence
	for i := 1; i < len(positions); i++ {
		before := positions[i-1]
		after := positions[i]

		move := after.LastMove
		if move == "" || (!strings.HasSuffix(move, "+") && !strings.HasSuffix(move, "#")) {
			continue
		}

		boardBefore := board.PlacementFromFEN(before.FEN)
		boardAfter := board.PlacementFromFEN(after.FEN)
		moverIsWhite := !after.WhiteToMove

		for _, ra := range findDiscoveredAttacks(&boardBefore, &boardAfter, moverIsWhite) {
			if !isKingTarget(ra.Target) {
				continue
			}
			desc := fmt.Sprintf("Discovered check at move %d", after.MoveNumber)
			if occ, ok := discoveredOccurrence(after, desc, arrowForm(ra.MovedPiece), ra.Attacker, ra.Target); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

// findDiscoveredAttacks compares a before/after board pair: for every square
// the mover vacated, scan backward along each line for a friendly slider,
// then forward for the first piece beyond the vacated square. An enemy piece
// there is a revealed attack.
func findDiscoveredAttacks(before, after *board.Board, moverIsWhite bool) []RevealedAttack {
	var result []RevealedAttack
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			pieceBefore := before[r][c]
			if pieceBefore == 0 || after[r][c] != 0 {
				continue
			}
			if (pieceBefore > 0) != moverIsWhite {
				continue
			}

			destR, destC, haveDest := findDestinationCoords(before, after, pieceBefore, r, c)
			destSquare := "??"
			if haveDest {
				destSquare = board.SquareName(destR, destC)
			}
			movedPiece := board.PieceLetter(pieceBefore) + board.SquareName(r, c) + destSquare
			result = append(result, revealsAttacks(after, r, c, moverIsWhite, movedPiece, destR, destC, haveDest)...)
		}
	}
	return result
}

func revealsAttacks(b *board.Board, vacatedR, vacatedC int, moverIsWhite bool, movedPiece string, destR, destC int, haveDest bool) []RevealedAttack {
	var attacks []RevealedAttack

	for _, dir := range allDirections {
		br, bc := vacatedR-dir[0], vacatedC-dir[1]
		for br >= 0 && br < 8 && bc >= 0 && bc < 8 {
			piece := b[br][bc]
			if piece != 0 {
				// The moved piece at its destination is not a revealed attacker.
				if haveDest && br == destR && bc == destC {
					break
				}
				if (piece > 0) == moverIsWhite && isSlidingAttacker(piece, dir[0], dir[1]) {
					fr, fc := vacatedR+dir[0], vacatedC+dir[1]
					for fr >= 0 && fr < 8 && fc >= 0 && fc < 8 {
						targetPiece := b[fr][fc]
						if targetPiece != 0 {
							if (targetPiece > 0) != moverIsWhite {
								attacks = append(attacks, RevealedAttack{
									MovedPiece: movedPiece,
									Attacker:   board.PieceNotation(piece, br, bc),
									Target:     board.PieceNotation(targetPiece, fr, fc),
								})
							}
							break
						}
						fr += dir[0]
						fc += dir[1]
					}
				}
				break
			}
			br -= dir[0]
			bc -= dir[1]
		}
	}
	return attacks
}

// findDestinationCoords locates where the moved piece landed: same piece code
// on a square that didn't hold it before. Promotions have no destination.
func findDestinationCoords(before, after *board.Board, piece int8, fromR, fromC int) (int, int, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if r == fromR && c == fromC {
				continue
			}
			if after[r][c] == piece && before[r][c] != piece {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// arrowForm rewrites "Be4h7" as "Be4->h7" for motif occurrence rows.
func arrowForm(movedPiece string) string {
	if len(movedPiece) < 2 {
		return movedPiece
	}
	cut := len(movedPiece) - 2
	return movedPiece[:cut] + "->" + movedPiece[cut:]
}

func isKingTarget(target string) bool {
	return target != "" && (target[0] == 'K' || target[0] == 'k')
}

func isKingOrQueenTarget(target string) bool {
	if target == "" {
		return false
	}
	switch target[0] {
	case 'K', 'k', 'Q', 'q':
		return true
	}
	return false
}
