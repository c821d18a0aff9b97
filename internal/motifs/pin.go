package motifs

import (
	"fmt"

	"github.com/freeeve/chessindex/internal/board"
)

// PinDetector finds pieces of the side to move that shield a more valuable
// piece from an enemy slider along a single line. Pins to the king are
// ABSOLUTE; pins to a higher-valued piece are RELATIVE.
type PinDetector struct{}

func (d *PinDetector) Motif() Motif { return Pin }

func (d *PinDetector) Detect(positions []board.Position) ([]Occurrence, error) {
	if len(positions) < 2 {
		return nil, nil
	}

	var occurrences []Occurrence
	for _, ctx := range positions {
		b := board.PlacementFromFEN(ctx.FEN)
		for _, pin := range findPins(&b, ctx.WhiteToMove) {
			desc := fmt.Sprintf("Pin detected at move %d", ctx.MoveNumber)
			if occ, ok := occurrenceWithPin(ctx, desc, pin.attacker, pin.target, pin.pinType); ok {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return occurrences, nil
}

type foundPin struct {
	attacker string
	target   string
	pinType  string
}

// findPins casts rays from every enemy slider. The first piece hit must
// belong to the defender (the side to move); the piece behind it decides the
// pin: the king makes it absolute, a higher piece value makes it relative.
func findPins(b *board.Board, defenderIsWhite bool) []foundPin {
	var pins []foundPin
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece == 0 || (piece > 0) == defenderIsWhite {
				continue
			}
			for _, dir := range allDirections {
				if !isSlidingAttacker(piece, dir[0], dir[1]) {
					continue
				}
				if pin, ok := pinAlongRay(b, r, c, dir[0], dir[1], defenderIsWhite); ok {
					pin.attacker = board.PieceNotation(piece, r, c)
					pins = append(pins, pin)
				}
			}
		}
	}
	return pins
}

func pinAlongRay(b *board.Board, ar, ac, dr, dc int, defenderIsWhite bool) (foundPin, bool) {
	frontPiece := int8(0)
	frontR, frontC := -1, -1

	r, c := ar+dr, ac+dc
	for r >= 0 && r < 8 && c >= 0 && c < 8 {
		piece := b[r][c]
		if piece != 0 {
			if (piece > 0) != defenderIsWhite {
				return foundPin{}, false // attacker's own piece blocks the line
			}
			if frontPiece == 0 {
				frontPiece = piece
				frontR, frontC = r, c
			} else {
				abs := piece
				if abs < 0 {
					abs = -abs
				}
				frontAbs := frontPiece
				if frontAbs < 0 {
					frontAbs = -frontAbs
				}
				switch {
				case abs == board.King:
					return foundPin{
						target:  board.PieceNotation(frontPiece, frontR, frontC),
						pinType: PinAbsolute,
					}, true
				case abs > frontAbs:
					return foundPin{
						target:  board.PieceNotation(frontPiece, frontR, frontC),
						pinType: PinRelative,
					}, true
				default:
					return foundPin{}, false
				}
			}
		}
		r += dr
		c += dc
	}
	return foundPin{}, false
}
