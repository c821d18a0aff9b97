package motifs

import "github.com/freeeve/chessindex/internal/board"

// Pin classification values.
const (
	PinAbsolute = "ABSOLUTE"
	PinRelative = "RELATIVE"
)

// Occurrence is one detected motif instance. Ply is the half-move index
// (1-based, white's first move = 1). Empty string fields persist as NULL.
type Occurrence struct {
	Ply         int    `json:"ply"`
	MoveNumber  int    `json:"moveNumber"`
	Side        string `json:"side"`
	Description string `json:"description"`
	MovedPiece  string `json:"movedPiece,omitempty"`
	Attacker    string `json:"attacker,omitempty"`
	Target      string `json:"target,omitempty"`
	Discovered  bool   `json:"isDiscovered"`
	Mate        bool   `json:"isMate"`
	PinType     string `json:"pinType,omitempty"`
}

// plyFor computes the half-move index for the mover of a position. The mover
// is the opposite of the side to move in the resulting position.
func plyFor(ctx board.Position) (ply int, side string) {
	moverIsWhite := !ctx.WhiteToMove
	if moverIsWhite {
		return 2*ctx.MoveNumber - 1, "white"
	}
	return 2 * (ctx.MoveNumber - 1), "black"
}

// occurrenceAt builds the base occurrence for a position context. Positions
// before the first real move (ply <= 0) produce no occurrence.
func occurrenceAt(ctx board.Position, description string) (Occurrence, bool) {
	ply, side := plyFor(ctx)
	if ply <= 0 {
		return Occurrence{}, false
	}
	return Occurrence{
		Ply:         ply,
		MoveNumber:  ctx.MoveNumber,
		Side:        side,
		Description: description,
	}, true
}

func occurrenceWithPiece(ctx board.Position, description, attacker, target string) (Occurrence, bool) {
	occ, ok := occurrenceAt(ctx, description)
	if !ok {
		return occ, false
	}
	occ.Attacker = attacker
	occ.Target = target
	return occ, true
}

func occurrenceWithPin(ctx board.Position, description, attacker, target, pinType string) (Occurrence, bool) {
	occ, ok := occurrenceWithPiece(ctx, description, attacker, target)
	if !ok {
		return occ, false
	}
	occ.PinType = pinType
	return occ, true
}

func discoveredOccurrence(ctx board.Position, description, movedPiece, attacker, target string) (Occurrence, bool) {
	occ, ok := occurrenceWithPiece(ctx, description, attacker, target)
	if !ok {
		return occ, false
	}
	occ.MovedPiece = movedPiece
	occ.Discovered = true
	return occ, true
}

func attackOccurrence(ply, moveNumber int, side, description, movedPiece, attacker, target string, discovered, mate bool) Occurrence {
	return Occurrence{
		Ply:         ply,
		MoveNumber:  moveNumber,
		Side:        side,
		Description: description,
		MovedPiece:  movedPiece,
		Attacker:    attacker,
		Target:      target,
		Discovered:  discovered,
		Mate:        mate,
	}
}
