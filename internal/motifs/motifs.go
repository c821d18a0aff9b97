// Package motifs detects tactical motifs over replayed position sequences.
package motifs

import "github.com/freeeve/chessindex/internal/board"

// Motif identifies a tactical motif. Values match the motif column in the
// occurrence store.
type Motif string

const (
	Pin                   Motif = "PIN"
	CrossPin              Motif = "CROSS_PIN"
	Fork                  Motif = "FORK"
	Skewer                Motif = "SKEWER"
	Attack                Motif = "ATTACK"
	DiscoveredAttack      Motif = "DISCOVERED_ATTACK"
	DiscoveredCheck       Motif = "DISCOVERED_CHECK"
	Check                 Motif = "CHECK"
	Checkmate             Motif = "CHECKMATE"
	Promotion             Motif = "PROMOTION"
	PromotionWithCheck    Motif = "PROMOTION_WITH_CHECK"
	PromotionWithCheckmate Motif = "PROMOTION_WITH_CHECKMATE"
	BackRankMate          Motif = "BACK_RANK_MATE"
	SmotheredMate         Motif = "SMOTHERED_MATE"
	Sacrifice             Motif = "SACRIFICE"
	Zugzwang              Motif = "ZUGZWANG"
	DoubleCheck           Motif = "DOUBLE_CHECK"
	Interference          Motif = "INTERFERENCE"
	OverloadedPiece       Motif = "OVERLOADED_PIECE"
)

// Detector finds all occurrences of one motif in a position sequence.
// Sequences with fewer than two positions (no moves played) yield nothing.
type Detector interface {
	Motif() Motif
	Detect(positions []board.Position) ([]Occurrence, error)
}

// DefaultDetectors returns the full detector set run during extraction.
// The ATTACK stream is produced separately by AttackDetector.
func DefaultDetectors() []Detector {
	return []Detector{
		&PinDetector{},
		&CrossPinDetector{},
		&SkewerDetector{},
		&CheckDetector{},
		&CheckmateDetector{},
		&DoubleCheckDetector{},
		&DiscoveredAttackDetector{},
		&DiscoveredCheckDetector{},
		&PromotionDetector{},
		&PromotionWithCheckDetector{},
		&PromotionWithCheckmateDetector{},
		&BackRankMateDetector{},
		&SmotheredMateDetector{},
		&SacrificeDetector{},
		&ZugzwangDetector{},
		&InterferenceDetector{},
		&OverloadedPieceDetector{},
	}
}

var allDirections = [8][2]int{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// isSlidingAttacker reports whether the piece slides along the direction:
// queens on any line, bishops on diagonals, rooks on straights.
func isSlidingAttacker(piece int8, dr, dc int) bool {
	abs := piece
	if abs < 0 {
		abs = -abs
	}
	diagonal := dr != 0 && dc != 0
	straight := dr == 0 || dc == 0
	switch abs {
	case board.Queen:
		return true
	case board.Bishop:
		return diagonal
	case board.Rook:
		return straight
	default:
		return false
	}
}
