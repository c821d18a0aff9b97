// Package board implements the 8x8 board model, FEN handling and SAN replay.
//
// Coordinates follow the array convention board[0][0] = a8 (rank 8, file a)
// and board[7][7] = h1 (rank 1, file h). Piece codes: P=1, N=2, B=3, R=4,
// Q=5, K=6; negative for black pieces.
package board

import "strings"

// Piece codes. Negate for black.
const (
	Empty  int8 = 0
	Pawn   int8 = 1
	Knight int8 = 2
	Bishop int8 = 3
	Rook   int8 = 4
	Queen  int8 = 5
	King   int8 = 6
)

// Board is the piece placement, board[row][col] with row 0 = rank 8.
type Board [8][8]int8

// Position is one replayed position context. MoveNumber is the FEN fullmove
// number of the position (0 for the pre-game position). LastMove is the SAN
// of the move that produced this position, "" for the initial position.
type Position struct {
	MoveNumber  int
	FEN         string
	WhiteToMove bool
	LastMove    string
}

// PieceValue maps a FEN piece letter to its signed piece code.
func PieceValue(ch byte) int8 {
	switch ch {
	case 'K':
		return 6
	case 'Q':
		return 5
	case 'R':
		return 4
	case 'B':
		return 3
	case 'N':
		return 2
	case 'P':
		return 1
	case 'k':
		return -6
	case 'q':
		return -5
	case 'r':
		return -4
	case 'b':
		return -3
	case 'n':
		return -2
	case 'p':
		return -1
	default:
		return 0
	}
}

// ParsePlacement converts the placement field of a FEN string into a Board.
func ParsePlacement(placement string) Board {
	var b Board
	ranks := strings.Split(placement, "/")
	for r := 0; r < 8 && r < len(ranks); r++ {
		c := 0
		for i := 0; i < len(ranks[r]) && c < 8; i++ {
			ch := ranks[r][i]
			if ch >= '1' && ch <= '8' {
				c += int(ch - '0')
			} else {
				b[r][c] = PieceValue(ch)
				c++
			}
		}
	}
	return b
}

// PlacementFromFEN parses the full FEN and returns just the placement board.
func PlacementFromFEN(fen string) Board {
	placement, _, _ := strings.Cut(fen, " ")
	return ParsePlacement(placement)
}

// SquareName converts board coordinates to the algebraic square name:
// (7, 4) -> "e1", (0, 0) -> "a8".
func SquareName(row, col int) string {
	return string([]byte{byte('a' + col), byte('8' - row)})
}

// PieceLetter returns the single-letter notation for a piece, uppercase for
// white and lowercase for black. Pawns are "P"/"p".
func PieceLetter(piece int8) string {
	letters := [...]byte{'?', 'P', 'N', 'B', 'R', 'Q', 'K'}
	abs := piece
	if abs < 0 {
		abs = -abs
	}
	if abs < 1 || abs > 6 {
		return "?"
	}
	l := letters[abs]
	if piece < 0 {
		l += 'a' - 'A'
	}
	return string(l)
}

// PieceNotation returns letter plus square, e.g. PieceNotation(5, 7, 4) ->
// "Qe1" and PieceNotation(-6, 0, 4) -> "ke8".
func PieceNotation(piece int8, row, col int) string {
	return PieceLetter(piece) + SquareName(row, col)
}

// PieceAttacks reports whether the piece at (pieceRow, pieceCol) attacks the
// square (targetRow, targetCol), with path clearing for sliding pieces.
func (b *Board) PieceAttacks(pieceRow, pieceCol, targetRow, targetCol int) bool {
	piece := b[pieceRow][pieceCol]
	if piece == 0 {
		return false
	}
	pieceType := piece
	if pieceType < 0 {
		pieceType = -pieceType
	}
	pieceIsWhite := piece > 0

	rowDelta := targetRow - pieceRow
	colDelta := targetCol - pieceCol

	switch pieceType {
	case Pawn:
		pawnDir := 1
		if pieceIsWhite {
			pawnDir = -1
		}
		return rowDelta == pawnDir && (colDelta == 1 || colDelta == -1)
	case Knight:
		ar, ac := abs(rowDelta), abs(colDelta)
		return (ar == 2 && ac == 1) || (ar == 1 && ac == 2)
	case Bishop:
		if abs(rowDelta) != abs(colDelta) || rowDelta == 0 {
			return false
		}
		return b.IsPathClear(pieceRow, pieceCol, targetRow, targetCol)
	case Rook:
		if rowDelta != 0 && colDelta != 0 {
			return false
		}
		return b.IsPathClear(pieceRow, pieceCol, targetRow, targetCol)
	case Queen:
		if rowDelta != 0 && colDelta != 0 && abs(rowDelta) != abs(colDelta) {
			return false
		}
		return b.IsPathClear(pieceRow, pieceCol, targetRow, targetCol)
	case King:
		return abs(rowDelta) <= 1 && abs(colDelta) <= 1 && (rowDelta != 0 || colDelta != 0)
	default:
		return false
	}
}

// IsPathClear reports whether all squares strictly between the two squares
// are empty.
func (b *Board) IsPathClear(fromRow, fromCol, toRow, toCol int) bool {
	rowStep := sign(toRow - fromRow)
	colStep := sign(toCol - fromCol)
	row, col := fromRow+rowStep, fromCol+colStep
	for row != toRow || col != toCol {
		if b[row][col] != 0 {
			return false
		}
		row += rowStep
		col += colStep
	}
	return true
}

// CountAttackers counts how many pieces of the given color attack the target
// square. Any piece standing on the target square itself is ignored.
func (b *Board) CountAttackers(targetRow, targetCol int, attackerIsWhite bool) int {
	count := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if row == targetRow && col == targetCol {
				continue
			}
			piece := b[row][col]
			if piece == 0 || (piece > 0) != attackerIsWhite {
				continue
			}
			if b.PieceAttacks(row, col, targetRow, targetCol) {
				count++
			}
		}
	}
	return count
}

// FindKing returns the coordinates of the king of the given color, or
// (-1, -1) if absent.
func (b *Board) FindKing(kingIsWhite bool) (int, int) {
	kingPiece := King
	if !kingIsWhite {
		kingPiece = -King
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b[r][c] == kingPiece {
				return r, c
			}
		}
	}
	return -1, -1
}

// FindCheckingPiece scans the mover's pieces and returns the first one
// attacking the enemy king, or (-1, -1) if none.
func (b *Board) FindCheckingPiece(moverIsWhite bool) (int, int) {
	kr, kc := b.FindKing(!moverIsWhite)
	if kr == -1 {
		return -1, -1
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece == 0 || (piece > 0) != moverIsWhite {
				continue
			}
			if b.PieceAttacks(r, c, kr, kc) {
				return r, c
			}
		}
	}
	return -1, -1
}

// ParsePromotionDestination parses the destination square from a promotion
// move like "e8=Q+" or "axb8=N#". Returns (-1, -1) on parse failure.
func ParsePromotionDestination(move string) (int, int) {
	eqIdx := strings.IndexByte(move, '=')
	if eqIdx < 2 {
		return -1, -1
	}
	fileChar := move[eqIdx-2]
	rankChar := move[eqIdx-1]
	if fileChar < 'a' || fileChar > 'h' || rankChar < '1' || rankChar > '8' {
		return -1, -1
	}
	return 8 - int(rankChar-'0'), int(fileChar - 'a')
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
