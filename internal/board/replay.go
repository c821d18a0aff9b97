package board

import (
	"fmt"
	"strings"

	"github.com/freeeve/chessindex/internal/pgn"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Replay applies the SAN moves in movetext to the starting position and
// returns one Position per resulting board state, preceded by the initial
// position. For n moves the result has n+1 entries.
func Replay(moveText string) ([]Position, error) {
	moves, err := pgn.TokenizeMoves(moveText)
	if err != nil {
		return nil, err
	}
	return ReplayMoves(moves)
}

// ReplayMoves replays an already-tokenized SAN move list.
func ReplayMoves(moves []string) ([]Position, error) {
	st := newGameState()
	positions := make([]Position, 0, len(moves)+1)
	positions = append(positions, Position{MoveNumber: 0, FEN: st.fen(), WhiteToMove: true})

	for i, san := range moves {
		if err := st.apply(san); err != nil {
			return nil, fmt.Errorf("move %d (%s): %w", i+1, san, err)
		}
		positions = append(positions, Position{
			MoveNumber:  st.fullmove,
			FEN:         st.fen(),
			WhiteToMove: st.whiteToMove,
			LastMove:    san,
		})
	}
	return positions, nil
}

// castling rights indexes
const (
	castleWK = iota
	castleWQ
	castleBK
	castleBQ
)

type gameState struct {
	board       Board
	whiteToMove bool
	castling    [4]bool
	epRow       int
	epCol       int
	halfmove    int
	fullmove    int
}

func newGameState() *gameState {
	return &gameState{
		board:       ParsePlacement("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"),
		whiteToMove: true,
		castling:    [4]bool{true, true, true, true},
		epRow:       -1,
		epCol:       -1,
		fullmove:    1,
	}
}

func (st *gameState) fen() string {
	var b strings.Builder
	for r := 0; r < 8; r++ {
		empty := 0
		for c := 0; c < 8; c++ {
			piece := st.board[r][c]
			if piece == 0 {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteString(PieceLetter(piece))
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if r < 7 {
			b.WriteByte('/')
		}
	}

	if st.whiteToMove {
		b.WriteString(" w ")
	} else {
		b.WriteString(" b ")
	}

	rights := ""
	if st.castling[castleWK] {
		rights += "K"
	}
	if st.castling[castleWQ] {
		rights += "Q"
	}
	if st.castling[castleBK] {
		rights += "k"
	}
	if st.castling[castleBQ] {
		rights += "q"
	}
	if rights == "" {
		rights = "-"
	}
	b.WriteString(rights)
	b.WriteByte(' ')

	if st.epRow >= 0 {
		b.WriteString(SquareName(st.epRow, st.epCol))
	} else {
		b.WriteByte('-')
	}

	fmt.Fprintf(&b, " %d %d", st.halfmove, st.fullmove)
	return b.String()
}

func (st *gameState) apply(san string) error {
	base := strings.TrimRight(san, "+#")
	if base == "" {
		return fmt.Errorf("empty move")
	}

	moverIsWhite := st.whiteToMove
	var err error
	switch base {
	case "O-O":
		err = st.castle(moverIsWhite, true)
	case "O-O-O":
		err = st.castle(moverIsWhite, false)
	default:
		err = st.applyRegular(base, moverIsWhite)
	}
	if err != nil {
		return err
	}

	if !moverIsWhite {
		st.fullmove++
	}
	st.whiteToMove = !moverIsWhite
	return nil
}

func (st *gameState) castle(white, kingside bool) error {
	row := 0
	if white {
		row = 7
	}
	kc := 4
	if st.board[row][kc] != pieceFor(King, white) {
		return fmt.Errorf("king not on home square")
	}
	if kingside {
		if st.board[row][7] != pieceFor(Rook, white) {
			return fmt.Errorf("rook not on h-file")
		}
		st.board[row][4] = 0
		st.board[row][7] = 0
		st.board[row][6] = pieceFor(King, white)
		st.board[row][5] = pieceFor(Rook, white)
	} else {
		if st.board[row][0] != pieceFor(Rook, white) {
			return fmt.Errorf("rook not on a-file")
		}
		st.board[row][4] = 0
		st.board[row][0] = 0
		st.board[row][2] = pieceFor(King, white)
		st.board[row][3] = pieceFor(Rook, white)
	}
	st.clearCastlingFor(white)
	st.epRow, st.epCol = -1, -1
	st.halfmove++
	return nil
}

func (st *gameState) applyRegular(base string, white bool) error {
	promo := int8(0)
	if eq := strings.IndexByte(base, '='); eq >= 0 {
		if eq+1 >= len(base) {
			return fmt.Errorf("missing promotion piece")
		}
		promo = PieceValue(base[eq+1])
		if promo <= 0 {
			return fmt.Errorf("bad promotion piece %q", base[eq+1])
		}
		base = base[:eq]
	}

	pieceType := Pawn
	rest := base
	switch base[0] {
	case 'N', 'B', 'R', 'Q', 'K':
		pieceType = PieceValue(base[0])
		rest = base[1:]
	}

	capture := strings.ContainsRune(rest, 'x')
	rest = strings.ReplaceAll(rest, "x", "")

	if len(rest) < 2 {
		return fmt.Errorf("missing destination square")
	}
	destStr := rest[len(rest)-2:]
	disambig := rest[:len(rest)-2]

	if destStr[0] < 'a' || destStr[0] > 'h' || destStr[1] < '1' || destStr[1] > '8' {
		return fmt.Errorf("bad destination square %q", destStr)
	}
	destRow := 8 - int(destStr[1]-'0')
	destCol := int(destStr[0] - 'a')

	hintCol, hintRow := -1, -1
	for i := 0; i < len(disambig); i++ {
		ch := disambig[i]
		switch {
		case ch >= 'a' && ch <= 'h':
			hintCol = int(ch - 'a')
		case ch >= '1' && ch <= '8':
			hintRow = 8 - int(ch-'0')
		default:
			return fmt.Errorf("bad disambiguation %q", disambig)
		}
	}

	fromRow, fromCol, err := st.findOrigin(pieceType, white, destRow, destCol, capture, hintRow, hintCol)
	if err != nil {
		return err
	}

	isPawn := pieceType == Pawn
	isEnPassant := isPawn && capture && st.board[destRow][destCol] == 0

	if capture && st.board[destRow][destCol] == 0 && !isEnPassant {
		return fmt.Errorf("capture on empty square %s", destStr)
	}

	// Captured rook on its home corner removes the opponent's right.
	if capture {
		st.noteRookCaptured(destRow, destCol)
	}

	moved := st.board[fromRow][fromCol]
	st.board[fromRow][fromCol] = 0
	st.board[destRow][destCol] = moved
	if promo != 0 {
		st.board[destRow][destCol] = pieceFor(promo, white)
	}
	if isEnPassant {
		capRow := destRow + 1
		if !white {
			capRow = destRow - 1
		}
		st.board[capRow][destCol] = 0
	}

	switch pieceType {
	case King:
		st.clearCastlingFor(white)
	case Rook:
		st.noteRookMoved(fromRow, fromCol, white)
	}

	if isPawn && abs(destRow-fromRow) == 2 {
		st.epRow = (destRow + fromRow) / 2
		st.epCol = destCol
	} else {
		st.epRow, st.epCol = -1, -1
	}

	if isPawn || capture {
		st.halfmove = 0
	} else {
		st.halfmove++
	}
	return nil
}

// findOrigin locates the unique piece of the given type that can legally make
// the move. Disambiguation hints and the mover's king safety both filter the
// candidates.
func (st *gameState) findOrigin(pieceType int8, white bool, destRow, destCol int, capture bool, hintRow, hintCol int) (int, int, error) {
	want := pieceFor(pieceType, white)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if st.board[r][c] != want {
				continue
			}
			if hintRow >= 0 && r != hintRow {
				continue
			}
			if hintCol >= 0 && c != hintCol {
				continue
			}
			if !st.canMoveTo(pieceType, white, r, c, destRow, destCol, capture) {
				continue
			}
			if !st.kingSafeAfter(white, r, c, destRow, destCol) {
				continue
			}
			return r, c, nil
		}
	}
	return -1, -1, fmt.Errorf("no %s can reach %s", PieceLetter(want), SquareName(destRow, destCol))
}

func (st *gameState) canMoveTo(pieceType int8, white bool, fromRow, fromCol, destRow, destCol int, capture bool) bool {
	destPiece := st.board[destRow][destCol]
	if destPiece != 0 && (destPiece > 0) == white {
		return false
	}

	if pieceType == Pawn {
		dir := 1
		if white {
			dir = -1
		}
		if capture {
			if destRow-fromRow != dir || abs(destCol-fromCol) != 1 {
				return false
			}
			if destPiece != 0 {
				return true
			}
			// en passant: destination must be the recorded ep square
			return destRow == st.epRow && destCol == st.epCol
		}
		if destCol != fromCol || destPiece != 0 {
			return false
		}
		if destRow-fromRow == dir {
			return true
		}
		startRow := 1
		if white {
			startRow = 6
		}
		return fromRow == startRow && destRow-fromRow == 2*dir && st.board[fromRow+dir][fromCol] == 0
	}

	if capture && destPiece == 0 {
		return false
	}
	return st.board.PieceAttacks(fromRow, fromCol, destRow, destCol)
}

// kingSafeAfter simulates the move on a copy and verifies the mover's king is
// not left in check. En passant pawn removal is included in the simulation.
func (st *gameState) kingSafeAfter(white bool, fromRow, fromCol, destRow, destCol int) bool {
	sim := st.board
	moved := sim[fromRow][fromCol]
	sim[fromRow][fromCol] = 0
	if moved == pieceFor(Pawn, white) && destCol != fromCol && sim[destRow][destCol] == 0 {
		capRow := destRow + 1
		if !white {
			capRow = destRow - 1
		}
		sim[capRow][destCol] = 0
	}
	sim[destRow][destCol] = moved

	kr, kc := sim.FindKing(white)
	if kr == -1 {
		return true
	}
	return sim.CountAttackers(kr, kc, !white) == 0
}

func (st *gameState) clearCastlingFor(white bool) {
	if white {
		st.castling[castleWK] = false
		st.castling[castleWQ] = false
	} else {
		st.castling[castleBK] = false
		st.castling[castleBQ] = false
	}
}

func (st *gameState) noteRookMoved(fromRow, fromCol int, white bool) {
	switch {
	case white && fromRow == 7 && fromCol == 7:
		st.castling[castleWK] = false
	case white && fromRow == 7 && fromCol == 0:
		st.castling[castleWQ] = false
	case !white && fromRow == 0 && fromCol == 7:
		st.castling[castleBK] = false
	case !white && fromRow == 0 && fromCol == 0:
		st.castling[castleBQ] = false
	}
}

func (st *gameState) noteRookCaptured(row, col int) {
	switch {
	case row == 7 && col == 7:
		st.castling[castleWK] = false
	case row == 7 && col == 0:
		st.castling[castleWQ] = false
	case row == 0 && col == 7:
		st.castling[castleBK] = false
	case row == 0 && col == 0:
		st.castling[castleBQ] = false
	}
}

func pieceFor(pieceType int8, white bool) int8 {
	if white {
		return pieceType
	}
	return -pieceType
}
