package chessql

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokNumber
	tokString
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
	tokEQ
	tokNEQ
	tokLT
	tokLTE
	tokGT
	tokGTE
	tokAnd
	tokOr
	tokNot
	tokIn
	tokMotif
	tokSequence
	tokThen
	tokOrder
	tokBy
	tokMotifCount
	tokAsc
	tokDesc
)

// token is one lexed unit. Pos is the byte offset of the token start in the
// query string, used for error reporting.
type token struct {
	Type  tokenType
	Value string
	Pos   int
}

// Keywords are case-sensitive: boolean operators and directions are
// uppercase, function-style keywords are lowercase.
var keywords = map[string]tokenType{
	"AND":         tokAnd,
	"OR":          tokOr,
	"NOT":         tokNot,
	"IN":          tokIn,
	"THEN":        tokThen,
	"ORDER":       tokOrder,
	"BY":          tokBy,
	"ASC":         tokAsc,
	"DESC":        tokDesc,
	"motif":       tokMotif,
	"sequence":    tokSequence,
	"motif_count": tokMotifCount,
}
