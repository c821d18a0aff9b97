// Package chessql parses the game query language and compiles it to a
// parameterized SQL query over the feature store.
//
// The language is a boolean expression grammar: field comparisons against
// numbers or strings (dotted fields like white.elo map to storage columns),
// IN lists, motif(name) predicates, sequence(a THEN b) consecutive-motif
// predicates, with NOT/AND/OR (AND binds tighter than OR) and an optional
// trailing ORDER BY motif_count(name) ASC|DESC.
package chessql

// Expr is a node of the parsed query expression.
type Expr interface {
	expr()
}

// ComparisonExpr is `field op value`, where Value is an int or a string.
type ComparisonExpr struct {
	Field string
	Op    string
	Value any
}

// InExpr is `field IN [v1, v2, ...]`.
type InExpr struct {
	Field  string
	Values []any
}

// MotifExpr is `motif(name)`.
type MotifExpr struct {
	Name string
}

// SequenceExpr is `sequence(m1 THEN m2 ...)`: the named motifs occurring on
// consecutive moves of the same side.
type SequenceExpr struct {
	Motifs []string
}

// NotExpr negates its operand.
type NotExpr struct {
	Operand Expr
}

// AndExpr is the n-ary conjunction of its operands.
type AndExpr struct {
	Operands []Expr
}

// OrExpr is the n-ary disjunction of its operands.
type OrExpr struct {
	Operands []Expr
}

func (*ComparisonExpr) expr() {}
func (*InExpr) expr()         {}
func (*MotifExpr) expr()      {}
func (*SequenceExpr) expr()   {}
func (*NotExpr) expr()        {}
func (*AndExpr) expr()        {}
func (*OrExpr) expr()         {}

// OrderBy is a trailing `ORDER BY motif_count(name) ASC|DESC` clause.
type OrderBy struct {
	Motif     string
	Ascending bool
}

// ParsedQuery is the parse result: the filter expression and an optional
// ordering clause.
type ParsedQuery struct {
	Expr    Expr
	OrderBy *OrderBy
}
