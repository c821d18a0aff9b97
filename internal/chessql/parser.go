package chessql

import (
	"strconv"
	"strings"
)

// Parse parses a query string into a ParsedQuery. Errors are *ParseError.
func Parse(input string) (*ParsedQuery, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	orderBy, err := p.parseOrderBy()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != tokEOF {
		return nil, errAt(p.peek().Pos, "unexpected token %q", p.peek().Value)
	}
	return &ParsedQuery{Expr: expr, OrderBy: orderBy}, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.Type != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(tt tokenType, what string) (token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return token{}, errAt(tok.Pos, "expected %s, got %q", what, tok.Value)
	}
	return p.advance(), nil
}

func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []Expr{first}
	for p.peek().Type == tokOr {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return &OrExpr{Operands: operands}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	operands := []Expr{first}
	for p.peek().Type == tokAnd {
		p.advance()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return &AndExpr{Operands: operands}, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.peek().Type == tokNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch tok := p.peek(); tok.Type {
	case tokLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return expr, nil

	case tokMotif:
		p.advance()
		if _, err := p.expect(tokLParen, "("); err != nil {
			return nil, err
		}
		name, err := p.expect(tokIdent, "motif name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return &MotifExpr{Name: name.Value}, nil

	case tokSequence:
		return p.parseSequence()

	case tokIdent:
		return p.parseFieldExpr()
	}

	return nil, errAt(p.peek().Pos, "unexpected token %q", p.peek().Value)
}

func (p *parser) parseSequence() (Expr, error) {
	p.advance()
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	first, err := p.expect(tokIdent, "motif name")
	if err != nil {
		return nil, err
	}
	motifs := []string{first.Value}
	for p.peek().Type == tokThen {
		p.advance()
		next, err := p.expect(tokIdent, "motif name")
		if err != nil {
			return nil, err
		}
		motifs = append(motifs, next.Value)
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return &SequenceExpr{Motifs: motifs}, nil
}

func (p *parser) parseFieldExpr() (Expr, error) {
	field, err := p.parseFieldName()
	if err != nil {
		return nil, err
	}

	if p.peek().Type == tokIn {
		p.advance()
		if _, err := p.expect(tokLBracket, "["); err != nil {
			return nil, err
		}
		first, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values := []any{first}
		for p.peek().Type == tokComma {
			p.advance()
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		if _, err := p.expect(tokRBracket, "]"); err != nil {
			return nil, err
		}
		return &InExpr{Field: field, Values: values}, nil
	}

	op := p.peek()
	switch op.Type {
	case tokEQ, tokNEQ, tokLT, tokLTE, tokGT, tokGTE:
		p.advance()
	default:
		return nil, errAt(op.Pos, "expected comparison operator, got %q", op.Value)
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ComparisonExpr{Field: field, Op: op.Value, Value: value}, nil
}

func (p *parser) parseFieldName() (string, error) {
	first, err := p.expect(tokIdent, "field name")
	if err != nil {
		return "", err
	}
	parts := []string{first.Value}
	for p.peek().Type == tokDot {
		p.advance()
		next, err := p.expect(tokIdent, "field name")
		if err != nil {
			return "", err
		}
		parts = append(parts, next.Value)
	}
	return strings.Join(parts, "."), nil
}

func (p *parser) parseValue() (any, error) {
	switch tok := p.peek(); tok.Type {
	case tokNumber:
		p.advance()
		n, err := strconv.Atoi(tok.Value)
		if err != nil {
			return nil, errAt(tok.Pos, "invalid number %q", tok.Value)
		}
		return n, nil
	case tokString:
		p.advance()
		return tok.Value, nil
	}
	return nil, errAt(p.peek().Pos, "expected value, got %q", p.peek().Value)
}

func (p *parser) parseOrderBy() (*OrderBy, error) {
	if p.peek().Type != tokOrder {
		return nil, nil
	}
	p.advance()
	if _, err := p.expect(tokBy, "BY"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokMotifCount, "motif_count"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent, "motif name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	switch dir := p.peek(); dir.Type {
	case tokAsc:
		p.advance()
		return &OrderBy{Motif: name.Value, Ascending: true}, nil
	case tokDesc:
		p.advance()
		return &OrderBy{Motif: name.Value, Ascending: false}, nil
	}
	return nil, errAt(p.peek().Pos, "expected ASC or DESC, got %q", p.peek().Value)
}
