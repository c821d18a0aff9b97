package chessql

import "fmt"

// ParseError is returned for any malformed query: lexing, parsing or an
// unknown field/motif during compilation. HTTP callers map it to a 400.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return "chessql: " + e.Msg
	}
	return fmt.Sprintf("chessql: %s at position %d", e.Msg, e.Pos)
}

func errAt(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// compile-time query errors carry no source position.
func errCompile(format string, args ...any) *ParseError {
	return &ParseError{Pos: -1, Msg: fmt.Sprintf(format, args...)}
}

type lexer struct {
	input string
	pos   int
}

func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{Type: tokEOF, Pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case isLetter(c) || c == '_':
		for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
			l.pos++
		}
		word := l.input[start:l.pos]
		if tt, ok := keywords[word]; ok {
			return token{Type: tt, Value: word, Pos: start}, nil
		}
		return token{Type: tokIdent, Value: word, Pos: start}, nil

	case isDigit(c), c == '-' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]):
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return token{Type: tokNumber, Value: l.input[start:l.pos], Pos: start}, nil

	case c == '"':
		l.pos++
		var buf []byte
		for l.pos < len(l.input) && l.input[l.pos] != '"' {
			if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
				l.pos++
			}
			buf = append(buf, l.input[l.pos])
			l.pos++
		}
		if l.pos >= len(l.input) {
			return token{}, errAt(start, "unterminated string")
		}
		l.pos++
		return token{Type: tokString, Value: string(buf), Pos: start}, nil
	}

	single := map[byte]tokenType{
		'(': tokLParen, ')': tokRParen,
		'[': tokLBracket, ']': tokRBracket,
		',': tokComma, '.': tokDot,
	}
	if tt, ok := single[c]; ok {
		l.pos++
		return token{Type: tt, Value: string(c), Pos: start}, nil
	}

	switch c {
	case '=':
		l.pos++
		return token{Type: tokEQ, Value: "=", Pos: start}, nil
	case '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return token{Type: tokNEQ, Value: "!=", Pos: start}, nil
		}
	case '<':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return token{Type: tokLTE, Value: "<=", Pos: start}, nil
		}
		l.pos++
		return token{Type: tokLT, Value: "<", Pos: start}, nil
	case '>':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return token{Type: tokGTE, Value: ">=", Pos: start}, nil
		}
		l.pos++
		return token{Type: tokGT, Value: ">", Pos: start}, nil
	}

	return token{}, errAt(start, "unexpected character %q", c)
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
