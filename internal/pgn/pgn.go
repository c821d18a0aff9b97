// Package pgn parses PGN text into tag pairs and SAN move tokens.
package pgn

import (
	"fmt"
	"regexp"
	"strings"
)

// Game is a single parsed PGN game: its tag pairs and raw movetext.
type Game struct {
	Tags     map[string]string
	MoveText string
}

var tagPairRe = regexp.MustCompile(`^\[(\w+)\s+"([^"]*)"\]\s*$`)

// Parse splits a PGN game into tag pairs and movetext. Tag lines must be
// well-formed [Key "value"] pairs; everything after the header section is
// movetext.
func Parse(raw string) (*Game, error) {
	game := &Game{Tags: make(map[string]string)}

	lines := strings.Split(raw, "\n")
	var movetext []string
	inHeader := true

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if inHeader {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "[") {
				m := tagPairRe.FindStringSubmatch(trimmed)
				if m == nil {
					return nil, fmt.Errorf("malformed tag pair: %q", trimmed)
				}
				game.Tags[m[1]] = m[2]
				continue
			}
			inHeader = false
		}
		movetext = append(movetext, trimmed)
	}

	game.MoveText = strings.TrimSpace(strings.Join(movetext, " "))
	return game, nil
}

// Moves tokenizes the game's movetext into SAN tokens.
func (g *Game) Moves() ([]string, error) {
	return TokenizeMoves(g.MoveText)
}

var moveNumberPrefixRe = regexp.MustCompile(`^\d+\.{0,3}`)

// TokenizeMoves strips comments, variations, NAGs, move numbers and result
// tokens from movetext and returns the bare SAN tokens in game order.
// Check (+) and mate (#) suffixes are preserved.
func TokenizeMoves(moveText string) ([]string, error) {
	cleaned, err := stripAnnotations(moveText)
	if err != nil {
		return nil, err
	}

	var moves []string
	for _, tok := range strings.Fields(cleaned) {
		switch tok {
		case "1-0", "0-1", "1/2-1/2", "*":
			continue
		}

		// "1.e4" and "12...Qxd5" arrive as single tokens
		rest := moveNumberPrefixRe.ReplaceAllString(tok, "")
		if rest == "" {
			continue
		}
		rest = strings.TrimRight(rest, "!?")
		if rest == "" {
			continue
		}
		moves = append(moves, rest)
	}
	return moves, nil
}

// stripAnnotations removes {comments}, (variations) with nesting,
// ;rest-of-line comments and $n NAGs.
func stripAnnotations(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	depth := 0
	inBrace := false
	inSemi := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inBrace {
			if ch == '}' {
				inBrace = false
			}
			continue
		}
		if inSemi {
			if ch == '\n' {
				inSemi = false
				b.WriteByte(' ')
			}
			continue
		}
		switch ch {
		case '{':
			inBrace = true
		case ';':
			inSemi = true
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return "", fmt.Errorf("unbalanced variation close at offset %d", i)
			}
			depth--
		case '$':
			for i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
				i++
			}
		default:
			if depth == 0 {
				b.WriteByte(ch)
			}
		}
	}
	if inBrace {
		return "", fmt.Errorf("unterminated comment")
	}
	return b.String(), nil
}
