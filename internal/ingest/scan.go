package ingest

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"
)

// GameScanner splits a multi-game PGN stream into individual games. A new
// game starts at each [Event tag line.
type GameScanner struct {
	scanner *bufio.Scanner
	current string
	pending []string
	done    bool
}

// NewGameScanner wraps a PGN stream.
func NewGameScanner(r io.Reader) *GameScanner {
	sc := bufio.NewScanner(r)
	// Movetext lines in bulk exports can run long.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &GameScanner{scanner: sc}
}

// Scan advances to the next game; it returns false at end of stream.
func (g *GameScanner) Scan() bool {
	if g.done {
		return false
	}
	for g.scanner.Scan() {
		line := g.scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "[Event ") && len(g.pending) > 0 && hasMoveText(g.pending) {
			g.current = strings.TrimSpace(strings.Join(g.pending, "\n"))
			g.pending = []string{line}
			return true
		}
		g.pending = append(g.pending, line)
	}
	g.done = true
	if hasMoveText(g.pending) {
		g.current = strings.TrimSpace(strings.Join(g.pending, "\n"))
		g.pending = nil
		return g.current != ""
	}
	return false
}

// Game returns the raw text of the game found by the last Scan.
func (g *GameScanner) Game() string {
	return g.current
}

// Err reports any underlying read error.
func (g *GameScanner) Err() error {
	return g.scanner.Err()
}

// hasMoveText reports whether the buffered lines contain anything besides
// tag pairs and blanks; splitting before then would break a header in two.
func hasMoveText(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") {
			continue
		}
		return true
	}
	return false
}

// IsPGNFile reports whether the name looks like a PGN archive, compressed
// or not.
func IsPGNFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == ".pgn" {
		return true
	}
	if ext == ".zst" {
		return filepath.Ext(name[:len(name)-len(ext)]) == ".pgn"
	}
	return false
}
