// Package extract runs the full feature-extraction pipeline: PGN parse,
// replay, motif detection and fork derivation.
package extract

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/chessindex/internal/board"
	"github.com/freeeve/chessindex/internal/motifs"
	"github.com/freeeve/chessindex/internal/pgn"
)

// GameFeatures is the extraction result for one game.
type GameFeatures struct {
	Motifs            map[motifs.Motif]bool
	NumMoves          int
	Occurrences       map[motifs.Motif][]motifs.Occurrence
	AttackOccurrences []motifs.Occurrence
}

// Has reports whether the motif was found in the game.
func (f *GameFeatures) Has(m motifs.Motif) bool {
	return f.Motifs[m]
}

// AllOccurrences merges the per-motif occurrence map with the raw attack
// stream, stored under its own motif name.
func (f *GameFeatures) AllOccurrences() map[motifs.Motif][]motifs.Occurrence {
	merged := make(map[motifs.Motif][]motifs.Occurrence, len(f.Occurrences)+1)
	for m, occs := range f.Occurrences {
		merged[m] = occs
	}
	if len(f.AttackOccurrences) > 0 {
		merged[motifs.Attack] = f.AttackOccurrences
	}
	return merged
}

// AttackDerived reports the flags computed from the attack stream rather
// than from dedicated detectors: discovered attack, discovered mate and
// checkmate.
func (f *GameFeatures) AttackDerived() (discoveredAttack, discoveredMate, checkmate bool) {
	for _, occ := range f.AttackOccurrences {
		if occ.Discovered {
			discoveredAttack = true
		}
		if occ.Discovered && occ.Mate {
			discoveredMate = true
		}
		if occ.Mate {
			checkmate = true
		}
	}
	return discoveredAttack, discoveredMate, checkmate
}

// Extractor coordinates the detectors over a replayed game. Detectors run
// concurrently; any detector error fails the whole extraction.
type Extractor struct {
	detectors      []motifs.Detector
	attackDetector *motifs.AttackDetector
	logger         zerolog.Logger
}

// New builds an extractor with the default detector set.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{
		detectors:      motifs.DefaultDetectors(),
		attackDetector: &motifs.AttackDetector{},
		logger:         logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract parses and replays the game, then runs every detector. Parse and
// replay failures propagate; so does any detector failure.
func (e *Extractor) Extract(pgnText string) (*GameFeatures, error) {
	game, err := pgn.Parse(pgnText)
	if err != nil {
		return nil, fmt.Errorf("parse pgn: %w", err)
	}

	positions, err := board.Replay(game.MoveText)
	if err != nil {
		return nil, fmt.Errorf("replay game: %w", err)
	}

	numMoves := 0
	if len(positions) > 0 {
		numMoves = positions[len(positions)-1].MoveNumber
	}

	results := make([][]motifs.Occurrence, len(e.detectors))
	var attackOccurrences []motifs.Occurrence

	var g errgroup.Group
	for i, detector := range e.detectors {
		g.Go(func() error {
			occurrences, err := detector.Detect(positions)
			if err != nil {
				return fmt.Errorf("detector %s: %w", detector.Motif(), err)
			}
			results[i] = occurrences
			return nil
		})
	}
	g.Go(func() error {
		occurrences, err := e.attackDetector.Detect(positions)
		if err != nil {
			return fmt.Errorf("detector %s: %w", motifs.Attack, err)
		}
		attackOccurrences = occurrences
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	features := &GameFeatures{
		Motifs:            make(map[motifs.Motif]bool),
		NumMoves:          numMoves,
		Occurrences:       make(map[motifs.Motif][]motifs.Occurrence),
		AttackOccurrences: attackOccurrences,
	}
	for i, detector := range e.detectors {
		if len(results[i]) > 0 {
			features.Motifs[detector.Motif()] = true
			features.Occurrences[detector.Motif()] = results[i]
		}
	}

	if forks := DeriveForks(attackOccurrences); len(forks) > 0 {
		features.Motifs[motifs.Fork] = true
		features.Occurrences[motifs.Fork] = forks
	}

	return features, nil
}

// DeriveForks groups the direct attack rows by (ply, attacker); an attacker
// hitting two or more targets at one ply is a fork. The fork rows copy the
// attack rows with the attacker recorded as the moved piece.
func DeriveForks(attacks []motifs.Occurrence) []motifs.Occurrence {
	type key struct {
		ply      int
		attacker string
	}
	groups := make(map[key][]motifs.Occurrence)
	var order []key

	for _, occ := range attacks {
		if occ.Discovered || occ.Attacker == "" {
			continue
		}
		k := key{occ.Ply, occ.Attacker}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], occ)
	}

	var forks []motifs.Occurrence
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}
		for _, occ := range group {
			fork := occ
			fork.MovedPiece = occ.Attacker
			forks = append(forks, fork)
		}
	}
	return forks
}
