package chessql

import (
	"strconv"
	"strings"
)

// CompiledQuery is a full SELECT over game_features plus its ordered bind
// parameters.
type CompiledQuery struct {
	SQL    string
	Params []any
}

// attackDerivedMotifs have no stored rows of their own in motif_occurrences;
// their detection is derived from ATTACK rows at query time.
//
// discovered_attack, checkmate, discovered_check and double_check are ALSO
// expressed via ATTACK rows in compileMotif, but those have stored rows from
// their dedicated detectors, so ORDER BY and sequence() use the stored rows.
var attackDerivedMotifs = map[string]bool{
	"fork": true,
}

var validColumns = map[string]bool{
	"white_username": true,
	"black_username": true,
	"white_elo":      true,
	"black_elo":      true,
	"time_class":     true,
	"eco":            true,
	"result":         true,
	"num_moves":      true,
	"platform":       true,
	"game_url":       true,
	"played_at":      true,
}

var validMotifs = map[string]bool{
	"pin":                      true,
	"cross_pin":                true,
	"fork":                     true,
	"skewer":                   true,
	"discovered_attack":        true,
	"discovered_check":         true,
	"check":                    true,
	"checkmate":                true,
	"promotion":                true,
	"promotion_with_check":     true,
	"promotion_with_checkmate": true,
	"back_rank_mate":           true,
	"smothered_mate":           true,
	"zugzwang":                 true,
	"double_check":             true,
	"overloaded_piece":         true,
}

var fieldMap = map[string]string{
	"white.elo":      "white_elo",
	"black.elo":      "black_elo",
	"white.username": "white_username",
	"black.username": "black_username",
	"time.class":     "time_class",
	"num.moves":      "num_moves",
	"game.url":       "game_url",
	"played.at":      "played_at",
}

var validOps = map[string]bool{
	"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

// stringColumns get case-insensitive matching: LOWER() on both sides of
// equality comparisons and IN lists.
var stringColumns = map[string]bool{
	"white_username": true,
	"black_username": true,
	"time_class":     true,
	"eco":            true,
	"result":         true,
	"platform":       true,
	"game_url":       true,
}

// Compile lowers a parsed query into a single SELECT over game_features.
// Without an ORDER BY clause, results are ordered by played_at descending;
// with one, by the per-game occurrence count of the named motif.
func Compile(pq *ParsedQuery) (CompiledQuery, error) {
	var whereParams []any
	whereClause, err := compileExpr(pq.Expr, &whereParams)
	if err != nil {
		return CompiledQuery{}, err
	}

	if pq.OrderBy == nil {
		sql := "SELECT g.* FROM game_features g WHERE " + whereClause + " ORDER BY g.played_at DESC"
		return CompiledQuery{SQL: sql, Params: whereParams}, nil
	}

	name := pq.OrderBy.Motif
	if !validMotifs[name] {
		return CompiledQuery{}, errCompile("unknown motif in ORDER BY: %s", name)
	}
	direction := "DESC"
	if pq.OrderBy.Ascending {
		direction = "ASC"
	}

	var countSubquery string
	var params []any
	if attackDerivedMotifs[name] {
		countSubquery = forkCountSubquery
		params = whereParams
	} else {
		// The count-subquery param binds before the WHERE params.
		params = append([]any{strings.ToUpper(name)}, whereParams...)
		countSubquery = "SELECT game_url, COUNT(*) AS c FROM motif_occurrences WHERE motif = ? GROUP BY game_url"
	}

	sql := "SELECT g.* FROM game_features g" +
		" LEFT JOIN (" + countSubquery + ") cnt" +
		" ON g.game_url = cnt.game_url" +
		" WHERE " + whereClause +
		" ORDER BY COALESCE(cnt.c, 0) " + direction
	return CompiledQuery{SQL: sql, Params: params}, nil
}

func compileExpr(expr Expr, params *[]any) (string, error) {
	switch e := expr.(type) {
	case *OrExpr:
		return compileBoolean(e.Operands, " OR ", params)
	case *AndExpr:
		return compileBoolean(e.Operands, " AND ", params)
	case *NotExpr:
		inner, err := compileExpr(e.Operand, params)
		if err != nil {
			return "", err
		}
		return "(NOT " + inner + ")", nil
	case *ComparisonExpr:
		return compileComparison(e, params)
	case *InExpr:
		return compileIn(e, params)
	case *MotifExpr:
		return compileMotif(e)
	case *SequenceExpr:
		return compileSequence(e)
	}
	return "", errCompile("unsupported expression")
}

func compileBoolean(operands []Expr, sep string, params *[]any) (string, error) {
	parts := make([]string, 0, len(operands))
	for _, op := range operands {
		s, err := compileExpr(op, params)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func compileComparison(cmp *ComparisonExpr, params *[]any) (string, error) {
	column, err := resolveColumn(cmp.Field)
	if err != nil {
		return "", err
	}
	if !validOps[cmp.Op] {
		return "", errCompile("invalid operator: %s", cmp.Op)
	}
	*params = append(*params, cmp.Value)
	if stringColumns[column] && (cmp.Op == "=" || cmp.Op == "!=") {
		return "LOWER(" + column + ") " + cmp.Op + " LOWER(?)", nil
	}
	return column + " " + cmp.Op + " ?", nil
}

func compileIn(in *InExpr, params *[]any) (string, error) {
	column, err := resolveColumn(in.Field)
	if err != nil {
		return "", err
	}
	*params = append(*params, in.Values...)
	placeholder := "?"
	if stringColumns[column] {
		placeholder = "LOWER(?)"
	}
	placeholders := make([]string, len(in.Values))
	for i := range placeholders {
		placeholders[i] = placeholder
	}
	list := strings.Join(placeholders, ", ")
	if stringColumns[column] {
		return "LOWER(" + column + ") IN (" + list + ")", nil
	}
	return column + " IN (" + list + ")", nil
}

func compileMotif(motif *MotifExpr) (string, error) {
	name := motif.Name
	if !validMotifs[name] {
		return "", errCompile("unknown motif: %s", name)
	}
	switch name {
	// Derived: ATTACK where the revealing piece uncovers the attack.
	case "discovered_attack":
		return "EXISTS (SELECT 1 FROM motif_occurrences mo" +
			" WHERE mo.game_url = g.game_url AND mo.motif = 'ATTACK'" +
			" AND mo.is_discovered = TRUE)", nil
	// Derived: ATTACK that delivers checkmate.
	case "checkmate":
		return "EXISTS (SELECT 1 FROM motif_occurrences mo" +
			" WHERE mo.game_url = g.game_url AND mo.motif = 'ATTACK'" +
			" AND mo.is_mate = TRUE)", nil
	// Derived: discovered ATTACK whose target is the king.
	case "discovered_check":
		return "EXISTS (SELECT 1 FROM motif_occurrences mo" +
			" WHERE mo.game_url = g.game_url AND mo.motif = 'ATTACK'" +
			" AND mo.is_discovered = TRUE" +
			" AND (mo.target LIKE 'K%' OR mo.target LIKE 'k%'))", nil
	// Derived: same attacker at same ply hits 2+ targets.
	case "fork":
		return "EXISTS (SELECT 1 FROM motif_occurrences mo" +
			" WHERE mo.game_url = g.game_url AND mo.motif = 'ATTACK'" +
			" AND mo.is_discovered = FALSE AND mo.attacker IS NOT NULL" +
			" GROUP BY mo.ply, mo.attacker HAVING COUNT(*) >= 2)", nil
	// Derived: 2+ ATTACK rows at the same ply each targeting the king.
	case "double_check":
		return "EXISTS (SELECT 1 FROM motif_occurrences mo" +
			" WHERE mo.game_url = g.game_url AND mo.motif = 'ATTACK'" +
			" AND (mo.target LIKE 'K%' OR mo.target LIKE 'k%')" +
			" GROUP BY mo.ply HAVING COUNT(*) >= 2)", nil
	}
	// All other motifs are stored directly under their own name. The name is
	// validated above, so inlining the literal is injection-safe.
	return "EXISTS (SELECT 1 FROM motif_occurrences mo" +
		" WHERE mo.game_url = g.game_url AND mo.motif = '" +
		strings.ToUpper(name) + "')", nil
}

// compileSequence builds a correlated EXISTS joining one (game_url, ply)
// subquery per motif on consecutive plies of the same side (ply + 2 per
// step), anchored to the outer game.
func compileSequence(seq *SequenceExpr) (string, error) {
	if len(seq.Motifs) < 2 {
		return "", errCompile("sequence() requires at least 2 motifs")
	}
	for _, name := range seq.Motifs {
		if !validMotifs[name] {
			return "", errCompile("unknown motif in sequence: %s", name)
		}
	}

	var sb strings.Builder
	sb.WriteString("EXISTS (SELECT 1")
	sb.WriteString(" FROM (" + motifToPlySubquery(seq.Motifs[0]) + ") sq1")
	for i := 1; i < len(seq.Motifs); i++ {
		sq := strconv.Itoa(i + 1)
		prev := strconv.Itoa(i)
		sb.WriteString(" JOIN (" + motifToPlySubquery(seq.Motifs[i]) + ") sq" + sq)
		sb.WriteString(" ON sq" + sq + ".game_url = sq1.game_url AND sq" + sq + ".ply = sq" + prev + ".ply + 2")
	}
	sb.WriteString(" WHERE sq1.game_url = g.game_url)")
	return sb.String(), nil
}

// motifToPlySubquery returns a SELECT game_url, ply fragment for the motif,
// uniform in shape whether the motif is stored directly or derived from
// ATTACK rows. Names are validated before this is called.
func motifToPlySubquery(name string) string {
	switch name {
	case "fork":
		return "SELECT game_url, ply FROM motif_occurrences" +
			" WHERE motif = 'ATTACK' AND is_discovered = FALSE AND attacker IS NOT NULL" +
			" GROUP BY game_url, ply, attacker HAVING COUNT(*) >= 2"
	case "discovered_attack":
		return "SELECT game_url, ply FROM motif_occurrences" +
			" WHERE motif = 'ATTACK' AND is_discovered = TRUE"
	case "checkmate":
		return "SELECT game_url, ply FROM motif_occurrences" +
			" WHERE motif = 'ATTACK' AND is_mate = TRUE"
	case "discovered_check":
		return "SELECT game_url, ply FROM motif_occurrences" +
			" WHERE motif = 'ATTACK' AND is_discovered = TRUE" +
			" AND (target LIKE 'K%' OR target LIKE 'k%')"
	case "double_check":
		return "SELECT game_url, ply FROM motif_occurrences" +
			" WHERE motif = 'ATTACK' AND (target LIKE 'K%' OR target LIKE 'k%')" +
			" GROUP BY game_url, ply HAVING COUNT(*) >= 2"
	}
	return "SELECT game_url, ply FROM motif_occurrences WHERE motif = '" + strings.ToUpper(name) + "'"
}

// forkCountSubquery counts distinct fork instances per game: unique
// (ply, attacker) pairs with 2+ non-discovered ATTACK targets.
const forkCountSubquery = "SELECT game_url, COUNT(*) AS c FROM (" +
	"SELECT game_url FROM motif_occurrences" +
	" WHERE motif = 'ATTACK' AND is_discovered = FALSE AND attacker IS NOT NULL" +
	" GROUP BY game_url, ply, attacker HAVING COUNT(*) >= 2" +
	") forks GROUP BY game_url"

func resolveColumn(field string) (string, error) {
	if mapped, ok := fieldMap[field]; ok {
		return mapped, nil
	}
	if validColumns[field] {
		return field, nil
	}
	underscored := strings.ReplaceAll(field, ".", "_")
	if validColumns[underscored] {
		return underscored, nil
	}
	return "", errCompile("unknown field: %s", field)
}
