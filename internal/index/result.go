package index

// MapResult normalizes the chess.com per-side result strings to standard
// notation. The provider marks the winner "win" and describes how the other
// side lost or how the game was drawn.
func MapResult(whiteResult, blackResult string) string {
	if whiteResult == "" && blackResult == "" {
		return "unknown"
	}

	if whiteResult == "win" {
		return "1-0"
	}
	if blackResult == "win" {
		return "0-1"
	}

	if isDrawResult(whiteResult) || isDrawResult(blackResult) {
		return "1/2-1/2"
	}

	if isLossResult(whiteResult) {
		return "0-1"
	}
	if isLossResult(blackResult) {
		return "1-0"
	}

	return "unknown"
}

func isDrawResult(result string) bool {
	switch result {
	case "agreed", "repetition", "stalemate", "insufficient",
		"50move", "timevsinsufficient", "drawn":
		return true
	}
	return false
}

func isLossResult(result string) bool {
	switch result {
	case "resigned", "checkmated", "timeout", "abandoned", "lose":
		return true
	}
	return false
}
