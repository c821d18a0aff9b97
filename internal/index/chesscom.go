package index

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PlayerResult is one side's entry in a chess.com game record.
type PlayerResult struct {
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
	Username string `json:"username"`
}

// PlayedGame is one game from the chess.com monthly archive endpoint.
type PlayedGame struct {
	URL       string       `json:"url"`
	PGN       string       `json:"pgn"`
	EndTime   int64        `json:"end_time"`
	Rated     bool         `json:"rated"`
	TimeClass string       `json:"time_class"`
	Rules     string       `json:"rules"`
	ECO       string       `json:"eco"`
	White     PlayerResult `json:"white"`
	Black     PlayerResult `json:"black"`
}

type gamesResponse struct {
	Games []PlayedGame `json:"games"`
}

// ChessComClient fetches monthly game archives from the public chess.com API.
type ChessComClient struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewChessComClient builds a client against the public API.
func NewChessComClient(logger zerolog.Logger) *ChessComClient {
	return &ChessComClient{
		baseURL: "https://api.chess.com/pub",
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger.With().Str("component", "chesscom").Logger(),
	}
}

// FetchGames returns the player's games for one month ("2006-01" form). An
// unknown player or a month with no archive yields an empty slice.
func (c *ChessComClient) FetchGames(player, month string) ([]PlayedGame, error) {
	year, mm, ok := strings.Cut(month, "-")
	if !ok {
		return nil, fmt.Errorf("bad month %q", month)
	}
	url := fmt.Sprintf("%s/player/%s/games/%s/%s", c.baseURL, strings.ToLower(player), year, mm)

	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch games %s %s: %w", player, month, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug().Str("player", player).Str("month", month).Msg("no archive for month")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch games %s %s: status %d", player, month, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch games %s %s: %w", player, month, err)
	}
	var parsed gamesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode games %s %s: %w", player, month, err)
	}
	return parsed.Games, nil
}
