package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Indexing request lifecycle states.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// IndexingRequest is one indexing_requests row.
type IndexingRequest struct {
	ID           string    `json:"id"`
	Player       string    `json:"player"`
	Platform     string    `json:"platform"`
	StartMonth   string    `json:"startMonth"`
	EndMonth     string    `json:"endMonth"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	GamesIndexed int       `json:"gamesIndexed"`
}

// CreateRequest inserts a new PENDING request and returns its id.
func (s *Store) CreateRequest(player, platform, startMonth, endMonth string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO indexing_requests (id, player, platform, start_month, end_month, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, player, platform, startMonth, endMonth, StatusPending, now, now)
	if err != nil {
		return "", fmt.Errorf("create indexing request: %w", err)
	}
	return id, nil
}

// FindRequest looks a request up by id; ErrNotFound when absent.
func (s *Store) FindRequest(id string) (IndexingRequest, error) {
	row := s.db.QueryRow(
		`SELECT id, player, platform, start_month, end_month, status, created_at, updated_at, error_message, games_indexed
		FROM indexing_requests WHERE id = ?`, id)
	return scanRequest(row)
}

// FindExistingRequest returns the oldest still-active request for the same
// player/platform/month range, if any. Used to dedupe repeated submissions.
func (s *Store) FindExistingRequest(player, platform, startMonth, endMonth string) (IndexingRequest, error) {
	row := s.db.QueryRow(
		`SELECT id, player, platform, start_month, end_month, status, created_at, updated_at, error_message, games_indexed
		FROM indexing_requests
		WHERE player = ? AND platform = ? AND start_month = ? AND end_month = ?
			AND status IN (?, ?)
		ORDER BY created_at ASC
		LIMIT 1`,
		player, platform, startMonth, endMonth, StatusPending, StatusProcessing)
	return scanRequest(row)
}

// ListRecentRequests returns the newest requests first.
func (s *Store) ListRecentRequests(limit int) ([]IndexingRequest, error) {
	rows, err := s.db.Query(
		`SELECT id, player, platform, start_month, end_month, status, created_at, updated_at, error_message, games_indexed
		FROM indexing_requests ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list indexing requests: %w", err)
	}
	defer rows.Close()

	var results []IndexingRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, req)
	}
	return results, rows.Err()
}

// UpdateRequestStatus records a status transition with its outcome fields.
func (s *Store) UpdateRequestStatus(id, status, errorMessage string, gamesIndexed int) error {
	_, err := s.db.Exec(
		`UPDATE indexing_requests
		SET status = ?, error_message = ?, games_indexed = ?, updated_at = ?
		WHERE id = ?`,
		status, nullable(errorMessage), gamesIndexed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update indexing request %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (IndexingRequest, error) {
	var req IndexingRequest
	var errMsg sql.NullString
	err := row.Scan(&req.ID, &req.Player, &req.Platform, &req.StartMonth, &req.EndMonth,
		&req.Status, &req.CreatedAt, &req.UpdatedAt, &errMsg, &req.GamesIndexed)
	if errors.Is(err, sql.ErrNoRows) {
		return req, ErrNotFound
	}
	if err != nil {
		return req, fmt.Errorf("scan indexing request: %w", err)
	}
	req.ErrorMessage = errMsg.String
	return req, nil
}
