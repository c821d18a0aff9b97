// Package httpapi exposes the indexing and query endpoints.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/freeeve/chessindex/internal/chessql"
	"github.com/freeeve/chessindex/internal/index"
	"github.com/freeeve/chessindex/internal/store"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
	maxMonthSpan      = 12
)

// Handler serves the API against the feature store.
type Handler struct {
	store      *store.Store
	queue      *index.Queue
	reanalyzer *index.Reanalyzer
	validate   *validator.Validate
	log        zerolog.Logger
}

// NewRouter builds the HTTP handler tree with middleware applied.
func NewRouter(log zerolog.Logger, s *store.Store, queue *index.Queue, reanalyzer *index.Reanalyzer) http.Handler {
	validate := validator.New()
	_ = validate.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})

	h := &Handler{
		store:      s,
		queue:      queue,
		reanalyzer: reanalyzer,
		validate:   validate,
		log:        log,
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(h.health))
	mux.Handle("/readyz", http.HandlerFunc(h.health))
	mux.Handle("/index", http.HandlerFunc(h.index))
	mux.Handle("/index/", http.HandlerFunc(h.getIndex))
	mux.Handle("/query", http.HandlerFunc(h.query))
	mux.Handle("/admin/reanalyze", http.HandlerFunc(h.reanalyze))

	// pprof endpoints
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return CORS(RequestID(AccessLog(log, mux)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// IndexRequest is the POST /index body.
type IndexRequest struct {
	Player     string `json:"player" validate:"required"`
	Platform   string `json:"platform" validate:"required"`
	StartMonth string `json:"startMonth" validate:"required,yearmonth"`
	EndMonth   string `json:"endMonth" validate:"required,yearmonth"`
}

// IndexResponse reports an indexing request's state.
type IndexResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	GamesIndexed int    `json:"gamesIndexed"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createIndex(w, r)
	case http.MethodGet:
		h.listIndex(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// RequestListResponse is the GET /index body.
type RequestListResponse struct {
	Requests []store.IndexingRequest `json:"requests"`
	Count    int                     `json:"count"`
}

func (h *Handler) listIndex(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultQueryLimit)
	if limit < 1 || limit > maxQueryLimit {
		limit = defaultQueryLimit
	}

	requests, err := h.store.ListRecentRequests(limit)
	if err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("list requests")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []store.IndexingRequest{}
	}
	writeJSON(w, RequestListResponse{Requests: requests, Count: len(requests)})
}

func (h *Handler) createIndex(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if msg := h.validateIndexRequest(req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	// An active request for the same range is returned instead of queued
	// twice.
	if existing, err := h.store.FindExistingRequest(req.Player, req.Platform, req.StartMonth, req.EndMonth); err == nil {
		writeJSONStatus(w, http.StatusAccepted, IndexResponse{
			ID:           existing.ID,
			Status:       existing.Status,
			GamesIndexed: existing.GamesIndexed,
		})
		return
	}

	id, err := h.store.CreateRequest(req.Player, req.Platform, req.StartMonth, req.EndMonth)
	if err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("create request")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.queue.Enqueue(index.Message{
		RequestID:  id,
		Player:     req.Player,
		Platform:   req.Platform,
		StartMonth: req.StartMonth,
		EndMonth:   req.EndMonth,
	}); err != nil {
		_ = h.store.UpdateRequestStatus(id, store.StatusFailed, err.Error(), 0)
		http.Error(w, "indexing queue full, retry later", http.StatusServiceUnavailable)
		return
	}

	h.log.Info().
		Str("request_id", id).
		Str("player", req.Player).
		Str("months", req.StartMonth+"-"+req.EndMonth).
		Msg("indexing request accepted")
	writeJSONStatus(w, http.StatusAccepted, IndexResponse{ID: id, Status: store.StatusPending})
}

func (h *Handler) validateIndexRequest(req IndexRequest) string {
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			field := strings.ToLower(e.Field()[:1]) + e.Field()[1:]
			if e.Tag() == "yearmonth" {
				return field + " must be in YYYY-MM format"
			}
			return field + " is required"
		}
		return "invalid request"
	}
	if req.Platform != "CHESS_COM" {
		return "unsupported platform: " + req.Platform + ", supported: CHESS_COM"
	}

	start, _ := time.Parse("2006-01", req.StartMonth)
	end, _ := time.Parse("2006-01", req.EndMonth)
	if start.After(end) {
		return "startMonth must not be after endMonth"
	}
	span := (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
	if span > maxMonthSpan {
		return "maximum range is 12 months, got " + strconv.Itoa(span)
	}
	return ""
}

func (h *Handler) getIndex(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path)
	if len(parts) < 2 {
		http.Error(w, "missing request id", http.StatusBadRequest)
		return
	}

	req, err := h.store.FindRequest(parts[1])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "indexing request not found: "+parts[1], http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("find request")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, IndexResponse{
		ID:           req.ID,
		Status:       req.Status,
		GamesIndexed: req.GamesIndexed,
		ErrorMessage: req.ErrorMessage,
	})
}

// GameResult is one matched game with its occurrence detail attached.
type GameResult struct {
	store.GameFeature
	Occurrences map[string][]store.OccurrenceRow `json:"occurrences,omitempty"`
}

// QueryResponse is the GET /query body.
type QueryResponse struct {
	Games []GameResult `json:"games"`
	Count int          `json:"count"`
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	pq, err := chessql.Parse(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cq, err := chessql.Compile(pq)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := queryInt(r, "limit", defaultQueryLimit)
	if limit < 1 || limit > maxQueryLimit {
		limit = defaultQueryLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	games, err := h.store.Query(cq, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("run query")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	urls := make([]string, len(games))
	for i, g := range games {
		urls[i] = g.GameURL
	}
	occurrences, err := h.store.QueryOccurrences(urls)
	if err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("query occurrences")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	results := make([]GameResult, len(games))
	for i, g := range games {
		results[i] = GameResult{GameFeature: g, Occurrences: occurrences[g.GameURL]}
	}
	writeJSON(w, QueryResponse{Games: results, Count: len(results)})
}

// ReanalysisResponse summarizes a full reanalysis pass.
type ReanalysisResponse struct {
	GamesProcessed int `json:"gamesProcessed"`
	GamesFailed    int `json:"gamesFailed"`
}

// reanalyze is synchronous: it blocks until every stored game has been
// re-extracted.
func (h *Handler) reanalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	processed, failed, err := h.reanalyzer.Run()
	if err != nil {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Msg("reanalyze")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, ReanalysisResponse{GamesProcessed: processed, GamesFailed: failed})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// splitPath splits a URL path into parts
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
