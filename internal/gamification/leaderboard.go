package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported leaderboard boards.
const (
	BoardRating = "rating"
	BoardXP     = "xp"
)

// LeaderboardEntry represents one ranked player sent to clients.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
}

// Top returns the highest ranked players for a board.
func (s *Service) Top(ctx context.Context, board string, limit int) ([]LeaderboardEntry, error) {
	key, err := boardKey(board)
	if err != nil {
		return nil, err
	}

	members, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard %s: %w", board, err)
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, m := range members {
		member, ok := m.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: member,
			Score:    m.Score,
		})
	}
	return entries, nil
}

func boardKey(board string) (string, error) {
	switch board {
	case BoardRating:
		return ratingKey, nil
	case BoardXP:
		return xpKey, nil
	}
	return "", fmt.Errorf("unknown leaderboard board %q", board)
}

// LeaderboardHandler exposes REST endpoints for duel leaderboard queries.
type LeaderboardHandler struct {
	svc    *Service
	logger zerolog.Logger
}

// NewLeaderboardHandler constructs a leaderboard HTTP handler.
func NewLeaderboardHandler(svc *Service, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		svc:    svc,
		logger: logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet responds with the current duel leaderboard for a board.
// Route: GET /v1/duels/leaderboards/{board}?limit=10
func (h *LeaderboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	board := strings.TrimPrefix(r.URL.Path, "/v1/duels/leaderboards/")
	board = strings.TrimSuffix(board, "/")
	if board != BoardRating && board != BoardXP {
		http.Error(w, "unknown leaderboard", http.StatusNotFound)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	entries, err := h.svc.Top(r.Context(), board, limit)
	if err != nil {
		h.logger.Warn().Err(err).Str("board", board).Msg("leaderboard fetch failed")
		http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{
		"board":       board,
		"top":         entries,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn().Err(err).Msg("encoding leaderboard response")
	}
}
