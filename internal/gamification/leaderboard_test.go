package gamification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopOrdersByScoreDescending(t *testing.T) {
	svc, _, client := newTestService(t)
	ctx := context.Background()

	first, second, third := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, client.ZAdd(ctx, ratingKey,
		redis.Z{Score: 900, Member: third.String()},
		redis.Z{Score: 1200, Member: first.String()},
		redis.Z{Score: 1100, Member: second.String()},
	).Err())

	entries, err := svc.Top(ctx, BoardRating, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, first.String(), entries[0].PlayerID)
	assert.Equal(t, float64(1200), entries[0].Score)
	assert.Equal(t, second.String(), entries[1].PlayerID)
}

func TestTopUnknownBoard(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Top(context.Background(), "streaks", 10)
	assert.Error(t, err)
}

func TestLeaderboardHandler(t *testing.T) {
	svc, _, client := newTestService(t)
	ctx := context.Background()

	player := uuid.New()
	require.NoError(t, client.ZAdd(ctx, xpKey, redis.Z{Score: 420, Member: player.String()}).Err())

	handler := NewLeaderboardHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/v1/duels/leaderboards/xp?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Board string             `json:"board"`
		Top   []LeaderboardEntry `json:"top"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, BoardXP, resp.Board)
	require.Len(t, resp.Top, 1)
	assert.Equal(t, player.String(), resp.Top[0].PlayerID)
	assert.Equal(t, float64(420), resp.Top[0].Score)
}

func TestLeaderboardHandlerRejectsUnknownBoardAndMethod(t *testing.T) {
	svc, _, _ := newTestService(t)
	handler := NewLeaderboardHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	handler.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/v1/duels/leaderboards/streaks", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.HandleGet(rec, httptest.NewRequest(http.MethodPost, "/v1/duels/leaderboards/xp", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
