package gamification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewService(client, 32, "duel:events"), mr, client
}

func TestAddExperienceAccumulates(t *testing.T) {
	svc, _, client := newTestService(t)
	ctx := context.Background()
	player := uuid.New()

	require.NoError(t, svc.AddExperience(ctx, player, 80))
	require.NoError(t, svc.AddExperience(ctx, player, 50))

	total, err := client.ZScore(ctx, xpKey, player.String()).Result()
	require.NoError(t, err)
	assert.Equal(t, float64(130), total)
}

func TestRecordDuelResultFreshPlayers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	winner, loser := uuid.New(), uuid.New()

	require.NoError(t, svc.RecordDuelResult(ctx, winner, loser))

	// Equal unrated players trade exactly half the K factor.
	winnerRating, err := svc.Rating(ctx, winner)
	require.NoError(t, err)
	loserRating, err := svc.Rating(ctx, loser)
	require.NoError(t, err)
	assert.InDelta(t, 1016, winnerRating, 0.01)
	assert.InDelta(t, 984, loserRating, 0.01)
}

func TestRecordDuelResultFavorsUnderdog(t *testing.T) {
	svc, _, client := newTestService(t)
	ctx := context.Background()
	underdog, favorite := uuid.New(), uuid.New()

	require.NoError(t, client.ZAdd(ctx, ratingKey,
		redis.Z{Score: 1200, Member: favorite.String()},
		redis.Z{Score: 800, Member: underdog.String()},
	).Err())

	require.NoError(t, svc.RecordDuelResult(ctx, underdog, favorite))

	underdogRating, err := svc.Rating(ctx, underdog)
	require.NoError(t, err)
	favoriteRating, err := svc.Rating(ctx, favorite)
	require.NoError(t, err)

	underdogGain := underdogRating - 800
	assert.Greater(t, underdogGain, 16.0)
	assert.InDelta(t, 2000, underdogRating+favoriteRating, 0.01)
}

func TestRecordDuelResultCounters(t *testing.T) {
	svc, _, client := newTestService(t)
	ctx := context.Background()
	winner, loser := uuid.New(), uuid.New()

	require.NoError(t, svc.RecordDuelResult(ctx, winner, loser))
	require.NoError(t, svc.RecordDuelResult(ctx, winner, loser))

	wins, err := client.ZScore(ctx, winsKey, winner.String()).Result()
	require.NoError(t, err)
	losses, err := client.ZScore(ctx, lossesKey, loser.String()).Result()
	require.NoError(t, err)
	assert.Equal(t, float64(2), wins)
	assert.Equal(t, float64(2), losses)
}

func TestRatingDefaultsForUnratedPlayer(t *testing.T) {
	svc, _, _ := newTestService(t)

	rating, err := svc.Rating(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, float64(initialRating), rating)
}

func TestPublishEventRoundTrips(t *testing.T) {
	svc, _, client := newTestService(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "duel:events")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	winner := uuid.New().String()
	sent := DuelEvent{
		Type:      eventDuelCompleted,
		SessionID: uuid.New().String(),
		SubjectID: 4,
		WinnerID:  &winner,
		Players: []PlayerAward{
			{PlayerID: winner, DisplayName: "alice", Score: 80, XPAwarded: 130},
		},
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, svc.PublishEvent(ctx, sent))

	select {
	case msg := <-sub.Channel():
		var got DuelEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, sent.SessionID, got.SessionID)
		assert.Equal(t, sent.Players, got.Players)
		require.NotNil(t, got.WinnerID)
		assert.Equal(t, winner, *got.WinnerID)
	case <-time.After(time.Second):
		t.Fatal("no duel event received")
	}
}
