package gamification

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	xpKey     = "gamification:xp"
	ratingKey = "gamification:rating"
	winsKey   = "gamification:duel_wins"
	lossesKey = "gamification:duel_losses"

	initialRating = 1000
)

// Service keeps experience points and duel ratings in Redis sorted sets and
// fans duel events out over pub/sub. It implements Recorder.
type Service struct {
	rdb           *redis.Client
	kFactor       float64
	eventsChannel string
}

// NewService creates a Redis-backed gamification service.
func NewService(rdb *redis.Client, eloKFactor int, eventsChannel string) *Service {
	return &Service{
		rdb:           rdb,
		kFactor:       float64(eloKFactor),
		eventsChannel: eventsChannel,
	}
}

// AddExperience credits xp to a player's lifetime total.
func (s *Service) AddExperience(ctx context.Context, playerID uuid.UUID, xp int) error {
	if err := s.rdb.ZIncrBy(ctx, xpKey, float64(xp), playerID.String()).Err(); err != nil {
		return fmt.Errorf("incrementing xp: %w", err)
	}
	return nil
}

// RecordDuelResult applies an Elo update for a decisive duel and bumps the
// win/loss counters. Ties never reach this method.
func (s *Service) RecordDuelResult(ctx context.Context, winnerID, loserID uuid.UUID) error {
	winnerRating, err := s.currentRating(ctx, winnerID)
	if err != nil {
		return err
	}
	loserRating, err := s.currentRating(ctx, loserID)
	if err != nil {
		return err
	}

	expectedWin := 1 / (1 + math.Pow(10, (loserRating-winnerRating)/400))
	delta := s.kFactor * (1 - expectedWin)

	// ZIncrBy would start absent members at 0; write the absolute ratings so
	// unrated players are seeded from the initial value.
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, ratingKey,
		redis.Z{Score: winnerRating + delta, Member: winnerID.String()},
		redis.Z{Score: loserRating - delta, Member: loserID.String()},
	)
	pipe.ZIncrBy(ctx, winsKey, 1, winnerID.String())
	pipe.ZIncrBy(ctx, lossesKey, 1, loserID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("applying rating update: %w", err)
	}
	return nil
}

// PublishEvent sends a duel event to the notification channel.
func (s *Service) PublishEvent(ctx context.Context, evt DuelEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshaling duel event: %w", err)
	}
	if err := s.rdb.Publish(ctx, s.eventsChannel, data).Err(); err != nil {
		return fmt.Errorf("publishing duel event: %w", err)
	}
	return nil
}

// Rating returns a player's current duel rating.
func (s *Service) Rating(ctx context.Context, playerID uuid.UUID) (float64, error) {
	return s.currentRating(ctx, playerID)
}

func (s *Service) currentRating(ctx context.Context, playerID uuid.UUID) (float64, error) {
	rating, err := s.rdb.ZScore(ctx, ratingKey, playerID.String()).Result()
	if err == redis.Nil {
		return initialRating, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading rating: %w", err)
	}
	return rating, nil
}
