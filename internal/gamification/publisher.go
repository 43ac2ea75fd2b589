package gamification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Outcome carries finished-duel data across the collaborator boundary.
type Outcome struct {
	SessionID uuid.UUID
	SubjectID int64
	Players   [2]PlayerResult
	WinnerID  *uuid.UUID
}

// PlayerResult is one player's final standing in a duel.
type PlayerResult struct {
	ID          uuid.UUID
	DisplayName string
	Score       int
}

// Recorder is the external gamification collaborator.
type Recorder interface {
	AddExperience(ctx context.Context, playerID uuid.UUID, xp int) error
	RecordDuelResult(ctx context.Context, winnerID, loserID uuid.UUID) error
	PublishEvent(ctx context.Context, evt DuelEvent) error
}

// DuelEvent is broadcast to the notification pipeline when a duel finishes.
type DuelEvent struct {
	Type       string        `json:"type"`
	SessionID  string        `json:"session_id"`
	SubjectID  int64         `json:"subject_id"`
	WinnerID   *string       `json:"winner_id"`
	Players    []PlayerAward `json:"players"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// PlayerAward reports what a player earned from a duel.
type PlayerAward struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	XPAwarded   int    `json:"xp_awarded"`
}

const eventDuelCompleted = "duel_completed"

// Publisher finalizes finished duels: XP awards, the win/loss rating update,
// and the completion event. All calls are fire-and-forget relative to the
// round-result broadcast; failures are logged and never retried here.
type Publisher struct {
	recorder    Recorder
	winnerBonus int
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewPublisher creates an outcome publisher.
func NewPublisher(recorder Recorder, winnerBonusXP int, logger zerolog.Logger) *Publisher {
	return &Publisher{
		recorder:    recorder,
		winnerBonus: winnerBonusXP,
		timeout:     5 * time.Second,
		logger:      logger.With().Str("component", "outcome_publisher").Logger(),
	}
}

// Publish finalizes the outcome on a detached goroutine.
func (p *Publisher) Publish(outcome Outcome) {
	go p.publish(outcome)
}

func (p *Publisher) publish(outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Str("session_id", outcome.SessionID.String()).Msg("outcome publishing panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	awards := make([]PlayerAward, 0, 2)
	for _, player := range outcome.Players {
		xp := player.Score
		if outcome.WinnerID != nil && *outcome.WinnerID == player.ID {
			xp += p.winnerBonus
		}
		if err := p.recorder.AddExperience(ctx, player.ID, xp); err != nil {
			p.logger.Warn().Err(err).Str("player_id", player.ID.String()).Msg("xp update failed")
		}
		awards = append(awards, PlayerAward{
			PlayerID:    player.ID.String(),
			DisplayName: player.DisplayName,
			Score:       player.Score,
			XPAwarded:   xp,
		})
	}

	var winnerStr *string
	if outcome.WinnerID != nil {
		loserID := outcome.Players[0].ID
		if loserID == *outcome.WinnerID {
			loserID = outcome.Players[1].ID
		}
		if err := p.recorder.RecordDuelResult(ctx, *outcome.WinnerID, loserID); err != nil {
			p.logger.Warn().Err(err).Str("session_id", outcome.SessionID.String()).Msg("rating update failed")
		}
		s := outcome.WinnerID.String()
		winnerStr = &s
	}

	evt := DuelEvent{
		Type:       eventDuelCompleted,
		SessionID:  outcome.SessionID.String(),
		SubjectID:  outcome.SubjectID,
		WinnerID:   winnerStr,
		Players:    awards,
		OccurredAt: time.Now(),
	}
	if err := p.recorder.PublishEvent(ctx, evt); err != nil {
		p.logger.Warn().Err(err).Str("session_id", outcome.SessionID.String()).Msg("duel event publish failed")
	}
}
