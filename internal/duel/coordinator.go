package duel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iamnoseh/IQRA-sub000/internal/duel/grading"
	"github.com/iamnoseh/IQRA-sub000/internal/gamification"
	"github.com/iamnoseh/IQRA-sub000/internal/question"
	httperrors "github.com/iamnoseh/IQRA-sub000/pkg/http/errors"
	"github.com/iamnoseh/IQRA-sub000/pkg/http/ws"
)

// QuestionSource supplies the question batch for a duel.
type QuestionSource interface {
	FetchBatch(ctx context.Context, subjectID int64, count int) ([]question.Question, error)
}

// OutcomePublisher receives the final outcome of a finished duel.
type OutcomePublisher interface {
	Publish(outcome gamification.Outcome)
}

// Events is the outbound notification surface of the coordinator. All calls
// happen outside session locks.
type Events interface {
	QuestionStarted(sessionID uuid.UUID, payload ws.QuestionStartPayload)
	RoundResolved(sessionID uuid.UUID, perPlayer map[uuid.UUID]ws.RoundResultPayload)
	DuelEnded(sessionID uuid.UUID, payload ws.DuelFinishedPayload)
	DuelFailed(sessionID uuid.UUID, code, message string)
}

// Config holds the timing and sizing knobs of a duel.
type Config struct {
	QuestionCount     int
	QuestionTimeLimit time.Duration
	ReadinessTimeout  time.Duration
	ReviewDelay       time.Duration
	FetchTimeout      time.Duration
}

// SubmitResult reports what happened to a single answer submission.
type SubmitResult struct {
	Accepted     bool
	IsCorrect    bool
	PointsEarned int
	BothAnswered bool
	DuelFinished bool
}

// Coordinator drives duel sessions from the starting phase through rounds to
// a terminal state. All state transitions happen under the session mutex;
// notifications and outcome publishing happen after it is released.
type Coordinator struct {
	registry  *Registry
	questions QuestionSource
	grader    *grading.Engine
	publisher OutcomePublisher
	events    Events
	cfg       Config
	logger    zerolog.Logger
}

// NewCoordinator creates a duel coordinator.
func NewCoordinator(registry *Registry, questions QuestionSource, grader *grading.Engine, publisher OutcomePublisher, events Events, cfg Config, logger zerolog.Logger) *Coordinator {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	return &Coordinator{
		registry:  registry,
		questions: questions,
		grader:    grader,
		publisher: publisher,
		events:    events,
		cfg:       cfg,
		logger:    logger.With().Str("component", "duel_coordinator").Logger(),
	}
}

// StartDuel arms the readiness timeout for a freshly paired session and
// fetches its question batch in the background.
func (c *Coordinator) StartDuel(sess *Session) {
	sess.mu.Lock()
	sess.readyTimer = time.AfterFunc(c.cfg.ReadinessTimeout, func() {
		c.expire(sess.ID)
	})
	sess.mu.Unlock()

	go c.loadQuestions(sess)
}

func (c *Coordinator) loadQuestions(sess *Session) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("session_id", sess.ID.String()).Msg("question loading panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FetchTimeout)
	defer cancel()

	batch, err := c.questions.FetchBatch(ctx, sess.SubjectID, c.cfg.QuestionCount)
	if err != nil {
		c.logger.Error().Err(err).Str("session_id", sess.ID.String()).Int64("subject_id", sess.SubjectID).Msg("question fetch failed")
		batch = nil
	}
	c.setQuestions(sess, batch)
}

func (c *Coordinator) setQuestions(sess *Session, batch []question.Question) {
	sess.mu.Lock()
	if sess.Status != StatusStarting {
		sess.mu.Unlock()
		return
	}

	if len(batch) == 0 {
		sess.Status = StatusCancelled
		sess.stopReadyTimer()
		sess.mu.Unlock()

		duelsCancelled.Inc()
		c.events.DuelFailed(sess.ID, httperrors.ErrCodeNoQuestions, "no questions available for this subject")
		c.registry.Remove(sess.ID)
		return
	}

	sess.Questions = batch
	sess.QuestionsReady = true
	start := c.maybeStartLocked(sess)
	sess.mu.Unlock()

	if start != nil {
		duelsStarted.Inc()
		c.events.QuestionStarted(sess.ID, *start)
	}
}

// Ready marks a player as ready. The duel begins once both players are ready
// and the question batch has arrived.
func (c *Coordinator) Ready(sessionID, playerID uuid.UUID) bool {
	sess := c.registry.Get(sessionID)
	if sess == nil {
		return false
	}

	sess.mu.Lock()
	if sess.Status != StatusStarting {
		sess.mu.Unlock()
		return false
	}
	slot := sess.playerSlot(playerID)
	if slot < 0 {
		sess.mu.Unlock()
		return false
	}
	sess.Players[slot].Ready = true
	start := c.maybeStartLocked(sess)
	sess.mu.Unlock()

	if start != nil {
		duelsStarted.Inc()
		c.events.QuestionStarted(sess.ID, *start)
	}
	return true
}

// maybeStartLocked transitions Starting to InProgress when both players are
// ready and questions are loaded. Caller holds the session lock. Returns the
// first question payload to emit after unlocking, or nil.
func (c *Coordinator) maybeStartLocked(sess *Session) *ws.QuestionStartPayload {
	if sess.Status != StatusStarting || !sess.QuestionsReady {
		return nil
	}
	if !sess.Players[0].Ready || !sess.Players[1].Ready {
		return nil
	}

	sess.Status = StatusInProgress
	sess.CurrentIndex = 0
	sess.stopReadyTimer()

	payload := c.questionPayloadLocked(sess)
	return &payload
}

func (c *Coordinator) questionPayloadLocked(sess *Session) ws.QuestionStartPayload {
	q := sess.Questions[sess.CurrentIndex]
	return ws.QuestionStartPayload{
		SessionID:        sess.ID.String(),
		Question:         question.ClientView(q),
		Index:            sess.CurrentIndex,
		TimeLimitSeconds: int(c.cfg.QuestionTimeLimit.Seconds()),
	}
}

// Submit grades one player's answer for the current question. Duplicate,
// stale, and out-of-phase submissions are rejected without side effects.
func (c *Coordinator) Submit(sessionID, playerID uuid.UUID, questionIndex int, raw string) SubmitResult {
	sess := c.registry.Get(sessionID)
	if sess == nil {
		return SubmitResult{}
	}

	sess.mu.Lock()
	if sess.Status != StatusInProgress || questionIndex != sess.CurrentIndex {
		sess.mu.Unlock()
		submissions.WithLabelValues(submissionRejected).Inc()
		return SubmitResult{}
	}
	slot := sess.playerSlot(playerID)
	if slot < 0 || sess.answered[slot] {
		sess.mu.Unlock()
		submissions.WithLabelValues(submissionRejected).Inc()
		return SubmitResult{}
	}

	q := sess.Questions[sess.CurrentIndex]
	if !c.grader.HasAnswerKey(q) {
		sess.mu.Unlock()
		submissions.WithLabelValues(submissionRejected).Inc()
		c.logger.Warn().Str("session_id", sessionID.String()).Str("question_id", q.ID).Msg("question has no answer key")
		return SubmitResult{}
	}

	correct := c.grader.Grade(q, raw)
	points := c.grader.Points(correct)

	sess.answered[slot] = true
	sess.answeredCount++
	sess.roundCorrect[slot] = correct
	sess.roundPoints[slot] = points
	sess.Players[slot].Score += points

	result := SubmitResult{Accepted: true, IsCorrect: correct, PointsEarned: points}

	if sess.answeredCount < 2 {
		sess.mu.Unlock()
		submissions.WithLabelValues(submissionAccepted).Inc()
		return result
	}

	result.BothAnswered = true
	resolvedIndex := sess.CurrentIndex
	lastRound := resolvedIndex == len(sess.Questions)-1

	perPlayer := make(map[uuid.UUID]ws.RoundResultPayload, 2)
	for i := 0; i < 2; i++ {
		me, opp := sess.Players[i], sess.Players[1-i]
		perPlayer[me.ID] = ws.RoundResultPayload{
			SessionID:        sess.ID.String(),
			QuestionIndex:    resolvedIndex,
			IsCorrect:        sess.roundCorrect[i],
			CorrectAnswerRef: q.CorrectRef(),
			MyTotalScore:     me.Score,
			OpponentScore:    opp.Score,
			PointsEarned:     sess.roundPoints[i],
			IsDuelFinished:   lastRound,
		}
	}

	var finished *ws.DuelFinishedPayload
	var outcome *gamification.Outcome
	var next *ws.QuestionStartPayload

	if lastRound {
		result.DuelFinished = true
		sess.Status = StatusFinished
		if !sess.finalized {
			sess.finalized = true
			f, o := c.finishPayloadsLocked(sess)
			finished, outcome = &f, &o
		}
	} else {
		sess.resetRound()
		p := c.questionPayloadLocked(sess)
		next = &p
	}
	sess.mu.Unlock()

	submissions.WithLabelValues(submissionAccepted).Inc()
	c.events.RoundResolved(sessionID, perPlayer)

	if finished != nil {
		duelsFinished.Inc()
		c.publisher.Publish(*outcome)
		c.registry.Remove(sessionID)
		finishedCopy := *finished
		time.AfterFunc(c.cfg.ReviewDelay, func() {
			c.events.DuelEnded(sessionID, finishedCopy)
		})
		return result
	}

	nextCopy := *next
	time.AfterFunc(c.cfg.ReviewDelay, func() {
		sess.mu.Lock()
		stale := sess.Status != StatusInProgress || sess.CurrentIndex != nextCopy.Index
		sess.mu.Unlock()
		if stale {
			return
		}
		c.events.QuestionStarted(sessionID, nextCopy)
	})
	return result
}

// Forfeit resolves an in-progress duel as a win for the remaining player.
// Sessions still in the starting phase are left to the readiness timeout.
func (c *Coordinator) Forfeit(playerID uuid.UUID) {
	sess := c.registry.ByPlayer(playerID)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	if sess.Status != StatusInProgress || sess.finalized {
		sess.mu.Unlock()
		return
	}
	sess.Status = StatusFinished
	sess.finalized = true

	slot := sess.playerSlot(playerID)
	winner := sess.Players[1-slot]
	finished, outcome := c.finishPayloadsLocked(sess)
	winnerID := winner.ID
	finished.WinnerID = strPtr(winnerID.String())
	outcome.WinnerID = &winnerID
	sess.mu.Unlock()

	c.logger.Info().Str("session_id", sess.ID.String()).Str("forfeiter_id", playerID.String()).Msg("duel resolved by forfeit")
	duelsFinished.Inc()
	c.publisher.Publish(outcome)
	c.events.DuelEnded(sess.ID, finished)
	c.registry.Remove(sess.ID)
}

// expire cancels a session whose players did not both confirm readiness.
func (c *Coordinator) expire(sessionID uuid.UUID) {
	sess := c.registry.Get(sessionID)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	if sess.Status != StatusStarting {
		sess.mu.Unlock()
		return
	}
	sess.Status = StatusCancelled
	sess.mu.Unlock()

	c.logger.Info().Str("session_id", sessionID.String()).Msg("duel cancelled on readiness timeout")
	duelsCancelled.Inc()
	c.events.DuelFailed(sessionID, httperrors.ErrCodeReadinessTimeout, "opponent did not confirm readiness in time")
	c.registry.Remove(sessionID)
}

// finishPayloadsLocked builds the terminal payload and outcome from final
// scores. Caller holds the session lock.
func (c *Coordinator) finishPayloadsLocked(sess *Session) (ws.DuelFinishedPayload, gamification.Outcome) {
	p1, p2 := sess.Players[0], sess.Players[1]

	var winnerID *uuid.UUID
	if p1.Score > p2.Score {
		winnerID = &p1.ID
	} else if p2.Score > p1.Score {
		winnerID = &p2.ID
	}

	payload := ws.DuelFinishedPayload{
		SessionID: sess.ID.String(),
		Player1:   ws.Player{UserID: p1.ID.String(), DisplayName: p1.DisplayName, Avatar: p1.Avatar, Score: p1.Score},
		Player2:   ws.Player{UserID: p2.ID.String(), DisplayName: p2.DisplayName, Avatar: p2.Avatar, Score: p2.Score},
		Status:    StatusFinished,
	}
	if winnerID != nil {
		payload.WinnerID = strPtr(winnerID.String())
	}

	outcome := gamification.Outcome{
		SessionID: sess.ID,
		SubjectID: sess.SubjectID,
		Players: [2]gamification.PlayerResult{
			{ID: p1.ID, DisplayName: p1.DisplayName, Score: p1.Score},
			{ID: p2.ID, DisplayName: p2.DisplayName, Score: p2.Score},
		},
		WinnerID: winnerID,
	}
	return payload, outcome
}

func strPtr(s string) *string { return &s }
