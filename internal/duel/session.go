package duel

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamnoseh/IQRA-sub000/internal/question"
)

// Session is the full mutable state of one duel from pairing to termination.
// Every field below the mutex is guarded by it; the question list is
// immutable once questionsReady is set. The registry and matchmaker locks
// are never taken while a session lock is held.
type Session struct {
	ID        uuid.UUID
	SubjectID int64
	CreatedAt time.Time

	mu             sync.Mutex
	Players        [2]*PlayerInfo
	Questions      []question.Question
	QuestionsReady bool
	CurrentIndex   int // -1 until both players are ready and questions loaded
	Status         string

	answered      [2]bool
	answeredCount int
	roundCorrect  [2]bool
	roundPoints   [2]int
	finalized     bool
	readyTimer    *time.Timer
}

func newSession(subjectID int64, p1, p2 *PlayerInfo) *Session {
	return &Session{
		ID:           uuid.New(),
		SubjectID:    subjectID,
		CreatedAt:    time.Now(),
		Players:      [2]*PlayerInfo{p1, p2},
		CurrentIndex: -1,
		Status:       StatusStarting,
	}
}

// playerSlot returns 0 or 1 for a participant, -1 otherwise.
// Caller must hold the session lock.
func (s *Session) playerSlot(playerID uuid.UUID) int {
	for i, p := range s.Players {
		if p != nil && p.ID == playerID {
			return i
		}
	}
	return -1
}

// stopReadyTimer disarms the readiness timeout if still pending.
// Caller must hold the session lock.
func (s *Session) stopReadyTimer() {
	if s.readyTimer != nil {
		s.readyTimer.Stop()
		s.readyTimer = nil
	}
}

// resetRound clears per-round submission state and advances the index.
// Caller must hold the session lock.
func (s *Session) resetRound() {
	s.answered = [2]bool{}
	s.answeredCount = 0
	s.CurrentIndex++
}
