package duel

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Matchmaker keeps one FIFO waiting queue per subject and pairs players into
// sessions. The queue mutex is released before the registry is touched.
type Matchmaker struct {
	registry *Registry
	logger   zerolog.Logger

	mu     sync.Mutex
	queues map[int64][]*waitingEntry
}

// waitingEntry is a lone player occupying a subject queue.
type waitingEntry struct {
	PlayerID    uuid.UUID
	DisplayName string
	Avatar      string
	SubjectID   int64
	QueuedAt    time.Time
}

// NewMatchmaker creates a matchmaker over the given session registry.
func NewMatchmaker(registry *Registry, logger zerolog.Logger) *Matchmaker {
	return &Matchmaker{
		registry: registry,
		logger:   logger,
		queues:   make(map[int64][]*waitingEntry),
	}
}

// Enqueue pairs the caller with the oldest waiting player for the subject,
// or queues the caller and returns nil. A player is never paired with
// themselves; re-enqueueing refreshes the existing entry instead of
// duplicating it.
func (m *Matchmaker) Enqueue(playerID uuid.UUID, displayName, avatar string, subjectID int64) *Session {
	m.mu.Lock()

	queue := m.queues[subjectID]
	var opponent *waitingEntry
	for i, entry := range queue {
		if entry.PlayerID == playerID {
			continue // self-match is forbidden
		}
		opponent = entry
		m.queues[subjectID] = append(queue[:i:i], queue[i+1:]...)
		break
	}

	if opponent == nil {
		for _, entry := range queue {
			if entry.PlayerID == playerID {
				entry.DisplayName = displayName
				entry.Avatar = avatar
				entry.QueuedAt = time.Now()
				m.mu.Unlock()
				return nil
			}
		}
		m.queues[subjectID] = append(queue, &waitingEntry{
			PlayerID:    playerID,
			DisplayName: displayName,
			Avatar:      avatar,
			SubjectID:   subjectID,
			QueuedAt:    time.Now(),
		})
		m.mu.Unlock()

		queueDepth.Inc()
		m.logger.Info().
			Str("player_id", playerID.String()).
			Int64("subject_id", subjectID).
			Msg("player enqueued")
		return nil
	}
	m.mu.Unlock()

	queueDepth.Dec()
	sess := newSession(subjectID,
		&PlayerInfo{ID: opponent.PlayerID, DisplayName: opponent.DisplayName, Avatar: opponent.Avatar},
		&PlayerInfo{ID: playerID, DisplayName: displayName, Avatar: avatar},
	)
	m.registry.Insert(sess)
	duelsPaired.Inc()

	m.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("player1", opponent.PlayerID.String()).
		Str("player2", playerID.String()).
		Int64("subject_id", subjectID).
		Msg("players paired")
	return sess
}

// Remove drops a waiting entry, e.g. when the player disconnects before a
// match is found. Removing an unknown player is a no-op.
func (m *Matchmaker) Remove(playerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for subjectID, queue := range m.queues {
		for i, entry := range queue {
			if entry.PlayerID == playerID {
				m.queues[subjectID] = append(queue[:i:i], queue[i+1:]...)
				queueDepth.Dec()
				return
			}
		}
	}
}

// Waiting reports the queue length for a subject.
func (m *Matchmaker) Waiting(subjectID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.queues[subjectID])
}
