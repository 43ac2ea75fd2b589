package duel

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iamnoseh/IQRA-sub000/pkg/http/ws"
)

// Broadcaster delivers coordinator events to connected players through the
// websocket hub.
type Broadcaster struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewBroadcaster creates a hub-backed event sink.
func NewBroadcaster(hub *ws.Hub, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With().Str("component", "duel_broadcaster").Logger(),
	}
}

func (b *Broadcaster) QuestionStarted(sessionID uuid.UUID, payload ws.QuestionStartPayload) {
	b.broadcast(sessionID, ws.TypeQuestionStart, payload)
}

func (b *Broadcaster) RoundResolved(sessionID uuid.UUID, perPlayer map[uuid.UUID]ws.RoundResultPayload) {
	for playerID, payload := range perPlayer {
		b.unicast(sessionID, playerID, ws.TypeRoundResult, payload)
	}
}

func (b *Broadcaster) DuelEnded(sessionID uuid.UUID, payload ws.DuelFinishedPayload) {
	b.broadcast(sessionID, ws.TypeDuelFinished, payload)
	b.hub.DropSession(sessionID)
}

func (b *Broadcaster) DuelFailed(sessionID uuid.UUID, code, message string) {
	b.broadcast(sessionID, ws.TypeDuelError, ws.DuelErrorPayload{
		SessionID: sessionID.String(),
		Code:      code,
		Message:   message,
	})
	b.hub.DropSession(sessionID)
}

func (b *Broadcaster) broadcast(sessionID uuid.UUID, msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error().Err(err).Str("type", msgType).Msg("marshaling broadcast payload")
		return
	}
	b.hub.BroadcastToSession(sessionID, ws.Message{Type: msgType, Payload: data})
}

func (b *Broadcaster) unicast(sessionID, playerID uuid.UUID, msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error().Err(err).Str("type", msgType).Msg("marshaling unicast payload")
		return
	}
	if err := b.hub.SendToPlayer(playerID, ws.Message{Type: msgType, Payload: data}); err != nil {
		b.logger.Debug().Err(err).Str("player_id", playerID.String()).Str("session_id", sessionID.String()).Msg("unicast dropped")
	}
}
