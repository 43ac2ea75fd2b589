package duel

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/iamnoseh/IQRA-sub000/pkg/http/errors"
	"github.com/iamnoseh/IQRA-sub000/pkg/http/ws"
)

// Handler owns the WebSocket side of duels: connection lifecycle and routing
// of client messages to the matchmaker and coordinator.
type Handler struct {
	matchmaker  *Matchmaker
	coordinator *Coordinator
	hub         *ws.Hub
	logger      zerolog.Logger
}

// NewHandler creates a duel WebSocket handler.
func NewHandler(matchmaker *Matchmaker, coordinator *Coordinator, hub *ws.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		matchmaker:  matchmaker,
		coordinator: coordinator,
		hub:         hub,
		logger:      logger,
	}
}

// HandleConnection processes an authenticated WebSocket connection until the
// peer disconnects. Disconnecting forfeits any in-progress duel.
func (h *Handler) HandleConnection(conn *websocket.Conn, playerID uuid.UUID, displayName, avatar string) {
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.RegisterConnection(playerID, wsConn)

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(playerID, displayName, avatar, msg)
	})

	h.hub.UnregisterConnection(playerID)
	h.matchmaker.Remove(playerID)
	h.coordinator.Forfeit(playerID)
}

// handleMessage routes incoming WebSocket messages.
func (h *Handler) handleMessage(playerID uuid.UUID, displayName, avatar string, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeFindMatch:
		return h.handleFindMatch(playerID, displayName, avatar, msg.Payload)
	case ws.TypeClientReady:
		return h.handleClientReady(playerID, msg.Payload)
	case ws.TypeSubmitAnswer:
		return h.handleSubmitAnswer(playerID, msg.Payload)
	case ws.TypePing:
		return h.hub.SendToPlayer(playerID, ws.Message{Type: ws.TypePong})
	default:
		return h.sendError(playerID, "", httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) handleFindMatch(playerID uuid.UUID, displayName, avatar string, payload json.RawMessage) error {
	var req ws.FindMatchPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, "", httperrors.ErrCodeInvalidPayload, "Invalid find_match payload")
	}
	if req.SubjectID <= 0 {
		return h.sendError(playerID, "", httperrors.ErrCodeEnqueueFailed, "Invalid subject id")
	}

	sess := h.matchmaker.Enqueue(playerID, displayName, avatar, req.SubjectID)
	if sess == nil {
		update := ws.WaitingForMatchPayload{SubjectID: req.SubjectID, Status: StatusWaiting}
		msg := ws.Message{Type: ws.TypeWaitingForMatch}
		msg.Payload, _ = json.Marshal(update)
		return h.hub.SendToPlayer(playerID, msg)
	}

	for _, p := range sess.Players {
		h.hub.JoinSession(sess.ID, p.ID)
	}

	found := ws.MatchFoundPayload{
		SessionID: sess.ID.String(),
		Player1:   ws.Player{UserID: sess.Players[0].ID.String(), DisplayName: sess.Players[0].DisplayName, Avatar: sess.Players[0].Avatar},
		Player2:   ws.Player{UserID: sess.Players[1].ID.String(), DisplayName: sess.Players[1].DisplayName, Avatar: sess.Players[1].Avatar},
		Status:    StatusStarting,
	}
	msg := ws.Message{Type: ws.TypeMatchFound}
	msg.Payload, _ = json.Marshal(found)
	if err := h.hub.BroadcastToSession(sess.ID, msg); err != nil {
		h.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("match_found broadcast incomplete")
	}

	h.coordinator.StartDuel(sess)
	return nil
}

func (h *Handler) handleClientReady(playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.ClientReadyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, "", httperrors.ErrCodeInvalidPayload, "Invalid client_ready payload")
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return h.sendError(playerID, req.SessionID, httperrors.ErrCodeInvalidSessionID, "Invalid session ID")
	}

	if !h.coordinator.Ready(sessionID, playerID) {
		return h.sendError(playerID, req.SessionID, httperrors.ErrCodeReadyFailed, "Session not accepting readiness")
	}
	return nil
}

func (h *Handler) handleSubmitAnswer(playerID uuid.UUID, payload json.RawMessage) error {
	var req ws.SubmitAnswerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(playerID, "", httperrors.ErrCodeInvalidPayload, "Invalid submit_answer payload")
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return h.sendError(playerID, req.SessionID, httperrors.ErrCodeInvalidSessionID, "Invalid session ID")
	}

	result := h.coordinator.Submit(sessionID, playerID, req.QuestionIndex, req.Answer)

	ack := ws.AnswerResultPayload{
		SessionID:     req.SessionID,
		QuestionIndex: req.QuestionIndex,
		Accepted:      result.Accepted,
	}
	msg := ws.Message{Type: ws.TypeAnswerResult}
	msg.Payload, _ = json.Marshal(ack)
	return h.hub.SendToPlayer(playerID, msg)
}

func (h *Handler) sendError(playerID uuid.UUID, sessionID, code, message string) error {
	errPayload := ws.DuelErrorPayload{
		SessionID: sessionID,
		Code:      code,
		Message:   message,
	}
	msg := ws.Message{Type: ws.TypeDuelError}
	msg.Payload, _ = json.Marshal(errPayload)
	return h.hub.SendToPlayer(playerID, msg)
}
