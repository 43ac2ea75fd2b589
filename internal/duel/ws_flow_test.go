package duel

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamnoseh/IQRA-sub000/internal/auth"
	"github.com/iamnoseh/IQRA-sub000/internal/duel/grading"
	"github.com/iamnoseh/IQRA-sub000/pkg/http/ws"
)

const testSecret = "ws-flow-test-secret"

type wsFixture struct {
	server   *httptest.Server
	verifier *auth.Verifier
	outcomes *outcomeRecorder
}

func newWSFixture(t *testing.T, src QuestionSource, cfg Config) *wsFixture {
	t.Helper()

	logger := zerolog.Nop()
	verifier := auth.NewVerifier([]byte(testSecret))
	hub := ws.NewHub(logger)
	registry := NewRegistry()
	matchmaker := NewMatchmaker(registry, logger)
	grader := grading.NewEngine(grading.DefaultConfig())
	outcomes := &outcomeRecorder{}
	broadcaster := NewBroadcaster(hub, logger)
	coordinator := NewCoordinator(registry, src, grader, outcomes, broadcaster, cfg, logger)
	handler := NewHandler(matchmaker, coordinator, hub, logger)

	server := httptest.NewServer(NewWSHandler(handler, verifier))
	t.Cleanup(server.Close)

	return &wsFixture{server: server, verifier: verifier, outcomes: outcomes}
}

func (f *wsFixture) dial(t *testing.T, displayName string) (*websocket.Conn, uuid.UUID) {
	t.Helper()

	playerID := uuid.New()
	token, err := f.verifier.Sign(auth.Claims{UserID: playerID, DisplayName: displayName}, time.Minute)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, playerID
}

func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ws.Message{Type: msgType, Payload: data}))
}

// readUntil drains messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) ws.Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", msgType)
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	f := newWSFixture(t, &stubQuestionSource{batch: testQuestions(1)}, defaultTestConfig(1))

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestWebSocketDuelFlow(t *testing.T) {
	cfg := defaultTestConfig(1)
	cfg.ReviewDelay = 10 * time.Millisecond
	f := newWSFixture(t, &stubQuestionSource{batch: testQuestions(1)}, cfg)

	c1, p1 := f.dial(t, "alice")
	c2, p2 := f.dial(t, "bob")

	// First player waits, second player completes the pair.
	sendMsg(t, c1, ws.TypeFindMatch, ws.FindMatchPayload{SubjectID: 9})
	readUntil(t, c1, ws.TypeWaitingForMatch)

	sendMsg(t, c2, ws.TypeFindMatch, ws.FindMatchPayload{SubjectID: 9})

	var found ws.MatchFoundPayload
	msg := readUntil(t, c1, ws.TypeMatchFound)
	require.NoError(t, json.Unmarshal(msg.Payload, &found))
	readUntil(t, c2, ws.TypeMatchFound)

	assert.Equal(t, StatusStarting, found.Status)
	assert.Equal(t, p1.String(), found.Player1.UserID)
	assert.Equal(t, p2.String(), found.Player2.UserID)

	sendMsg(t, c1, ws.TypeClientReady, ws.ClientReadyPayload{SessionID: found.SessionID})
	sendMsg(t, c2, ws.TypeClientReady, ws.ClientReadyPayload{SessionID: found.SessionID})

	var q1 ws.QuestionStartPayload
	msg = readUntil(t, c1, ws.TypeQuestionStart)
	require.NoError(t, json.Unmarshal(msg.Payload, &q1))
	readUntil(t, c2, ws.TypeQuestionStart)

	assert.Equal(t, 0, q1.Index)
	assert.Equal(t, 30, q1.TimeLimitSeconds)
	require.Len(t, q1.Question.Options, 2)

	// Winner answers correctly, the opponent does not.
	sendMsg(t, c1, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{SessionID: found.SessionID, QuestionIndex: 0, Answer: "1"})
	var ack ws.AnswerResultPayload
	msg = readUntil(t, c1, ws.TypeAnswerResult)
	require.NoError(t, json.Unmarshal(msg.Payload, &ack))
	assert.True(t, ack.Accepted)

	sendMsg(t, c2, ws.TypeSubmitAnswer, ws.SubmitAnswerPayload{SessionID: found.SessionID, QuestionIndex: 0, Answer: "2"})

	var round ws.RoundResultPayload
	msg = readUntil(t, c1, ws.TypeRoundResult)
	require.NoError(t, json.Unmarshal(msg.Payload, &round))
	assert.True(t, round.IsCorrect)
	assert.Equal(t, 10, round.MyTotalScore)
	assert.Equal(t, 0, round.OpponentScore)
	assert.True(t, round.IsDuelFinished)

	msg = readUntil(t, c2, ws.TypeRoundResult)
	require.NoError(t, json.Unmarshal(msg.Payload, &round))
	assert.False(t, round.IsCorrect)
	assert.Equal(t, 10, round.OpponentScore)

	var finished ws.DuelFinishedPayload
	msg = readUntil(t, c1, ws.TypeDuelFinished)
	require.NoError(t, json.Unmarshal(msg.Payload, &finished))
	require.NotNil(t, finished.WinnerID)
	assert.Equal(t, p1.String(), *finished.WinnerID)
	assert.Equal(t, StatusFinished, finished.Status)
	readUntil(t, c2, ws.TypeDuelFinished)

	outcomes := f.outcomes.all()
	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].WinnerID)
	assert.Equal(t, p1, *outcomes[0].WinnerID)
}

func TestWebSocketDisconnectForfeits(t *testing.T) {
	f := newWSFixture(t, &stubQuestionSource{batch: testQuestions(3)}, defaultTestConfig(3))

	c1, _ := f.dial(t, "alice")
	c2, p2 := f.dial(t, "bob")

	sendMsg(t, c1, ws.TypeFindMatch, ws.FindMatchPayload{SubjectID: 9})
	readUntil(t, c1, ws.TypeWaitingForMatch)
	sendMsg(t, c2, ws.TypeFindMatch, ws.FindMatchPayload{SubjectID: 9})

	var found ws.MatchFoundPayload
	msg := readUntil(t, c1, ws.TypeMatchFound)
	require.NoError(t, json.Unmarshal(msg.Payload, &found))
	readUntil(t, c2, ws.TypeMatchFound)

	sendMsg(t, c1, ws.TypeClientReady, ws.ClientReadyPayload{SessionID: found.SessionID})
	sendMsg(t, c2, ws.TypeClientReady, ws.ClientReadyPayload{SessionID: found.SessionID})
	readUntil(t, c1, ws.TypeQuestionStart)
	readUntil(t, c2, ws.TypeQuestionStart)

	c1.Close()

	var finished ws.DuelFinishedPayload
	msg = readUntil(t, c2, ws.TypeDuelFinished)
	require.NoError(t, json.Unmarshal(msg.Payload, &finished))
	require.NotNil(t, finished.WinnerID)
	assert.Equal(t, p2.String(), *finished.WinnerID)
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	f := newWSFixture(t, &stubQuestionSource{batch: testQuestions(1)}, defaultTestConfig(1))

	c1, _ := f.dial(t, "alice")
	sendMsg(t, c1, "telemetry", struct{}{})

	var errPayload ws.DuelErrorPayload
	msg := readUntil(t, c1, ws.TypeDuelError)
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.NotEmpty(t, errPayload.Code)
}
