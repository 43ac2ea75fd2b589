package ws

import "encoding/json"

// MessageType constants for the duel WebSocket protocol.
const (
	// Client -> Server
	TypeFindMatch    = "find_match"
	TypeClientReady  = "client_ready"
	TypeSubmitAnswer = "submit_answer"

	// Server -> Client
	TypeWaitingForMatch = "waiting_for_match"
	TypeMatchFound      = "match_found"
	TypeQuestionStart   = "question_start"
	TypeAnswerResult    = "answer_result"
	TypeRoundResult     = "round_result"
	TypeDuelFinished    = "duel_finished"
	TypeDuelError       = "duel_error"
	TypePing            = "ping"
	TypePong            = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type FindMatchPayload struct {
	SubjectID int64 `json:"subject_id"`
}

type ClientReadyPayload struct {
	SessionID string `json:"session_id"`
}

type SubmitAnswerPayload struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// Server Messages (outgoing)

type WaitingForMatchPayload struct {
	SubjectID int64  `json:"subject_id"`
	Status    string `json:"status"`
}

type MatchFoundPayload struct {
	SessionID string `json:"session_id"`
	Player1   Player `json:"player1"`
	Player2   Player `json:"player2"`
	Status    string `json:"status"`
}

type Player struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Score       int    `json:"score"`
}

type QuestionStartPayload struct {
	SessionID        string         `json:"session_id"`
	Question         ClientQuestion `json:"question"`
	Index            int            `json:"index"`
	TimeLimitSeconds int            `json:"time_limit_seconds"`
}

// ClientQuestion is the client-safe view of a duel question. It never carries
// correctness flags or the authoritative closed-answer text.
type ClientQuestion struct {
	ID          string         `json:"id"`
	Content     string         `json:"content"`
	SubjectName string         `json:"subject_name"`
	Kind        string         `json:"kind"`
	Options     []ClientOption `json:"options"`
	RightColumn []string       `json:"right_column,omitempty"`
}

type ClientOption struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type AnswerResultPayload struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	Accepted      bool   `json:"accepted"`
}

type RoundResultPayload struct {
	SessionID        string `json:"session_id"`
	QuestionIndex    int    `json:"question_index"`
	IsCorrect        bool   `json:"is_correct"`
	CorrectAnswerRef string `json:"correct_answer_ref"`
	MyTotalScore     int    `json:"my_total_score"`
	OpponentScore    int    `json:"opponent_total_score"`
	PointsEarned     int    `json:"points_earned"`
	IsDuelFinished   bool   `json:"is_duel_finished"`
}

type DuelFinishedPayload struct {
	SessionID string  `json:"session_id"`
	Player1   Player  `json:"player1"`
	Player2   Player  `json:"player2"`
	WinnerID  *string `json:"winner_id"`
	Status    string  `json:"status"`
}

type DuelErrorPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}
