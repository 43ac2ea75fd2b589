package question

import (
	"strconv"
	"strings"
)

// Question kinds supported in duels.
const (
	KindSingleChoice = "single_choice"
	KindMatching     = "matching"
	KindClosed       = "closed"
)

// Option is one ordered answer option of a question. MatchText is only set
// for matching questions; IsCorrect only for single choice.
type Option struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	MatchText string `json:"match_text,omitempty"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is the authoritative server-side record, answer key included.
// It must never be sent to clients as-is; use ClientView.
type Question struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	SubjectName  string   `json:"subject_name"`
	Kind         string   `json:"kind"`
	Options      []Option `json:"options"`
	ClosedAnswer string   `json:"closed_answer,omitempty"`
}

// CorrectOptionID returns the id of the option flagged correct.
func (q Question) CorrectOptionID() (int64, bool) {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID, true
		}
	}
	return 0, false
}

// CorrectRef renders a client-presentable reference to the correct answer:
// the correct option id for single choice, the answer text for closed
// questions, and the canonical pair list for matching questions.
func (q Question) CorrectRef() string {
	switch q.Kind {
	case KindSingleChoice:
		if id, ok := q.CorrectOptionID(); ok {
			return strconv.FormatInt(id, 10)
		}
		return ""
	case KindClosed:
		return q.ClosedAnswer
	case KindMatching:
		var pairs []string
		for _, opt := range q.Options {
			if opt.MatchText != "" {
				pairs = append(pairs, strconv.FormatInt(opt.ID, 10)+":"+opt.MatchText)
			}
		}
		return strings.Join(pairs, ",")
	}
	return ""
}
