package grading

import (
	"strconv"
	"strings"

	"github.com/iamnoseh/IQRA-sub000/internal/question"
)

// Config holds configurable grading constants.
type Config struct {
	PointsPerCorrect int // default: 10
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{PointsPerCorrect: 10}
}

// Engine grades raw answer submissions against the authoritative question
// record. It is stateless; duels award a fixed per-round point value with no
// time bonus and no partial credit, unlike solo test scoring.
type Engine struct {
	config Config
}

// NewEngine creates a grading engine with the provided config.
func NewEngine(config Config) *Engine {
	if config.PointsPerCorrect <= 0 {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// HasAnswerKey reports whether the question carries a usable answer key.
// Submissions against keyless records are rejected rather than graded.
func (e *Engine) HasAnswerKey(q question.Question) bool {
	switch q.Kind {
	case question.KindSingleChoice:
		_, ok := q.CorrectOptionID()
		return ok
	case question.KindClosed:
		return strings.TrimSpace(q.ClosedAnswer) != ""
	case question.KindMatching:
		for _, opt := range q.Options {
			if opt.MatchText != "" {
				return true
			}
		}
	}
	return false
}

// Grade returns the correctness verdict for a raw submitted answer.
func (e *Engine) Grade(q question.Question, raw string) bool {
	switch q.Kind {
	case question.KindSingleChoice:
		return gradeSingleChoice(q, raw)
	case question.KindClosed:
		return gradeClosed(q, raw)
	case question.KindMatching:
		return gradeMatching(q, raw)
	}
	return false
}

// Points maps a verdict to the fixed per-round award.
func (e *Engine) Points(correct bool) int {
	if !correct {
		return 0
	}
	return e.config.PointsPerCorrect
}

func gradeSingleChoice(q question.Question, raw string) bool {
	chosen, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return false
	}
	correctID, ok := q.CorrectOptionID()
	return ok && chosen == correctID
}

func gradeClosed(q question.Question, raw string) bool {
	want := strings.TrimSpace(q.ClosedAnswer)
	if want == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(raw), want)
}

// gradeMatching expects a comma-delimited list of "leftId:rightText" pairs.
// Every option carrying a match target must be paired with its target text;
// anything less is incorrect.
func gradeMatching(q question.Question, raw string) bool {
	pairs := make(map[int64]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idStr, text, ok := strings.Cut(part, ":")
		if !ok {
			return false
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return false
		}
		pairs[id] = strings.TrimSpace(text)
	}

	matched := false
	for _, opt := range q.Options {
		if opt.MatchText == "" {
			continue
		}
		matched = true
		submitted, ok := pairs[opt.ID]
		if !ok || !strings.EqualFold(submitted, strings.TrimSpace(opt.MatchText)) {
			return false
		}
	}
	return matched
}
