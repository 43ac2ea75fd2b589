package question

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/iamnoseh/IQRA-sub000/internal/db/repository"
	ws "github.com/iamnoseh/IQRA-sub000/pkg/http/ws"
)

// PoolCache defines subject-pool cache behavior (implemented by the
// Redis-backed Cache).
type PoolCache interface {
	Get(ctx context.Context, subjectID int64) ([]Question, error)
	Set(ctx context.Context, subjectID int64, pool []Question) error
}

type poolStore interface {
	ListBySubject(ctx context.Context, subjectID int64) ([]repository.QuestionRecord, []repository.OptionRecord, error)
}

// Service loads randomized, subject-scoped question batches with their
// answer keys. Pure read; the duel engine never writes back.
type Service struct {
	repo  poolStore
	cache PoolCache
}

// NewService creates a question service over the given store and cache.
// Cache may be nil, in which case every batch hits the store.
func NewService(repo poolStore, cache PoolCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// FetchBatch returns up to count questions for the subject in random order.
// The returned slice is freshly allocated per call, so callers own it.
func (s *Service) FetchBatch(ctx context.Context, subjectID int64, count int) ([]Question, error) {
	pool, err := s.loadPool(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	batch := make([]Question, len(pool))
	copy(batch, pool)
	shuffleQuestions(batch)

	if count > 0 && len(batch) > count {
		batch = batch[:count]
	}
	return batch, nil
}

func (s *Service) loadPool(ctx context.Context, subjectID int64) ([]Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, subjectID); err == nil && cached != nil {
			return cached, nil
		}
	}

	records, options, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load subject pool: %w", err)
	}

	byQuestion := make(map[string][]Option, len(records))
	for _, opt := range options {
		qid := opt.QuestionID.String()
		byQuestion[qid] = append(byQuestion[qid], Option{
			ID:        opt.ID,
			Text:      opt.Text,
			MatchText: opt.MatchText,
			IsCorrect: opt.IsCorrect,
		})
	}

	pool := make([]Question, 0, len(records))
	for _, rec := range records {
		pool = append(pool, Question{
			ID:           rec.ID.String(),
			Content:      rec.Content,
			SubjectName:  rec.SubjectName,
			Kind:         rec.Kind,
			Options:      byQuestion[rec.ID.String()],
			ClosedAnswer: rec.ClosedAnswer,
		})
	}

	if s.cache != nil && len(pool) > 0 {
		// Best-effort; a cold cache only costs an extra store read.
		_ = s.cache.Set(ctx, subjectID, pool)
	}
	return pool, nil
}

// ClientView builds a fresh client-safe copy of the question: correctness
// flags and the closed answer are stripped, and for matching questions the
// right-hand column is shuffled independently of the left.
func ClientView(q Question) ws.ClientQuestion {
	opts := make([]ws.ClientOption, len(q.Options))
	for i, opt := range q.Options {
		opts[i] = ws.ClientOption{ID: opt.ID, Text: opt.Text}
	}

	var right []string
	if q.Kind == KindMatching {
		for _, opt := range q.Options {
			if opt.MatchText != "" {
				right = append(right, opt.MatchText)
			}
		}
		shuffleStrings(right)
	}

	return ws.ClientQuestion{
		ID:          q.ID,
		Content:     q.Content,
		SubjectName: q.SubjectName,
		Kind:        q.Kind,
		Options:     opts,
		RightColumn: right,
	}
}

// Fisher-Yates over the in-memory slice.
func shuffleQuestions(qs []Question) {
	for i := len(qs) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}

func shuffleStrings(ss []string) {
	for i := len(ss) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		ss[i], ss[j] = ss[j], ss[i]
	}
}
