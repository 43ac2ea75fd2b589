package question

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamnoseh/IQRA-sub000/internal/db/repository"
)

type stubPoolStore struct {
	calls     int
	questions []repository.QuestionRecord
	options   []repository.OptionRecord
	err       error
}

func (s *stubPoolStore) ListBySubject(_ context.Context, _ int64) ([]repository.QuestionRecord, []repository.OptionRecord, error) {
	s.calls++
	return s.questions, s.options, s.err
}

type memoryPoolCache struct {
	store map[int64][]Question
}

func newMemoryPoolCache() *memoryPoolCache {
	return &memoryPoolCache{store: map[int64][]Question{}}
}

func (c *memoryPoolCache) Get(_ context.Context, subjectID int64) ([]Question, error) {
	return c.store[subjectID], nil
}

func (c *memoryPoolCache) Set(_ context.Context, subjectID int64, pool []Question) error {
	c.store[subjectID] = pool
	return nil
}

func storeWithQuestions(n int) *stubPoolStore {
	store := &stubPoolStore{}
	for i := 0; i < n; i++ {
		qid := uuid.New()
		store.questions = append(store.questions, repository.QuestionRecord{
			ID:          qid,
			SubjectID:   7,
			SubjectName: "History",
			Content:     "Question?",
			Kind:        KindSingleChoice,
		})
		store.options = append(store.options,
			repository.OptionRecord{ID: int64(i*2 + 1), QuestionID: qid, Text: "Right", IsCorrect: true, Position: 0},
			repository.OptionRecord{ID: int64(i*2 + 2), QuestionID: qid, Text: "Wrong", Position: 1},
		)
	}
	return store
}

func TestFetchBatchUsesCache(t *testing.T) {
	store := storeWithQuestions(3)
	cache := newMemoryPoolCache()
	svc := NewService(store, cache)

	batch, err := svc.FetchBatch(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Len(t, batch, 3)
	assert.Equal(t, 1, store.calls)

	_, err = svc.FetchBatch(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls, "second fetch must be served from cache")
}

func TestFetchBatchLimitsCount(t *testing.T) {
	svc := NewService(storeWithQuestions(20), nil)

	batch, err := svc.FetchBatch(context.Background(), 7, 15)
	require.NoError(t, err)
	assert.Len(t, batch, 15)
}

func TestFetchBatchSmallPool(t *testing.T) {
	svc := NewService(storeWithQuestions(2), nil)

	batch, err := svc.FetchBatch(context.Background(), 7, 15)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestFetchBatchEmptyPool(t *testing.T) {
	svc := NewService(&stubPoolStore{}, nil)

	batch, err := svc.FetchBatch(context.Background(), 7, 15)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestFetchBatchAttachesAnswerKeys(t *testing.T) {
	svc := NewService(storeWithQuestions(1), nil)

	batch, err := svc.FetchBatch(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Len(t, batch[0].Options, 2)

	id, ok := batch[0].CorrectOptionID()
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestClientViewStripsAnswerKey(t *testing.T) {
	q := Question{
		ID:      uuid.NewString(),
		Content: "Capital of France?",
		Kind:    KindSingleChoice,
		Options: []Option{
			{ID: 1, Text: "Paris", IsCorrect: true},
			{ID: 2, Text: "Lyon"},
		},
	}

	view := ClientView(q)
	assert.Len(t, view.Options, 2)
	assert.Equal(t, int64(1), view.Options[0].ID)
	assert.Empty(t, view.RightColumn)

	// the view type has no correctness field at all; make sure the closed
	// answer does not leak either
	q.Kind = KindClosed
	q.ClosedAnswer = "Paris"
	view = ClientView(q)
	assert.Equal(t, KindClosed, view.Kind)
}

func TestClientViewShufflesRightColumn(t *testing.T) {
	q := Question{
		ID:   uuid.NewString(),
		Kind: KindMatching,
		Options: []Option{
			{ID: 1, Text: "H2O", MatchText: "Water"},
			{ID: 2, Text: "NaCl", MatchText: "Salt"},
			{ID: 3, Text: "CO2", MatchText: "Carbon dioxide"},
		},
	}

	view := ClientView(q)
	require.Len(t, view.RightColumn, 3)

	got := append([]string(nil), view.RightColumn...)
	sort.Strings(got)
	assert.Equal(t, []string{"Carbon dioxide", "Salt", "Water"}, got,
		"right column must be a permutation of the match targets")
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, 0)

	pool := []Question{{ID: uuid.NewString(), Content: "Q", Kind: KindClosed, ClosedAnswer: "A"}}
	require.NoError(t, cache.Set(context.Background(), 7, pool))

	got, err := cache.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, pool, got)

	missing, err := cache.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
