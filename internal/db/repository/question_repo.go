package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRecord mirrors a duel_questions row.
type QuestionRecord struct {
	ID           uuid.UUID
	SubjectID    int64
	SubjectName  string
	Content      string
	Kind         string
	ClosedAnswer string
}

// OptionRecord mirrors a duel_answer_options row.
type OptionRecord struct {
	ID         int64
	QuestionID uuid.UUID
	Text       string
	MatchText  string
	IsCorrect  bool
	Position   int
}

// QuestionRepository reads the curated duel question bank. Pure read access;
// the duel engine never mutates the question store.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository constructs a repository over a pgx pool.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListBySubject returns every verified question for a subject with its
// answer options, options ordered by stored position.
func (r *QuestionRepository) ListBySubject(ctx context.Context, subjectID int64) ([]QuestionRecord, []OptionRecord, error) {
	const questionSQL = `
		SELECT q.id, q.subject_id, s.name, q.content, q.kind, COALESCE(q.closed_answer, '')
		FROM duel_questions q
		JOIN subjects s ON s.id = q.subject_id
		WHERE q.subject_id = $1 AND q.verified`

	rows, err := r.pool.Query(ctx, questionSQL, subjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("query questions: %w", err)
	}
	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (QuestionRecord, error) {
		var rec QuestionRecord
		err := row.Scan(&rec.ID, &rec.SubjectID, &rec.SubjectName, &rec.Content, &rec.Kind, &rec.ClosedAnswer)
		return rec, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, nil, nil
	}

	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	const optionSQL = `
		SELECT o.id, o.question_id, o.text, COALESCE(o.match_text, ''), o.is_correct, o.position
		FROM duel_answer_options o
		WHERE o.question_id = ANY($1)
		ORDER BY o.question_id, o.position`

	rows, err = r.pool.Query(ctx, optionSQL, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("query options: %w", err)
	}
	options, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OptionRecord, error) {
		var rec OptionRecord
		err := row.Scan(&rec.ID, &rec.QuestionID, &rec.Text, &rec.MatchText, &rec.IsCorrect, &rec.Position)
		return rec, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan options: %w", err)
	}

	return questions, options, nil
}
