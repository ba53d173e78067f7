package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
)

// QuizRepository reads quizzes, questions and options. The service never
// writes quiz content; authoring happens outside this system.
type QuizRepository struct {
	db DB
}

// NewQuizRepository builds a quiz repository.
func NewQuizRepository(db DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// GetQuiz fetches a quiz with its decoded settings, or (nil, nil) when
// absent. Missing settings fields fall back to defaults.
func (r *QuizRepository) GetQuiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	var (
		q           quiz.Quiz
		rawSettings []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, title, COALESCE(description, ''), settings_json, created_at, updated_at
		FROM quizzes WHERE id = $1`, id).
		Scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &rawSettings, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch quiz: %w", err)
	}

	q.Settings = quiz.DefaultSettings()
	if len(rawSettings) > 0 {
		if err := json.Unmarshal(rawSettings, &q.Settings); err != nil {
			return nil, fmt.Errorf("decode quiz settings: %w", err)
		}
	}
	return &q, nil
}

// GetQuestions fetches a quiz's questions in presentation order, each with
// its options nested in order.
func (r *QuizRepository) GetQuestions(ctx context.Context, quizID uuid.UUID) ([]quiz.Question, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quiz_id, type, text, timer_seconds, order_index
		FROM questions WHERE quiz_id = $1
		ORDER BY order_index, id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer rows.Close()

	var questions []quiz.Question
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var q quiz.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Type, &q.Text, &q.TimerSeconds, &q.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	if len(questions) == 0 {
		return questions, nil
	}

	optRows, err := r.db.Query(ctx, `
		SELECT o.id, o.question_id, o.text, o.is_correct, o.order_index
		FROM options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.quiz_id = $1
		ORDER BY o.question_id, o.order_index, o.id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("fetch options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var o quiz.Option
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}

	return questions, nil
}
