package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkozic/askbox/internal/domain"
)

type AnswerRepo struct {
	pool *pgxpool.Pool
}

func NewAnswerRepo(pool *pgxpool.Pool) *AnswerRepo {
	return &AnswerRepo{pool: pool}
}

func (r *AnswerRepo) Create(ctx context.Context, a *domain.Answer) error {
	query := `
		INSERT INTO answers (id, question_id, user_id, answer_text, answered_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, a.ID, a.QuestionID, a.UserID, a.AnswerText, a.AnsweredAt)
	return mapUnique(err)
}

func (r *AnswerRepo) GetByQuestionAndUser(ctx context.Context, questionID, userID uuid.UUID) (*domain.Answer, error) {
	query := `
		SELECT a.id, a.question_id, a.user_id, a.answer_text, a.answered_at,
			u.username, u.name, u.avatar
		FROM answers a
		JOIN users u ON a.user_id = u.id
		WHERE a.question_id = $1 AND a.user_id = $2`

	var a domain.Answer
	err := r.pool.QueryRow(ctx, query, questionID, userID).Scan(
		&a.ID, &a.QuestionID, &a.UserID, &a.AnswerText, &a.AnsweredAt,
		&a.AuthorUsername, &a.AuthorName, &a.AuthorAvatar,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &a, err
}

func (r *AnswerRepo) ListOthers(ctx context.Context, questionID, excludeUserID uuid.UUID, limit, offset int) ([]domain.Answer, error) {
	query := `
		SELECT a.id, a.question_id, a.user_id, a.answer_text, a.answered_at,
			u.username, u.name, u.avatar
		FROM answers a
		JOIN users u ON a.user_id = u.id
		WHERE a.question_id = $1 AND a.user_id != $2
		ORDER BY a.answered_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, questionID, excludeUserID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(
			&a.ID, &a.QuestionID, &a.UserID, &a.AnswerText, &a.AnsweredAt,
			&a.AuthorUsername, &a.AuthorName, &a.AuthorAvatar,
		); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
