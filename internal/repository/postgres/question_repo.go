package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkozic/askbox/internal/domain"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

const questionColumns = "id, created_by_id, question_text, visibility, identity, is_timed, end_time_stamp, is_public, public_link, created_at"

func (r *QuestionRepo) Create(ctx context.Context, q *domain.Question, recipients []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO questions (id, created_by_id, question_text, visibility, identity, is_timed, end_time_stamp, is_public, public_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = tx.Exec(ctx, query,
		q.ID, q.CreatedByID, q.QuestionText, q.Visibility, q.Identity,
		q.IsTimed, q.EndTimeStamp, q.IsPublic, q.PublicLink, q.CreatedAt,
	)
	if err != nil {
		return mapUnique(err)
	}

	now := time.Now()
	for _, userID := range recipients {
		_, err = tx.Exec(ctx,
			`INSERT INTO question_recipients (question_id, user_id, created_at) VALUES ($1, $2, $3)`,
			q.ID, userID, now,
		)
		if err != nil {
			return mapUnique(err)
		}
	}

	return tx.Commit(ctx)
}

func (r *QuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	return r.scanQuestion(ctx, "SELECT "+questionColumns+" FROM questions WHERE id = $1", id)
}

func (r *QuestionRepo) GetByPublicLink(ctx context.Context, link string) (*domain.Question, error) {
	return r.scanQuestion(ctx, "SELECT "+questionColumns+" FROM questions WHERE public_link = $1", link)
}

func (r *QuestionRepo) PublicLinkExists(ctx context.Context, link string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM questions WHERE public_link = $1)`, link,
	).Scan(&exists)
	return exists, err
}

func (r *QuestionRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Question, error) {
	query := `
		SELECT DISTINCT q.id, q.created_by_id, q.question_text, q.visibility, q.identity,
			q.is_timed, q.end_time_stamp, q.is_public, q.public_link, q.created_at
		FROM questions q
		LEFT JOIN question_recipients qr ON qr.question_id = q.id
		WHERE q.created_by_id = $1 OR qr.user_id = $1
		ORDER BY q.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(
			&q.ID, &q.CreatedByID, &q.QuestionText, &q.Visibility, &q.Identity,
			&q.IsTimed, &q.EndTimeStamp, &q.IsPublic, &q.PublicLink, &q.CreatedAt,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepo) IsRecipient(ctx context.Context, questionID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM question_recipients WHERE question_id = $1 AND user_id = $2)`,
		questionID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *QuestionRepo) scanQuestion(ctx context.Context, query string, arg any) (*domain.Question, error) {
	var q domain.Question
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&q.ID, &q.CreatedByID, &q.QuestionText, &q.Visibility, &q.Identity,
		&q.IsTimed, &q.EndTimeStamp, &q.IsPublic, &q.PublicLink, &q.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &q, err
}
