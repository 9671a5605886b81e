package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkozic/askbox/internal/domain"
)

type FriendshipRepo struct {
	pool *pgxpool.Pool
}

func NewFriendshipRepo(pool *pgxpool.Pool) *FriendshipRepo {
	return &FriendshipRepo{pool: pool}
}

func (r *FriendshipRepo) Create(ctx context.Context, f *domain.Friendship) error {
	query := `
		INSERT INTO friendships (id, sender_id, receiver_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, f.ID, f.SenderID, f.ReceiverID, f.Status, f.CreatedAt)
	return mapUnique(err)
}

func (r *FriendshipRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at
		FROM friendships
		WHERE id = $1`
	var f domain.Friendship
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &f, err
}

func (r *FriendshipRepo) GetByUsers(ctx context.Context, a, b uuid.UUID) (*domain.Friendship, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at
		FROM friendships
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)`
	var f domain.Friendship
	err := r.pool.QueryRow(ctx, query, a, b).Scan(
		&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &f, err
}

func (r *FriendshipRepo) Accept(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE friendships SET status = 'accepted' WHERE id = $1`, id)
	return err
}

func (r *FriendshipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	return err
}

func (r *FriendshipRepo) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((sender_id = $1 AND receiver_id = $2)
			    OR (sender_id = $2 AND receiver_id = $1)))`,
		a, b,
	).Scan(&exists)
	return exists, err
}

func (r *FriendshipRepo) ListFriends(ctx context.Context, userID uuid.UUID, search string) ([]domain.Profile, error) {
	query := `
		SELECT u.id, u.username, u.name, u.avatar
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.sender_id = $1 THEN f.receiver_id ELSE f.sender_id END
		WHERE f.status = 'accepted'
		  AND (f.sender_id = $1 OR f.receiver_id = $1)
		  AND ($2 = '' OR u.username ILIKE $2 || '%' OR u.name ILIKE $2 || '%')
		ORDER BY u.username ASC`

	rows, err := r.pool.Query(ctx, query, userID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Name, &p.Avatar); err != nil {
			return nil, err
		}
		friends = append(friends, p)
	}
	return friends, rows.Err()
}

func (r *FriendshipRepo) ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	query := `
		SELECT f.id, f.sender_id, f.receiver_id, f.status, f.created_at,
			s.id, s.username, s.name, s.avatar,
			rc.id, rc.username, rc.name, rc.avatar
		FROM friendships f
		JOIN users s ON f.sender_id = s.id
		JOIN users rc ON f.receiver_id = rc.id
		WHERE f.status = 'pending'
		  AND (f.sender_id = $1 OR f.receiver_id = $1)
		ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		var sender, receiver domain.Profile
		if err := rows.Scan(
			&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt,
			&sender.ID, &sender.Username, &sender.Name, &sender.Avatar,
			&receiver.ID, &receiver.Username, &receiver.Name, &receiver.Avatar,
		); err != nil {
			return nil, err
		}
		f.Sender = &sender
		f.Receiver = &receiver
		reqs = append(reqs, f)
	}
	return reqs, rows.Err()
}
