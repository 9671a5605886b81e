package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkozic/askbox/internal/domain"
)

// ErrDuplicate is returned when an insert hits a unique constraint. The
// database is the authoritative source for conflicts; service-level lookups
// are only a courtesy pre-check.
var ErrDuplicate = errors.New("duplicate record")

var (
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)
	ErrEmailExists    = fmt.Errorf("%w: email", ErrDuplicate)
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByUsernameOrEmail resolves a login identifier of either kind.
	GetByUsernameOrEmail(ctx context.Context, idText string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// SearchByPrefix matches username or name prefixes, case-insensitive,
	// excluding the viewer.
	SearchByPrefix(ctx context.Context, viewerID uuid.UUID, key string) ([]domain.Profile, error)
	// FilterExisting returns the subset of ids that belong to real users.
	FilterExisting(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type FriendshipRepository interface {
	Create(ctx context.Context, f *domain.Friendship) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error)
	// GetByUsers finds the single record for the unordered pair, any status.
	GetByUsers(ctx context.Context, a, b uuid.UUID) (*domain.Friendship, error)
	Accept(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	// ListFriends returns accepted counterparts of userID, optionally
	// filtered by a case-insensitive username/name prefix.
	ListFriends(ctx context.Context, userID uuid.UUID, search string) ([]domain.Profile, error)
	// ListPendingByUser returns pending requests the user sent or received.
	ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error)
}

type QuestionRepository interface {
	// Create inserts the question and its recipient rows in one transaction,
	// so public link allocation is atomic with creation.
	Create(ctx context.Context, q *domain.Question, recipients []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	GetByPublicLink(ctx context.Context, link string) (*domain.Question, error)
	PublicLinkExists(ctx context.Context, link string) (bool, error)
	// ListForUser returns questions the user created or was invited to,
	// newest first.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Question, error)
	IsRecipient(ctx context.Context, questionID, userID uuid.UUID) (bool, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, a *domain.Answer) error
	GetByQuestionAndUser(ctx context.Context, questionID, userID uuid.UUID) (*domain.Answer, error)
	// ListOthers returns answers to the question excluding one user's,
	// newest first, with author profiles joined.
	ListOthers(ctx context.Context, questionID, excludeUserID uuid.UUID, limit, offset int) ([]domain.Answer, error)
}
