package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mkozic/askbox/internal/domain"
	"github.com/mkozic/askbox/internal/repository"
)

var ErrForbidden = errors.New("forbidden")

// Gate is the single place access rules live. Every relationship-sensitive
// read and every question operation consults it before any data is
// assembled.
type Gate struct {
	friendRepo   repository.FriendshipRepository
	questionRepo repository.QuestionRepository
}

func NewGate(friendRepo repository.FriendshipRepository, questionRepo repository.QuestionRepository) *Gate {
	return &Gate{
		friendRepo:   friendRepo,
		questionRepo: questionRepo,
	}
}

// CanViewFriends allows a user to see their own friend list, or another
// user's if the two are already friends.
func (g *Gate) CanViewFriends(ctx context.Context, viewerID, ownerID uuid.UUID) error {
	if viewerID == ownerID {
		return nil
	}

	friends, err := g.friendRepo.AreFriends(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if !friends {
		return ErrForbidden
	}
	return nil
}

// CanAccessQuestion allows the creator and explicit recipients. Friendship
// with the creator is not itself sufficient; public-link access is a
// separate path keyed by the link.
func (g *Gate) CanAccessQuestion(ctx context.Context, viewerID uuid.UUID, q *domain.Question) error {
	if q.CreatedByID == viewerID {
		return nil
	}

	invited, err := g.questionRepo.IsRecipient(ctx, q.ID, viewerID)
	if err != nil {
		return err
	}
	if !invited {
		return ErrForbidden
	}
	return nil
}
