package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkozic/askbox/internal/domain"
	"github.com/mkozic/askbox/internal/repository"
)

var (
	ErrSelfRequest        = errors.New("cannot send a friend request to yourself")
	ErrFriendshipExists   = errors.New("a relationship already exists between these users")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrNotRequestReceiver = errors.New("only the request receiver can perform this action")
	ErrInvalidAction      = errors.New("invalid action")
	ErrFriendshipNotFound = errors.New("friendship not found")
)

// FriendService drives the relationship lifecycle: none -> pending ->
// accepted, with reject and remove both deleting the record and returning
// the pair to none.
type FriendService struct {
	friendRepo repository.FriendshipRepository
	userRepo   repository.UserRepository
	gate       *Gate
}

func NewFriendService(friendRepo repository.FriendshipRepository, userRepo repository.UserRepository, gate *Gate) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		gate:       gate,
	}
}

// SendRequest creates a pending request toward the named user. Any existing
// record between the pair, pending or accepted, blocks a new one.
func (s *FriendService) SendRequest(ctx context.Context, senderID uuid.UUID, targetUsername string) (*domain.Friendship, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if senderID == target.ID {
		return nil, ErrSelfRequest
	}

	existing, err := s.friendRepo.GetByUsers(ctx, senderID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFriendshipExists
	}

	f := &domain.Friendship{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: target.ID,
		Status:     domain.FriendshipPending,
		CreatedAt:  time.Now(),
	}

	if err := s.friendRepo.Create(ctx, f); err != nil {
		// Pair-uniqueness index catches concurrent sends.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFriendshipExists
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return f, nil
}

// Respond accepts or rejects a pending request. Only the receiver may act on
// it. Rejecting deletes the record, so a future request between the pair is
// possible.
func (s *FriendService) Respond(ctx context.Context, userID, requestID uuid.UUID, action string) error {
	if action != "accept" && action != "reject" {
		return ErrInvalidAction
	}

	req, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil || req.Status != domain.FriendshipPending {
		return ErrRequestNotFound
	}
	if req.ReceiverID != userID {
		return ErrNotRequestReceiver
	}

	if action == "accept" {
		return s.friendRepo.Accept(ctx, requestID)
	}
	return s.friendRepo.Delete(ctx, requestID)
}

// Remove deletes the relationship between the caller and friendID regardless
// of status and regardless of who initiated it.
func (s *FriendService) Remove(ctx context.Context, userID, friendID uuid.UUID) error {
	f, err := s.friendRepo.GetByUsers(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrFriendshipNotFound
	}
	return s.friendRepo.Delete(ctx, f.ID)
}

func (s *FriendService) IsFriend(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.friendRepo.AreFriends(ctx, a, b)
}

// ListFriends returns the accepted friends of the named user, optionally
// filtered by a name prefix. The viewer must be that user or already a
// friend of theirs.
func (s *FriendService) ListFriends(ctx context.Context, viewerID uuid.UUID, username, search string) ([]domain.Profile, error) {
	owner, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	if err := s.gate.CanViewFriends(ctx, viewerID, owner.ID); err != nil {
		return nil, err
	}

	friends, err := s.friendRepo.ListFriends(ctx, owner.ID, search)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []domain.Profile{}
	}
	return friends, nil
}

// ListMyRequests returns pending requests the user sent or received.
func (s *FriendService) ListMyRequests(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	reqs, err := s.friendRepo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.Friendship{}
	}
	return reqs, nil
}
