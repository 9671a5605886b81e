package domain

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is the single record allowed per unordered user pair. A rejected
// request is deleted outright, so only pending and accepted rows ever exist.
type Friendship struct {
	ID         uuid.UUID        `json:"id"`
	SenderID   uuid.UUID        `json:"sender_id"`
	ReceiverID uuid.UUID        `json:"receiver_id"`
	Status     FriendshipStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	// Joined fields
	Sender   *Profile `json:"sender,omitempty"`
	Receiver *Profile `json:"receiver,omitempty"`
}

// Other returns the counterpart of userID in the relationship.
func (f *Friendship) Other(userID uuid.UUID) uuid.UUID {
	if f.SenderID == userID {
		return f.ReceiverID
	}
	return f.SenderID
}
