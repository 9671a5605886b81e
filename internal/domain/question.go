package domain

import (
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
)

type IdentityMode string

const (
	IdentityRevealed  IdentityMode = "revealed"
	IdentityAnonymous IdentityMode = "anonymous"
)

type Question struct {
	ID           uuid.UUID    `json:"id"`
	CreatedByID  uuid.UUID    `json:"created_by_id"`
	QuestionText string       `json:"question_text"`
	Visibility   Visibility   `json:"visibility"`
	Identity     IdentityMode `json:"identity"`
	IsTimed      bool         `json:"is_timed"`
	EndTimeStamp *time.Time   `json:"end_time_stamp,omitempty"`
	IsPublic     bool         `json:"is_public"`
	PublicLink   *string      `json:"public_link,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Closed reports whether the answer window has passed.
func (q *Question) Closed(now time.Time) bool {
	return q.IsTimed && q.EndTimeStamp != nil && now.After(*q.EndTimeStamp)
}

// Recipient grants a user access to a question independent of friendship.
type Recipient struct {
	QuestionID uuid.UUID `json:"question_id"`
	UserID     uuid.UUID `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Answer struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	UserID     uuid.UUID `json:"user_id"`
	AnswerText string    `json:"answer_text"`
	AnsweredAt time.Time `json:"answered_at"`
	// Joined fields, blanked when the question is anonymous
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorName     string `json:"author_name,omitempty"`
	AuthorAvatar   string `json:"author_avatar,omitempty"`
}

// Anonymize strips the author identity from an answer view.
func (a *Answer) Anonymize() {
	a.UserID = uuid.Nil
	a.AuthorUsername = ""
	a.AuthorName = ""
	a.AuthorAvatar = ""
}
