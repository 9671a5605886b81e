package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkozic/askbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type questionFixture struct {
	svc       *QuestionService
	users     *fakeUserRepo
	friends   *fakeFriendshipRepo
	questions *fakeQuestionRepo
	answers   *fakeAnswerRepo
	links     *LinkAllocator
}

func newQuestionFixture() *questionFixture {
	users := newFakeUserRepo()
	friends := newFakeFriendshipRepo(users)
	questions := newFakeQuestionRepo()
	answers := newFakeAnswerRepo()
	gate := NewGate(friends, questions)
	links := NewLinkAllocator(questions)
	return &questionFixture{
		svc:       NewQuestionService(questions, answers, users, gate, links),
		users:     users,
		friends:   friends,
		questions: questions,
		answers:   answers,
		links:     links,
	}
}

// seedQuestion inserts a question directly, bypassing the service.
func (fx *questionFixture) seedQuestion(t *testing.T, owner uuid.UUID, createdAt time.Time, recipients ...uuid.UUID) *domain.Question {
	t.Helper()
	q := &domain.Question{
		ID:           uuid.New(),
		CreatedByID:  owner,
		QuestionText: "seeded",
		Visibility:   domain.VisibilityFriends,
		Identity:     domain.IdentityRevealed,
		CreatedAt:    createdAt,
	}
	require.NoError(t, fx.questions.Create(context.Background(), q, recipients))
	return q
}

func (fx *questionFixture) seedAnswer(t *testing.T, questionID, userID uuid.UUID, answeredAt time.Time, text string) *domain.Answer {
	t.Helper()
	a := &domain.Answer{
		ID:         uuid.New(),
		QuestionID: questionID,
		UserID:     userID,
		AnswerText: text,
		AnsweredAt: answeredAt,
	}
	require.NoError(t, fx.answers.Create(context.Background(), a))
	return a
}

func TestCreateQuestionValidation(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, owner.ID, CreateQuestionInput{})
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = fx.svc.Create(ctx, owner.ID, CreateQuestionInput{
		QuestionText: "hi", Visibility: "everyone",
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = fx.svc.Create(ctx, owner.ID, CreateQuestionInput{
		QuestionText: "hi", Identity: "masked",
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	// Timed without a deadline.
	_, err = fx.svc.Create(ctx, owner.ID, CreateQuestionInput{
		QuestionText: "hi", IsTimed: true,
	})
	assert.ErrorIs(t, err, ErrMissingEndTime)

	// Timed with a deadline already in the past.
	past := time.Now().Add(-time.Hour)
	_, err = fx.svc.Create(ctx, owner.ID, CreateQuestionInput{
		QuestionText: "hi", IsTimed: true, EndTimeStamp: &past,
	})
	assert.ErrorIs(t, err, ErrMissingEndTime)
}

func TestCreateQuestionDefaults(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")

	q, err := fx.svc.Create(context.Background(), owner.ID, CreateQuestionInput{QuestionText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, domain.VisibilityFriends, q.Visibility)
	assert.Equal(t, domain.IdentityRevealed, q.Identity)
	assert.Nil(t, q.PublicLink)
}

func TestCreateQuestionRecipientsAllOrNothing(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	friend := addUser(t, fx.users, "friend")
	ghost1, ghost2 := uuid.New(), uuid.New()
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, owner.ID, CreateQuestionInput{
		QuestionText: "hi",
		RecipientIDs: []uuid.UUID{friend.ID, ghost1, ghost2},
	})
	var unknown *UnknownRecipientsError
	require.ErrorAs(t, err, &unknown)
	assert.ElementsMatch(t, []uuid.UUID{ghost1, ghost2}, unknown.IDs)
	assert.Empty(t, fx.questions.questions, "nothing is created on a partial failure")

	// Valid list goes through; the owner and duplicates are dropped.
	q, err := fx.svc.Create(ctx, owner.ID, CreateQuestionInput{
		QuestionText: "hi",
		RecipientIDs: []uuid.UUID{friend.ID, friend.ID, owner.ID},
	})
	require.NoError(t, err)
	assert.Len(t, fx.questions.recipients[q.ID], 1)
}

func TestCreatePublicQuestionAllocatesLink(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")

	q, err := fx.svc.Create(context.Background(), owner.ID, CreateQuestionInput{
		QuestionText: "hi",
		IsPublic:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, q.PublicLink)
	assert.Len(t, *q.PublicLink, 10)

	got, err := fx.svc.GetByPublicLink(context.Background(), *q.PublicLink)
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)
}

func TestGetByPublicLinkUnknown(t *testing.T) {
	fx := newQuestionFixture()

	_, err := fx.svc.GetByPublicLink(context.Background(), "nope123456")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionAccessGate(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	invited := addUser(t, fx.users, "invited")
	friend := addUser(t, fx.users, "friend")
	ctx := context.Background()

	// friend is an accepted friend of owner, but NOT a recipient.
	require.NoError(t, fx.friends.Create(ctx, &domain.Friendship{
		ID: uuid.New(), SenderID: owner.ID, ReceiverID: friend.ID,
		Status: domain.FriendshipAccepted, CreatedAt: time.Now(),
	}))

	q := fx.seedQuestion(t, owner.ID, time.Now(), invited.ID)

	// Creator and recipient pass the gate.
	_, err := fx.svc.Get(ctx, owner.ID, q.ID)
	assert.NoError(t, err)
	_, err = fx.svc.Get(ctx, invited.ID, q.ID)
	assert.NoError(t, err)

	// Friendship alone is not sufficient, on any read or write path.
	_, err = fx.svc.Get(ctx, friend.ID, q.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = fx.svc.ListAnswers(ctx, friend.ID, q.ID, 1)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = fx.svc.SubmitAnswer(ctx, friend.ID, q.ID, "hello")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = fx.svc.Get(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestListQuestionsPagination(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	other := addUser(t, fx.users, "other")
	base := time.Now()
	ctx := context.Background()

	// 12 qualifying questions: 6 created, 6 received. Newest last.
	for i := 0; i < 12; i++ {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		if i%2 == 0 {
			fx.seedQuestion(t, owner.ID, createdAt)
		} else {
			fx.seedQuestion(t, other.ID, createdAt, owner.ID)
		}
	}
	// Noise the viewer has no claim on.
	fx.seedQuestion(t, other.ID, base.Add(time.Hour))

	page1, err := fx.svc.ListQuestions(ctx, owner.ID, 1)
	require.NoError(t, err)
	page2, err := fx.svc.ListQuestions(ctx, owner.ID, 2)
	require.NoError(t, err)
	page3, err := fx.svc.ListQuestions(ctx, owner.ID, 3)
	require.NoError(t, err)

	require.Len(t, page1, 5)
	require.Len(t, page2, 5)
	require.Len(t, page3, 2)

	// Page 2 holds the 6th-10th most recent, strictly older than page 1.
	for _, newer := range page1 {
		for _, older := range page2 {
			assert.True(t, older.CreatedAt.Before(newer.CreatedAt))
		}
	}

	// Page argument below 1 falls back to page 1.
	fallback, err := fx.svc.ListQuestions(ctx, owner.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, page1, fallback)

	empty, err := fx.svc.ListQuestions(ctx, owner.ID, 4)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListAnswersPinsOwnAnswerOnPageOne(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	viewer := addUser(t, fx.users, "viewer")
	base := time.Now()
	ctx := context.Background()

	q := fx.seedQuestion(t, owner.ID, base, viewer.ID)

	// Viewer answered early, six others after.
	fx.seedAnswer(t, q.ID, viewer.ID, base.Add(1*time.Minute), "mine")
	for i := 0; i < 6; i++ {
		u := addUser(t, fx.users, fmt.Sprintf("rep%d", i))
		fx.seedAnswer(t, q.ID, u.ID, base.Add(time.Duration(i+2)*time.Minute), fmt.Sprintf("other%d", i))
	}

	page1, err := fx.svc.ListAnswers(ctx, viewer.ID, q.ID, 1)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	assert.Equal(t, "mine", page1[0].AnswerText, "own answer is pinned first")
	assert.Equal(t, "other5", page1[1].AnswerText)
	assert.Equal(t, "other2", page1[4].AnswerText)

	// Page 2 continues the others ordering with no gaps and no repeats.
	page2, err := fx.svc.ListAnswers(ctx, viewer.ID, q.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "other1", page2[0].AnswerText)
	assert.Equal(t, "other0", page2[1].AnswerText)

	seen := map[uuid.UUID]bool{}
	for _, a := range append(page1, page2...) {
		assert.False(t, seen[a.ID], "no answer appears twice")
		seen[a.ID] = true
	}
}

func TestListAnswersViewerWithoutOwnAnswer(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	base := time.Now()

	q := fx.seedQuestion(t, owner.ID, base)
	for i := 0; i < 7; i++ {
		u := addUser(t, fx.users, fmt.Sprintf("rep%d", i))
		fx.seedAnswer(t, q.ID, u.ID, base.Add(time.Duration(i)*time.Minute), fmt.Sprintf("other%d", i))
	}

	page1, err := fx.svc.ListAnswers(context.Background(), owner.ID, q.ID, 1)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	assert.Equal(t, "other6", page1[0].AnswerText)

	page2, err := fx.svc.ListAnswers(context.Background(), owner.ID, q.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "other1", page2[0].AnswerText)
}

func TestListAnswersAnonymousQuestion(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	viewer := addUser(t, fx.users, "viewer")
	rep := addUser(t, fx.users, "rep")
	base := time.Now()
	ctx := context.Background()

	q := fx.seedQuestion(t, owner.ID, base, viewer.ID, rep.ID)
	q.Identity = domain.IdentityAnonymous
	fx.questions.questions[q.ID].Identity = domain.IdentityAnonymous

	mine := fx.seedAnswer(t, q.ID, viewer.ID, base.Add(time.Minute), "mine")
	theirs := fx.seedAnswer(t, q.ID, rep.ID, base.Add(2*time.Minute), "theirs")
	fx.answers.answers[mine.ID].AuthorUsername = "viewer"
	fx.answers.answers[theirs.ID].AuthorUsername = "rep"

	answers, err := fx.svc.ListAnswers(ctx, viewer.ID, q.ID, 1)
	require.NoError(t, err)
	require.Len(t, answers, 2)

	assert.Equal(t, "mine", answers[0].AnswerText)
	assert.Equal(t, "viewer", answers[0].AuthorUsername, "own answer keeps its identity")

	assert.Equal(t, "theirs", answers[1].AnswerText)
	assert.Empty(t, answers[1].AuthorUsername, "other identities are blanked")
	assert.Equal(t, uuid.Nil, answers[1].UserID)
}

func TestSubmitAnswer(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	rep := addUser(t, fx.users, "rep")
	ctx := context.Background()

	q := fx.seedQuestion(t, owner.ID, time.Now(), rep.ID)

	_, err := fx.svc.SubmitAnswer(ctx, rep.ID, q.ID, "")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	a, err := fx.svc.SubmitAnswer(ctx, rep.ID, q.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, rep.ID, a.UserID)

	// One answer per user per question.
	_, err = fx.svc.SubmitAnswer(ctx, rep.ID, q.ID, "second")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.Len(t, fx.answers.answers, 1)

	// The owner may still answer their own question.
	_, err = fx.svc.SubmitAnswer(ctx, owner.ID, q.ID, "owner take")
	assert.NoError(t, err)
}

func TestSubmitAnswerClosedQuestion(t *testing.T) {
	fx := newQuestionFixture()
	owner := addUser(t, fx.users, "owner")
	rep := addUser(t, fx.users, "rep")
	ctx := context.Background()

	deadline := time.Now().Add(time.Hour)
	q := fx.seedQuestion(t, owner.ID, time.Now(), rep.ID)
	fx.questions.questions[q.ID].IsTimed = true
	fx.questions.questions[q.ID].EndTimeStamp = &deadline

	// Before the deadline answers are accepted.
	_, err := fx.svc.SubmitAnswer(ctx, rep.ID, q.ID, "in time")
	require.NoError(t, err)

	// After the deadline they are rejected.
	fx.svc.now = func() time.Time { return deadline.Add(time.Second) }
	_, err = fx.svc.SubmitAnswer(ctx, owner.ID, q.ID, "too late")
	assert.ErrorIs(t, err, ErrQuestionClosed)
}
