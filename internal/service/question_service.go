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
	ErrQuestionNotFound = errors.New("question not found")
	ErrEmptyQuestion    = errors.New("question text is required")
	ErrEmptyAnswer      = errors.New("answer text is required")
	ErrAlreadyAnswered  = errors.New("you have already answered this question")
	ErrQuestionClosed   = errors.New("the answer window for this question has closed")
	ErrInvalidPayload   = errors.New("invalid question payload")
	ErrMissingEndTime   = errors.New("a timed question needs a future end time")
)

// UnknownRecipientsError reports which invited ids do not belong to any
// user. Recipient creation is all-or-nothing.
type UnknownRecipientsError struct {
	IDs []uuid.UUID
}

func (e *UnknownRecipientsError) Error() string {
	return fmt.Sprintf("unknown recipient ids: %v", e.IDs)
}

// pageSize is fixed for both question and answer listings.
const pageSize = 5

type QuestionService struct {
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	userRepo     repository.UserRepository
	gate         *Gate
	links        *LinkAllocator
	now          func() time.Time
}

func NewQuestionService(
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	gate *Gate,
	links *LinkAllocator,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		userRepo:     userRepo,
		gate:         gate,
		links:        links,
		now:          time.Now,
	}
}

type CreateQuestionInput struct {
	QuestionText string      `json:"question_text"`
	Visibility   string      `json:"visibility"`
	Identity     string      `json:"identity"`
	IsTimed      bool        `json:"is_timed"`
	EndTimeStamp *time.Time  `json:"end_time_stamp"`
	IsPublic     bool        `json:"is_public"`
	RecipientIDs []uuid.UUID `json:"recipient_ids"`
}

func (s *QuestionService) Create(ctx context.Context, ownerID uuid.UUID, input CreateQuestionInput) (*domain.Question, error) {
	if input.QuestionText == "" {
		return nil, ErrEmptyQuestion
	}

	visibility := domain.Visibility(input.Visibility)
	if visibility == "" {
		visibility = domain.VisibilityFriends
	}
	if visibility != domain.VisibilityPublic && visibility != domain.VisibilityFriends {
		return nil, ErrInvalidPayload
	}

	identity := domain.IdentityMode(input.Identity)
	if identity == "" {
		identity = domain.IdentityRevealed
	}
	if identity != domain.IdentityRevealed && identity != domain.IdentityAnonymous {
		return nil, ErrInvalidPayload
	}

	if input.IsTimed {
		if input.EndTimeStamp == nil || !input.EndTimeStamp.After(s.now()) {
			return nil, ErrMissingEndTime
		}
	}

	recipients, err := s.resolveRecipients(ctx, ownerID, input.RecipientIDs)
	if err != nil {
		return nil, err
	}

	q := &domain.Question{
		ID:           uuid.New(),
		CreatedByID:  ownerID,
		QuestionText: input.QuestionText,
		Visibility:   visibility,
		Identity:     identity,
		IsTimed:      input.IsTimed,
		EndTimeStamp: input.EndTimeStamp,
		IsPublic:     input.IsPublic,
		CreatedAt:    s.now(),
	}

	if input.IsPublic {
		link, err := s.links.Allocate(ctx)
		if err != nil {
			return nil, err
		}
		q.PublicLink = &link
	}

	if err := s.questionRepo.Create(ctx, q, recipients); err != nil {
		// A concurrent creation grabbing the same link trips the unique
		// index inside the transaction.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAllocationExhausted
		}
		return nil, fmt.Errorf("creating question: %w", err)
	}

	return q, nil
}

// resolveRecipients dedupes the invite list, drops the owner, and fails the
// whole request when any id is unknown.
func (s *QuestionService) resolveRecipients(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	var recipients []uuid.UUID
	for _, id := range ids {
		if id == ownerID || seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	existing, err := s.userRepo.FilterExisting(ctx, recipients)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(recipients) {
		found := make(map[uuid.UUID]bool, len(existing))
		for _, id := range existing {
			found[id] = true
		}
		var missing []uuid.UUID
		for _, id := range recipients {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, &UnknownRecipientsError{IDs: missing}
	}

	return recipients, nil
}

func (s *QuestionService) Get(ctx context.Context, viewerID, questionID uuid.UUID) (*domain.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}

	if err := s.gate.CanAccessQuestion(ctx, viewerID, q); err != nil {
		return nil, err
	}

	return q, nil
}

// GetByPublicLink serves link-based access. The link itself is the
// credential, no authentication required.
func (s *QuestionService) GetByPublicLink(ctx context.Context, link string) (*domain.Question, error) {
	q, err := s.questionRepo.GetByPublicLink(ctx, link)
	if err != nil {
		return nil, err
	}
	if q == nil || !q.IsPublic {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

// ListQuestions returns page `page` of questions the viewer created or was
// invited to, newest first, five per page.
func (s *QuestionService) ListQuestions(ctx context.Context, viewerID uuid.UUID, page int) ([]domain.Question, error) {
	if page < 1 {
		page = 1
	}

	questions, err := s.questionRepo.ListForUser(ctx, viewerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return questions, nil
}

// ListAnswers pages through a question's answers. The logical order is the
// viewer's own answer first (if any), then everyone else's newest-first;
// pages of five are cut from that combined sequence, so the pinned answer
// appears exactly once and later pages continue without gaps.
func (s *QuestionService) ListAnswers(ctx context.Context, viewerID, questionID uuid.UUID, page int) ([]domain.Answer, error) {
	if page < 1 {
		page = 1
	}

	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	if err := s.gate.CanAccessQuestion(ctx, viewerID, q); err != nil {
		return nil, err
	}

	own, err := s.answerRepo.GetByQuestionAndUser(ctx, questionID, viewerID)
	if err != nil {
		return nil, err
	}

	limit, offset := pageSize, (page-1)*pageSize
	if own != nil {
		// The pinned answer occupies the first combined slot.
		if page == 1 {
			limit = pageSize - 1
		} else {
			offset--
		}
	}

	others, err := s.answerRepo.ListOthers(ctx, questionID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}

	answers := make([]domain.Answer, 0, pageSize)
	if own != nil && page == 1 {
		answers = append(answers, *own)
	}
	answers = append(answers, others...)

	if q.Identity == domain.IdentityAnonymous {
		for i := range answers {
			if answers[i].UserID != viewerID {
				answers[i].Anonymize()
			}
		}
	}

	return answers, nil
}

func (s *QuestionService) SubmitAnswer(ctx context.Context, userID, questionID uuid.UUID, text string) (*domain.Answer, error) {
	if text == "" {
		return nil, ErrEmptyAnswer
	}

	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	if err := s.gate.CanAccessQuestion(ctx, userID, q); err != nil {
		return nil, err
	}

	if q.Closed(s.now()) {
		return nil, ErrQuestionClosed
	}

	existing, err := s.answerRepo.GetByQuestionAndUser(ctx, questionID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyAnswered
	}

	a := &domain.Answer{
		ID:         uuid.New(),
		QuestionID: questionID,
		UserID:     userID,
		AnswerText: text,
		AnsweredAt: s.now(),
	}

	if err := s.answerRepo.Create(ctx, a); err != nil {
		// One answer per user per question, enforced by the composite key.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyAnswered
		}
		return nil, fmt.Errorf("creating answer: %w", err)
	}

	return a, nil
}
