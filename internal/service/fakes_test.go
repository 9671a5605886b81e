package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mkozic/askbox/internal/domain"
	"github.com/mkozic/askbox/internal/repository"
)

// In-memory fakes for the repository interfaces. They enforce the same
// uniqueness rules the Postgres schema does, so conflict paths behave like
// production.

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsernameOrEmail(ctx context.Context, idText string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == idText || u.Email == idText {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) SearchByPrefix(ctx context.Context, viewerID uuid.UUID, key string) ([]domain.Profile, error) {
	key = strings.ToLower(key)
	var profiles []domain.Profile
	for _, u := range f.users {
		if u.ID == viewerID {
			continue
		}
		if strings.HasPrefix(strings.ToLower(u.Username), key) ||
			strings.HasPrefix(strings.ToLower(u.Name), key) {
			profiles = append(profiles, u.Profile())
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Username < profiles[j].Username })
	return profiles, nil
}

func (f *fakeUserRepo) FilterExisting(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var existing []uuid.UUID
	for _, id := range ids {
		if _, ok := f.users[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

type fakeFriendshipRepo struct {
	records map[uuid.UUID]*domain.Friendship
	users   *fakeUserRepo
}

func newFakeFriendshipRepo(users *fakeUserRepo) *fakeFriendshipRepo {
	return &fakeFriendshipRepo{
		records: make(map[uuid.UUID]*domain.Friendship),
		users:   users,
	}
}

func (f *fakeFriendshipRepo) Create(ctx context.Context, fr *domain.Friendship) error {
	for _, existing := range f.records {
		if samePair(existing, fr.SenderID, fr.ReceiverID) {
			return repository.ErrDuplicate
		}
	}
	copied := *fr
	f.records[fr.ID] = &copied
	return nil
}

func (f *fakeFriendshipRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	if fr, ok := f.records[id]; ok {
		copied := *fr
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeFriendshipRepo) GetByUsers(ctx context.Context, a, b uuid.UUID) (*domain.Friendship, error) {
	for _, fr := range f.records {
		if samePair(fr, a, b) {
			copied := *fr
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeFriendshipRepo) Accept(ctx context.Context, id uuid.UUID) error {
	if fr, ok := f.records[id]; ok {
		fr.Status = domain.FriendshipAccepted
	}
	return nil
}

func (f *fakeFriendshipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.records, id)
	return nil
}

func (f *fakeFriendshipRepo) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	for _, fr := range f.records {
		if fr.Status == domain.FriendshipAccepted && samePair(fr, a, b) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendshipRepo) ListFriends(ctx context.Context, userID uuid.UUID, search string) ([]domain.Profile, error) {
	search = strings.ToLower(search)
	var friends []domain.Profile
	for _, fr := range f.records {
		if fr.Status != domain.FriendshipAccepted {
			continue
		}
		if fr.SenderID != userID && fr.ReceiverID != userID {
			continue
		}
		other := f.users.users[fr.Other(userID)]
		if other == nil {
			continue
		}
		if search != "" &&
			!strings.HasPrefix(strings.ToLower(other.Username), search) &&
			!strings.HasPrefix(strings.ToLower(other.Name), search) {
			continue
		}
		friends = append(friends, other.Profile())
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Username < friends[j].Username })
	return friends, nil
}

func (f *fakeFriendshipRepo) ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	var reqs []domain.Friendship
	for _, fr := range f.records {
		if fr.Status != domain.FriendshipPending {
			continue
		}
		if fr.SenderID != userID && fr.ReceiverID != userID {
			continue
		}
		copied := *fr
		reqs = append(reqs, copied)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func samePair(f *domain.Friendship, a, b uuid.UUID) bool {
	return (f.SenderID == a && f.ReceiverID == b) || (f.SenderID == b && f.ReceiverID == a)
}

type fakeQuestionRepo struct {
	questions  map[uuid.UUID]*domain.Question
	recipients map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{
		questions:  make(map[uuid.UUID]*domain.Question),
		recipients: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (f *fakeQuestionRepo) Create(ctx context.Context, q *domain.Question, recipients []uuid.UUID) error {
	if q.PublicLink != nil {
		for _, existing := range f.questions {
			if existing.PublicLink != nil && *existing.PublicLink == *q.PublicLink {
				return repository.ErrDuplicate
			}
		}
	}
	copied := *q
	f.questions[q.ID] = &copied
	set := make(map[uuid.UUID]bool, len(recipients))
	for _, id := range recipients {
		set[id] = true
	}
	f.recipients[q.ID] = set
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	if q, ok := f.questions[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeQuestionRepo) GetByPublicLink(ctx context.Context, link string) (*domain.Question, error) {
	for _, q := range f.questions {
		if q.PublicLink != nil && *q.PublicLink == link {
			copied := *q
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeQuestionRepo) PublicLinkExists(ctx context.Context, link string) (bool, error) {
	q, _ := f.GetByPublicLink(ctx, link)
	return q != nil, nil
}

func (f *fakeQuestionRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Question, error) {
	var qualifying []domain.Question
	for _, q := range f.questions {
		if q.CreatedByID == userID || f.recipients[q.ID][userID] {
			qualifying = append(qualifying, *q)
		}
	}
	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].CreatedAt.After(qualifying[j].CreatedAt)
	})
	return window(qualifying, limit, offset), nil
}

func (f *fakeQuestionRepo) IsRecipient(ctx context.Context, questionID, userID uuid.UUID) (bool, error) {
	return f.recipients[questionID][userID], nil
}

type fakeAnswerRepo struct {
	answers map[uuid.UUID]*domain.Answer
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{answers: make(map[uuid.UUID]*domain.Answer)}
}

func (f *fakeAnswerRepo) Create(ctx context.Context, a *domain.Answer) error {
	for _, existing := range f.answers {
		if existing.QuestionID == a.QuestionID && existing.UserID == a.UserID {
			return repository.ErrDuplicate
		}
	}
	copied := *a
	f.answers[a.ID] = &copied
	return nil
}

func (f *fakeAnswerRepo) GetByQuestionAndUser(ctx context.Context, questionID, userID uuid.UUID) (*domain.Answer, error) {
	for _, a := range f.answers {
		if a.QuestionID == questionID && a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAnswerRepo) ListOthers(ctx context.Context, questionID, excludeUserID uuid.UUID, limit, offset int) ([]domain.Answer, error) {
	var others []domain.Answer
	for _, a := range f.answers {
		if a.QuestionID == questionID && a.UserID != excludeUserID {
			others = append(others, *a)
		}
	}
	sort.Slice(others, func(i, j int) bool {
		return others[i].AnsweredAt.After(others[j].AnsweredAt)
	})
	return window(others, limit, offset), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
