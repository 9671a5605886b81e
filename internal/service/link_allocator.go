package service

import (
	"context"
	"errors"

	"github.com/mkozic/askbox/internal/repository"
	"github.com/mkozic/askbox/pkg/shortid"
)

var ErrAllocationExhausted = errors.New("could not allocate a unique public link")

const linkAttempts = 5

// LinkAllocator hands out short public link tokens for shareable questions.
// The generator is swappable so collision behavior can be exercised in
// tests. The unique index on questions.public_link remains the final word;
// the lookup here only keeps retries cheap.
type LinkAllocator struct {
	questionRepo repository.QuestionRepository
	generate     func() string
}

func NewLinkAllocator(questionRepo repository.QuestionRepository) *LinkAllocator {
	return &LinkAllocator{
		questionRepo: questionRepo,
		generate:     func() string { return shortid.New(shortid.Length) },
	}
}

func (a *LinkAllocator) Allocate(ctx context.Context) (string, error) {
	for i := 0; i < linkAttempts; i++ {
		link := a.generate()

		exists, err := a.questionRepo.PublicLinkExists(ctx, link)
		if err != nil {
			return "", err
		}
		if !exists {
			return link, nil
		}
	}
	return "", ErrAllocationExhausted
}
