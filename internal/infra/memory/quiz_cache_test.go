package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zuehlke/kwiz/internal/domain"
)

type countingLoader struct {
	loads   int
	quizzes map[string]*domain.Quiz
}

func (l *countingLoader) LoadQuiz(_ context.Context, quizID string) (*domain.Quiz, error) {
	l.loads++
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return nil, domain.ErrNotFound
}

func TestQuizCacheLoadsOnce(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]*domain.Quiz{
		"general": domain.NewQuiz("general", "General Knowledge", 10),
	}}
	cache := NewQuizCache(loader, time.Minute)

	for i := 0; i < 5; i++ {
		quiz, err := cache.GetQuiz(context.Background(), "general")
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
		if quiz.Name != "General Knowledge" {
			t.Fatalf("unexpected quiz %q", quiz.Name)
		}
	}

	if loader.loads != 1 {
		t.Fatalf("expected a single backing load, got %d", loader.loads)
	}
}

func TestQuizCacheExpires(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]*domain.Quiz{
		"general": domain.NewQuiz("general", "General Knowledge", 10),
	}}
	cache := NewQuizCache(loader, time.Minute)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	if _, err := cache.GetQuiz(context.Background(), "general"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	// Past the TTL plus its jitter headroom the entry must be refetched.
	now = now.Add(2 * time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "general"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	if loader.loads != 2 {
		t.Fatalf("expected a reload after expiry, got %d loads", loader.loads)
	}
}

func TestQuizCacheDoesNotCacheErrors(t *testing.T) {
	loader := &countingLoader{quizzes: map[string]*domain.Quiz{}}
	cache := NewQuizCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if loader.loads != 2 {
		t.Fatalf("failed loads must not be cached, got %d loads", loader.loads)
	}
}
