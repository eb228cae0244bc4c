package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Zuehlke/kwiz/internal/domain"
)

func TestGameRepositoryCRUD(t *testing.T) {
	repo := NewGameRepository()

	if _, ok := repo.FindByID("missing"); ok {
		t.Fatalf("expected miss on empty repository")
	}

	game := domain.NewGame("quiz-1", "A1")
	repo.Save(game)

	got, ok := repo.FindByID(game.ID)
	if !ok || got.ID != game.ID {
		t.Fatalf("expected to find saved game")
	}

	// Save with the same id replaces, not duplicates.
	repo.Save(game)
	if repo.Count() != 1 {
		t.Fatalf("expected count 1, got %d", repo.Count())
	}

	other := domain.NewGame("quiz-2", "A1")
	repo.Save(other)
	if len(repo.FindAll()) != 2 {
		t.Fatalf("expected FindAll to return both games")
	}

	repo.DeleteByID(game.ID)
	if _, ok := repo.FindByID(game.ID); ok {
		t.Fatalf("expected game deleted")
	}
	if repo.Count() != 1 {
		t.Fatalf("expected count 1 after delete, got %d", repo.Count())
	}
}

func TestGameRepositoryConcurrentAccess(t *testing.T) {
	repo := NewGameRepository()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			game := domain.NewGame(fmt.Sprintf("quiz-%d", i), "A1")
			repo.Save(game)
			repo.FindByID(game.ID)
			repo.FindAll()
		}(i)
	}
	wg.Wait()

	if repo.Count() != 16 {
		t.Fatalf("expected 16 games, got %d", repo.Count())
	}
}
