package compositor

import (
	"errors"
	"sync"
	"testing"

	"timeline-compositor/internal/timeline"
)

func TestInMemoryRepository_Add(t *testing.T) {
	repo := NewInMemoryRepository()

	t.Run("success", func(t *testing.T) {
		if err := repo.Add(newTestComposition("c1")); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if _, ok := repo.Get("c1"); !ok {
			t.Error("Get: ok false after Add")
		}
	})

	t.Run("duplicate_id_rejected", func(t *testing.T) {
		err := repo.Add(newTestComposition("c1"))
		if !errors.Is(err, ErrCompositionExists) {
			t.Errorf("expected ErrCompositionExists, got %v", err)
		}
		if repo.Count() != 1 {
			t.Errorf("Count: got %d want 1", repo.Count())
		}
	})
}

func TestInMemoryRepository_Delete(t *testing.T) {
	repo := NewInMemoryRepository()
	parent := newTestComposition("parent")
	child := newTestComposition("child")
	_ = repo.Add(parent)
	_ = repo.Add(child)
	if err := parent.Add(child); err != nil {
		t.Fatalf("nest: %v", err)
	}

	t.Run("nested_rejected", func(t *testing.T) {
		if err := repo.Delete("child"); !errors.Is(err, ErrCompositionNested) {
			t.Errorf("expected ErrCompositionNested, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if err := repo.Delete("nope"); !errors.Is(err, timeline.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("stale_handle_no_longer_found", func(t *testing.T) {
		if err := parent.Remove(child); err != nil {
			t.Fatalf("unnest: %v", err)
		}
		if err := repo.Delete("child"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok := repo.Get("child"); ok {
			t.Error("Get should not find a deleted composition")
		}
		if got := repo.IDs(); len(got) != 1 || got[0] != "parent" {
			t.Errorf("IDs: got %v", got)
		}
	})
}

func TestInMemoryRepository_concurrent_access(t *testing.T) {
	repo := NewInMemoryRepository()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := timeline.NewComposition()
			if err := repo.Add(c); err != nil {
				t.Errorf("Add: %v", err)
				return
			}
			_, _ = repo.Get(c.ID())
			_ = repo.Count()
		}()
	}
	wg.Wait()

	if repo.Count() != 50 {
		t.Errorf("Count: got %d want 50", repo.Count())
	}
}

type countingStore struct {
	*InMemoryStore
	sets int
}

func (s *countingStore) SetComposition(c *timeline.Composition) {
	s.sets++
	s.InMemoryStore.SetComposition(c)
}

func TestNewInMemoryRepositoryWithStore(t *testing.T) {
	store := &countingStore{InMemoryStore: NewInMemoryStore()}
	repo := NewInMemoryRepositoryWithStore(store)
	_ = repo.Add(newTestComposition("c1"))
	_ = repo.Add(newTestComposition("c1"))

	if store.sets != 1 {
		t.Errorf("expected 1 write to the store, got %d", store.sets)
	}
}
