package compositor

import (
	"errors"
	"sort"
	"sync"

	"timeline-compositor/internal/timeline"
)

// Repository defines the concurrency-safe contract for holding compositions
// by id.
type Repository interface {
	// Add stores c. It fails with ErrCompositionExists if the id is taken.
	Add(c *timeline.Composition) error

	// Get returns the composition with the given id. The ok return is false
	// once the composition has been deleted, even if callers still hold it.
	Get(id timeline.ObjectID) (c *timeline.Composition, ok bool)

	// Delete drops a composition. Compositions nested in another one cannot
	// be deleted until they are removed from their parent.
	Delete(id timeline.ObjectID) error

	// IDs returns every stored id in ascending order.
	IDs() []timeline.ObjectID

	// Count returns the number of stored compositions. Used for metrics.
	Count() int
}

var (
	// ErrCompositionExists is returned when adding a composition whose id is
	// already stored.
	ErrCompositionExists = errors.New("composition already exists")

	// ErrCompositionNested is returned when deleting a composition that is
	// still a child of another composition.
	ErrCompositionNested = errors.New("composition is nested in another composition")
)

// InMemoryRepository is a concurrency-safe in-memory implementation of Repository.
// It uses a Store for persistence; by default that is an InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// Add implements Repository.Add.
func (r *InMemoryRepository) Add(c *timeline.Composition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store.GetComposition(c.ID()); exists {
		return ErrCompositionExists
	}
	r.store.SetComposition(c)
	return nil
}

// Get implements Repository.Get.
func (r *InMemoryRepository) Get(id timeline.ObjectID) (*timeline.Composition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetComposition(id)
}

// Delete implements Repository.Delete.
func (r *InMemoryRepository) Delete(id timeline.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.store.GetComposition(id)
	if !exists {
		return timeline.ErrNotFound
	}
	if c.Parent() != "" {
		return ErrCompositionNested
	}
	r.store.DeleteComposition(id)
	return nil
}

// IDs implements Repository.IDs.
func (r *InMemoryRepository) IDs() []timeline.ObjectID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.store.ListCompositionIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count implements Repository.Count.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store.ListCompositionIDs())
}
