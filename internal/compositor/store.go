package compositor

import "timeline-compositor/internal/timeline"

// Store is the persistence abstraction for compositions.
// The Repository uses Store for all reads and writes and serializes access
// to it; implementations need not be safe for concurrent use.
type Store interface {
	GetComposition(id timeline.ObjectID) (*timeline.Composition, bool)
	SetComposition(c *timeline.Composition)
	DeleteComposition(id timeline.ObjectID)
	ListCompositionIDs() []timeline.ObjectID
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	compositions map[timeline.ObjectID]*timeline.Composition
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		compositions: make(map[timeline.ObjectID]*timeline.Composition),
	}
}

// GetComposition implements Store.GetComposition.
func (s *InMemoryStore) GetComposition(id timeline.ObjectID) (*timeline.Composition, bool) {
	c, ok := s.compositions[id]
	return c, ok
}

// SetComposition implements Store.SetComposition.
func (s *InMemoryStore) SetComposition(c *timeline.Composition) {
	s.compositions[c.ID()] = c
}

// DeleteComposition implements Store.DeleteComposition.
func (s *InMemoryStore) DeleteComposition(id timeline.ObjectID) {
	delete(s.compositions, id)
}

// ListCompositionIDs implements Store.ListCompositionIDs.
func (s *InMemoryStore) ListCompositionIDs() []timeline.ObjectID {
	ids := make([]timeline.ObjectID, 0, len(s.compositions))
	for id := range s.compositions {
		ids = append(ids, id)
	}
	return ids
}
