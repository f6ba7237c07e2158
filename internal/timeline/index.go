package timeline

import "sort"

// index keeps two orderings over the same set of entities:
// byStart by (start asc, priority asc) and byStop by (stop desc, priority asc).
// It is not safe for concurrent use; the owning Composition serializes access.
type index struct {
	byStart []Entity
	byStop  []Entity
}

func startBefore(a, b objectState) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	return a.priority < b.priority
}

func stopBefore(a, b objectState) bool {
	if a.stop != b.stop {
		return a.stop > b.stop
	}
	return a.priority < b.priority
}

func (ix *index) len() int { return len(ix.byStart) }

// insert places e in both orderings, after any entries with an equal key.
func (ix *index) insert(e Entity) {
	st := e.Object().state()
	ix.byStart = insertSorted(ix.byStart, e, func(other objectState) bool { return startBefore(st, other) })
	ix.byStop = insertSorted(ix.byStop, e, func(other objectState) bool { return stopBefore(st, other) })
}

func insertSorted(list []Entity, e Entity, goesBefore func(objectState) bool) []Entity {
	i := sort.Search(len(list), func(i int) bool {
		return goesBefore(list[i].Object().state())
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}

// remove drops the entity with the given id from both orderings and
// reports whether it was present.
func (ix *index) remove(id ObjectID) bool {
	var found bool
	ix.byStart, found = removeID(ix.byStart, id)
	ix.byStop, _ = removeID(ix.byStop, id)
	return found
}

func removeID(list []Entity, id ObjectID) ([]Entity, bool) {
	for i, e := range list {
		if e.Object().ID() == id {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1], true
		}
	}
	return list, false
}

func (ix *index) resortStart() { resort(ix.byStart, startBefore) }

func (ix *index) resortStop() { resort(ix.byStop, stopBefore) }

// resort snapshots every key first so concurrent property writes cannot
// make the comparator inconsistent mid-sort.
func resort(list []Entity, less func(a, b objectState) bool) {
	type keyed struct {
		e  Entity
		st objectState
	}
	tmp := make([]keyed, len(list))
	for i, e := range list {
		tmp[i] = keyed{e: e, st: e.Object().state()}
	}
	sort.SliceStable(tmp, func(i, j int) bool { return less(tmp[i].st, tmp[j].st) })
	for i := range tmp {
		list[i] = tmp[i].e
	}
}

// head returns the first entity of each ordering, or nil when empty.
func (ix *index) head() (first, last Entity) {
	if len(ix.byStart) == 0 {
		return nil, nil
	}
	return ix.byStart[0], ix.byStop[0]
}
