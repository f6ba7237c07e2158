package timeline

// Snapshot is a point-in-time copy of a composition's controller state.
type Snapshot struct {
	ID       ObjectID
	State    State
	Start    uint64
	Stop     uint64
	Duration int64
	// Stack is the current stack, top first.
	Stack []ObjectID
	// Output is the member linked to the composition's output, or "".
	Output ObjectID
	// Segment is the validity window of Stack.
	Segment Window
	// Seek is the override range set by the last seek.
	Seek Window
	// Position is the instant the stack was last checked against.
	Position uint64
	// Pending is true when children changed since the stack was resolved.
	Pending bool
	// Members lists the children in start order.
	Members []ObjectID
}

// view is what publishLocked makes available to lock-free readers.
type view struct {
	Snapshot
	byStart []Entity
	byStop  []Entity
	members map[ObjectID]Entity
}

// Snapshot returns a copy of the composition's state as of the last
// completed mutation.
func (c *Composition) Snapshot() Snapshot {
	s := c.snap.Load().Snapshot
	s.Stack = cloneIDs(s.Stack)
	s.Members = cloneIDs(s.Members)
	s.Segment = s.Segment.clone()
	s.Seek = s.Seek.clone()
	return s
}

// publishLocked stores a fresh view for readers. Caller must hold c.mu.
func (c *Composition) publishLocked() {
	span := c.Span()
	output := c.output
	if _, ok := c.members[output]; !ok {
		output = ""
	}
	v := &view{
		Snapshot: Snapshot{
			ID:       c.ID(),
			State:    c.state,
			Start:    span.Start,
			Stop:     span.Stop,
			Duration: c.Duration(),
			Stack:    entityIDs(c.stack),
			Output:   output,
			Segment:  c.segment.clone(),
			Seek:     c.seek.clone(),
			Position: c.position,
			Pending:  c.dirty,
			Members:  entityIDs(c.index.byStart),
		},
		byStart: append([]Entity(nil), c.index.byStart...),
		byStop:  append([]Entity(nil), c.index.byStop...),
		members: make(map[ObjectID]Entity, len(c.members)),
	}
	for id, m := range c.members {
		v.members[id] = m.entity
	}
	c.snap.Store(v)
}

func cloneIDs(ids []ObjectID) []ObjectID {
	if ids == nil {
		return nil
	}
	return append([]ObjectID(nil), ids...)
}
