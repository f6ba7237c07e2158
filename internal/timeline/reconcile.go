package timeline

// LinkAction is the kind of topology change a LinkOp performs.
type LinkAction int

const (
	ActionUnlink LinkAction = iota
	ActionLink
)

func (a LinkAction) String() string {
	if a == ActionLink {
		return "link"
	}
	return "unlink"
}

// LinkOp connects or disconnects the output of Upstream from an input of
// Downstream, the object one level above it in a stack.
type LinkOp struct {
	Action     LinkAction
	Upstream   ObjectID
	Downstream ObjectID
}

// StackDiff is the result of comparing two stacks.
type StackDiff struct {
	// Ops lists link changes. An unlink always precedes a link emitted for
	// the same position.
	Ops []LinkOp
	// Deactivate lists objects that left the stack.
	Deactivate []ObjectID
	// Activate lists objects that entered the stack.
	Activate []ObjectID
}

// Empty reports whether applying the diff would change nothing.
func (d StackDiff) Empty() bool {
	return len(d.Ops) == 0 && len(d.Deactivate) == 0 && len(d.Activate) == 0
}

// Reconcile compares the previous stack with a newly resolved one, both
// ordered top to bottom, and returns the changes needed to go from one to
// the other. Objects present in both stacks are never deactivated, even if
// they moved to another position.
func Reconcile(prev, next []Entity) StackDiff {
	var diff StackDiff
	var deact []ObjectID
	seen := make(map[ObjectID]bool)
	markDeact := func(id ObjectID) {
		if !seen[id] {
			seen[id] = true
			deact = append(deact, id)
		}
	}

	n := len(prev)
	if len(next) < n {
		n = len(next)
	}

	for i := 0; i < n; i++ {
		oldID := prev[i].Object().ID()
		newID := next[i].Object().ID()
		same := oldID == newID

		// A multi-input operation picked again keeps its wiring.
		if same && isMultiInput(next[i]) {
			continue
		}
		predChanged := i > 0 && prev[i-1].Object().ID() != next[i-1].Object().ID()
		if same && !predChanged {
			continue
		}
		if !same {
			markDeact(oldID)
		}
		if i > 0 {
			diff.Ops = append(diff.Ops,
				LinkOp{Action: ActionUnlink, Upstream: oldID, Downstream: prev[i-1].Object().ID()},
				LinkOp{Action: ActionLink, Upstream: newID, Downstream: next[i-1].Object().ID()},
			)
		}
	}

	for i := n; i < len(next); i++ {
		if i > 0 {
			diff.Ops = append(diff.Ops, LinkOp{
				Action:     ActionLink,
				Upstream:   next[i].Object().ID(),
				Downstream: next[i-1].Object().ID(),
			})
		}
	}

	for i := n; i < len(prev); i++ {
		id := prev[i].Object().ID()
		if i > 0 {
			diff.Ops = append(diff.Ops, LinkOp{
				Action:     ActionUnlink,
				Upstream:   id,
				Downstream: prev[i-1].Object().ID(),
			})
		}
		markDeact(id)
	}

	inNext := make(map[ObjectID]bool, len(next))
	for _, e := range next {
		inNext[e.Object().ID()] = true
	}
	for _, id := range deact {
		if !inNext[id] {
			diff.Deactivate = append(diff.Deactivate, id)
		}
	}

	inPrev := make(map[ObjectID]bool, len(prev))
	for _, e := range prev {
		inPrev[e.Object().ID()] = true
	}
	for _, e := range next {
		if id := e.Object().ID(); !inPrev[id] {
			diff.Activate = append(diff.Activate, id)
		}
	}
	return diff
}
