package timeline

// ScanMode selects how the resolver walks the index.
type ScanMode int

const (
	// ScanStartOrder walks the start-ordering and stops at the first
	// object that already ended before the query instant. A covering object
	// placed after such an object in the start-ordering is not seen.
	ScanStartOrder ScanMode = iota

	// ScanStopOrder walks the stop-ordering (stop descending) and stops at
	// the first object that ended before the query instant. Every covering
	// object is seen.
	ScanStopOrder
)

func (m ScanMode) String() string {
	if m == ScanStopOrder {
		return "stop"
	}
	return "start"
}

// ParseScanMode maps "start" and "stop" to a ScanMode. Anything else
// yields ScanStartOrder.
func ParseScanMode(s string) ScanMode {
	if s == "stop" {
		return ScanStopOrder
	}
	return ScanStartOrder
}

// stackSlots is the number of stack entries a composition outputs.
const stackSlots = 1

// resolve returns the objects eligible at t, ordered by ascending priority.
// Objects with equal priority keep the order in which they were scanned.
// An object whose stop equals t still counts as covering t.
func resolve(ix *index, t uint64, floor uint32, activeOnly bool, mode ScanMode) []Entity {
	var stack []Entity
	var prios []uint32

	push := func(e Entity, st objectState) {
		if st.priority < floor || (activeOnly && !st.active) {
			return
		}
		i := len(prios)
		for i > 0 && prios[i-1] > st.priority {
			i--
		}
		stack = append(stack, nil)
		prios = append(prios, 0)
		copy(stack[i+1:], stack[i:])
		copy(prios[i+1:], prios[i:])
		stack[i] = e
		prios[i] = st.priority
	}

	switch mode {
	case ScanStopOrder:
		for _, e := range ix.byStop {
			st := e.Object().state()
			if st.stop < t {
				break
			}
			if st.start > t {
				continue
			}
			push(e, st)
		}
	default:
		for _, e := range ix.byStart {
			st := e.Object().state()
			if st.start > t {
				break
			}
			if st.stop < t {
				// Too far: assumes later starts cannot cover t either.
				break
			}
			push(e, st)
		}
	}
	return stack
}

// resolveTopLevel keeps the first stackSlots entries of the resolved stack
// and returns the instant up to which that result stays valid: the
// smallest stop among the kept entries, clamped to the next start after t
// so that a later object is never missed. ok is false when no bound exists.
func resolveTopLevel(ix *index, t uint64, floor uint32, mode ScanMode) (stack []Entity, until uint64, ok bool) {
	full := resolve(ix, t, floor, true, mode)
	n := stackSlots
	if len(full) < n {
		n = len(full)
	}
	stack = full[:n:n]

	for _, e := range stack {
		stop := e.Object().Stop()
		if !ok || stop < until {
			until, ok = stop, true
		}
	}
	for _, e := range ix.byStart {
		start := e.Object().Start()
		if start > t {
			if !ok || start < until {
				until, ok = start, true
			}
			break
		}
	}
	return stack, until, ok
}
