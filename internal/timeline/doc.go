// Package timeline composes time-bounded media objects into a single
// output.
//
// A Composition keeps its children in two orderings, one by start and one
// by stop. At a query instant it resolves the stack of children eligible to
// render, lowest priority value first, and links the head of that stack to
// its output. Moving to a new instant only re-resolves when the instant
// falls outside the window for which the previous stack is known to hold,
// and re-linking touches only the positions that changed.
//
// Children report property changes through observers. A composition keeps
// its own start, stop and duration in line with its children on every
// change, but only touches the downstream graph while paused.
package timeline
