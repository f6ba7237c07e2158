package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Option configures a Composition.
type Option func(*Composition)

// WithGraph sets the downstream graph the composition links objects into.
func WithGraph(g Graph) Option {
	return func(c *Composition) {
		if g != nil {
			c.graph = g
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(c *Composition) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRecorder sets the hook that receives work counts.
func WithRecorder(r Recorder) Option {
	return func(c *Composition) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithPriorityFloor excludes objects whose priority is below floor from the stack.
func WithPriorityFloor(floor uint32) Option {
	return func(c *Composition) { c.floor = floor }
}

// WithScanMode selects how the stack resolver walks the index.
func WithScanMode(m ScanMode) Option {
	return func(c *Composition) { c.scan = m }
}

// WithObject applies object options (id, priority, active) to the
// composition's own timed object. Start and duration are derived from the
// children and get overwritten.
func WithObject(opts ...ObjectOption) Option {
	return func(c *Composition) {
		for _, opt := range opts {
			opt(c.TimedObject)
		}
	}
}

type member struct {
	entity Entity
	cancel func()
}

// Composition arranges timed children on its own timeline and keeps the
// single object that should render at the current position linked to its
// output. It is itself a timed object and can be nested.
//
// All mutation runs under one lock per composition. Queries such as
// Snapshot, Stack and ResolveAt read a published copy and never block on it.
type Composition struct {
	*TimedObject

	mu       sync.Mutex
	index    index
	members  map[ObjectID]*member
	state    State
	stack    []Entity
	linked   []Entity // stack as last applied to the graph
	output   ObjectID
	segment  Window
	seek     Window
	position uint64
	dirty    bool

	graph    Graph
	recorder Recorder
	log      *slog.Logger
	floor    uint32
	scan     ScanMode

	tasks taskQueue
	snap  atomic.Pointer[view]
}

// NewComposition returns an empty composition in the null state.
func NewComposition(opts ...Option) *Composition {
	c := &Composition{
		TimedObject: newTimedObject(KindComposition),
		members:     make(map[ObjectID]*member),
		graph:       nopGraph{},
		recorder:    nopRecorder{},
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(slog.String("composition_id", string(c.ID())))

	c.mu.Lock()
	c.recomputeBoundsLocked()
	c.publishLocked()
	c.mu.Unlock()
	return c
}

func (c *Composition) Object() *TimedObject {
	if c == nil {
		return nil
	}
	return c.TimedObject
}

func (c *Composition) isEntity() {}

// Add makes e a child of the composition.
func (c *Composition) Add(e Entity) error {
	if e == nil || e.Object() == nil {
		return ErrNotTimedObject
	}
	obj := e.Object()
	if obj == c.TimedObject {
		return ErrCompositionCycle
	}
	if sub, ok := e.(*Composition); ok && sub.hasDescendant(c.ID()) {
		return ErrCompositionCycle
	}
	if !obj.claim(c.ID()) {
		return ErrAlreadyMember
	}

	return c.mutate(func() ([]Property, error) {
		c.members[obj.ID()] = &member{entity: e, cancel: obj.Watch(c.onChildChanged)}
		c.index.insert(e)
		changed := c.recomputeBoundsLocked()
		c.log.Debug("object added",
			slog.String("object_id", string(obj.ID())),
			slog.String("kind", obj.Kind().String()))
		return changed, c.childrenChangedLocked()
	})
}

// Remove detaches e from the composition.
func (c *Composition) Remove(e Entity) error {
	if e == nil || e.Object() == nil {
		return ErrNotTimedObject
	}
	id := e.Object().ID()

	return c.mutate(func() ([]Property, error) {
		m, ok := c.members[id]
		if !ok {
			return nil, ErrNotFound
		}
		m.cancel()
		delete(c.members, id)
		c.index.remove(id)
		c.stack = withoutID(c.stack, id)
		m.entity.Object().release(c.ID())
		changed := c.recomputeBoundsLocked()
		c.log.Debug("object removed", slog.String("object_id", string(id)))
		return changed, c.childrenChangedLocked()
	})
}

// State returns the current lifecycle state.
func (c *Composition) State() State {
	return c.snap.Load().State
}

// SetState moves the composition one lifecycle step. Entering paused from
// ready resolves the stack at the effective start; leaving paused for ready
// tears the stack down and forgets any seek.
func (c *Composition) SetState(to State) error {
	return c.mutate(func() ([]Property, error) {
		from := c.state
		if from == to {
			return nil, nil
		}
		if !validTransition(from, to) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		var err error
		switch {
		case from == StateReady && to == StatePaused:
			c.state = StatePaused
			err = c.reconfigureLocked(c.effectiveStartLocked())
		case from == StatePaused && to == StateReady:
			err = c.applyLocked(Reconcile(c.linked, nil), nil)
			c.stack = nil
			c.linked = nil
			c.segment = Window{}
			c.seek = Window{}
			c.position = 0
			c.dirty = false
			c.state = StateReady
		case from == StatePlaying && to == StatePaused:
			c.state = StatePaused
			if c.dirty {
				err = c.reconfigureLocked(c.position)
			}
		default:
			c.state = to
		}

		c.log.Info("state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()))
		return nil, err
	})
}

// Seek records an override range whose start replaces the composition's
// own start as the effective start. When paused the stack is updated right
// away; when playing the update waits for the next pause. Non-time seeks
// are ignored.
func (c *Composition) Seek(s Seek) error {
	if s.Rate == 0 {
		return fmt.Errorf("%w: zero rate", ErrInvalidSeek)
	}
	if s.Range.Start != nil && s.Range.Stop != nil && *s.Range.Stop < *s.Range.Start {
		return fmt.Errorf("%w: stop before start", ErrInvalidSeek)
	}
	if s.Format != FormatTime {
		return nil
	}

	return c.mutate(func() ([]Property, error) {
		c.seek = s.Range.clone()
		t := c.effectiveStartLocked()
		switch c.state {
		case StatePaused:
			_, err := c.updateLocked(t)
			return nil, err
		case StatePlaying:
			c.position = t
			c.segment = Window{}
			c.dirty = true
		}
		return nil, nil
	})
}

// UpdateAt brings the stack in line with instant t. It does nothing when t
// lies in the current validity window and reports whether the stack was
// re-resolved. The composition must be paused.
func (c *Composition) UpdateAt(t uint64) (bool, error) {
	var reconfigured bool
	err := c.mutate(func() ([]Property, error) {
		if c.state != StatePaused {
			return nil, ErrNotPaused
		}
		var err error
		reconfigured, err = c.updateLocked(t)
		return nil, err
	})
	return reconfigured, err
}

// RecomputeBounds derives start, stop and duration from the children and
// notifies watchers of the fields that changed.
func (c *Composition) RecomputeBounds() {
	_ = c.mutate(func() ([]Property, error) {
		return c.recomputeBoundsLocked(), nil
	})
}

// Defer queues fn to run once no mutation of the composition is in
// progress. Graph callbacks use it to mutate the composition they were
// called from. Queued functions run one at a time, in order.
func (c *Composition) Defer(fn func()) {
	c.tasks.push(fn)
	if c.mu.TryLock() {
		c.mu.Unlock()
		c.tasks.drain()
	}
}

// Member returns the child with the given id.
func (c *Composition) Member(id ObjectID) (Entity, bool) {
	e, ok := c.snap.Load().members[id]
	return e, ok
}

// Members returns the children in start order.
func (c *Composition) Members() []Entity {
	v := c.snap.Load()
	out := make([]Entity, len(v.byStart))
	copy(out, v.byStart)
	return out
}

// Stack returns the current stack, top first.
func (c *Composition) Stack() []ObjectID {
	return cloneIDs(c.snap.Load().Stack)
}

// ResolveAt returns every eligible object at t, highest precedence first,
// without touching the current stack or the graph.
func (c *Composition) ResolveAt(t uint64) []ObjectID {
	v := c.snap.Load()
	ix := index{byStart: v.byStart, byStop: v.byStop}
	return entityIDs(resolve(&ix, t, c.floor, true, c.scan))
}

// TranslateSeek maps a seek in the composition's time into the media time
// of child id.
func (c *Composition) TranslateSeek(id ObjectID, s Seek) (Seek, error) {
	e, ok := c.Member(id)
	if !ok {
		return s, ErrNotFound
	}
	return translateSeek(c.log, id, e.Object().Span(), s), nil
}

// TranslatePosition maps a position reported by child id into the
// composition's time.
func (c *Composition) TranslatePosition(id ObjectID, p Position) (Position, error) {
	e, ok := c.Member(id)
	if !ok {
		return p, ErrNotFound
	}
	return translatePosition(c.log, id, e.Object().Span(), p), nil
}

// TranslateSegment maps a segment announced by child id into the
// composition's time.
func (c *Composition) TranslateSegment(id ObjectID, seg SegmentEvent) (SegmentEvent, error) {
	e, ok := c.Member(id)
	if !ok {
		return seg, ErrNotFound
	}
	return translateSegment(c.log, id, e.Object().Span(), seg), nil
}

// mutate runs fn under the mutation lock, publishes the new view, then
// notifies watchers of the composition's own changed bounds and drains
// deferred tasks, both outside the lock.
func (c *Composition) mutate(fn func() ([]Property, error)) error {
	changed, err := c.locked(fn)
	if len(changed) > 0 {
		c.notify(changed...)
	}
	c.tasks.drain()
	return err
}

func (c *Composition) locked(fn func() ([]Property, error)) ([]Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed, err := fn()
	c.publishLocked()
	return changed, err
}

func (c *Composition) onChildChanged(id ObjectID, prop Property) {
	switch prop {
	case PropStart, PropStop, PropPriority, PropActive:
	default:
		return
	}

	err := c.mutate(func() ([]Property, error) {
		if _, ok := c.members[id]; !ok {
			return nil, nil
		}
		switch prop {
		case PropStart:
			c.index.resortStart()
		case PropStop:
			c.index.resortStop()
		case PropPriority:
			c.index.resortStart()
			c.index.resortStop()
		}
		c.recorder.PropertyChanged(prop)
		changed := c.recomputeBoundsLocked()
		return changed, c.childrenChangedLocked()
	})
	if err != nil {
		c.log.Warn("reconfigure after property change failed",
			slog.String("object_id", string(id)),
			slog.String("property", prop.String()),
			slog.String("error", err.Error()))
	}
}

// childrenChangedLocked drops the validity window after any change to the
// children. The stack is re-resolved at once when paused and on the next
// pause otherwise.
func (c *Composition) childrenChangedLocked() error {
	c.segment = Window{}
	c.dirty = true
	if c.state != StatePaused {
		return nil
	}
	return c.reconfigureLocked(c.position)
}

func (c *Composition) effectiveStartLocked() uint64 {
	if c.seek.Start != nil {
		return *c.seek.Start
	}
	return c.Start()
}

func (c *Composition) updateLocked(t uint64) (bool, error) {
	if c.segment.Contains(t) {
		c.position = t
		return false, nil
	}
	return true, c.reconfigureLocked(t)
}

func (c *Composition) reconfigureLocked(t uint64) error {
	stack, until, ok := resolveTopLevel(&c.index, t, c.floor, c.scan)
	diff := Reconcile(c.linked, stack)
	err := c.applyLocked(diff, stack)

	c.stack = stack
	c.linked = stack
	c.segment = Window{Start: timePtr(t)}
	if ok {
		c.segment.Stop = timePtr(until)
	}
	c.position = t
	c.dirty = false

	c.recorder.Reconfigured(c.ID(), len(diff.Ops), len(diff.Deactivate))
	c.log.Debug("stack resolved",
		slog.Uint64("time", t),
		slog.Int("depth", len(stack)),
		slog.String("output", string(c.output)),
		slog.Int("link_ops", len(diff.Ops)),
		slog.Int("deactivated", len(diff.Deactivate)))
	return err
}

// applyLocked pushes diff into the graph and points the output at the top
// of stack. Failures are collected; the remaining operations still run.
func (c *Composition) applyLocked(diff StackDiff, stack []Entity) error {
	var errs []error
	for _, op := range diff.Ops {
		var err error
		if op.Action == ActionLink {
			err = c.graph.Link(op.Upstream, op.Downstream)
		} else {
			err = c.graph.Unlink(op.Upstream, op.Downstream)
		}
		c.recorder.LinkOp(op.Action)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s -> %s: %w", op.Action, op.Upstream, op.Downstream, err))
		}
	}
	for _, id := range diff.Deactivate {
		if err := c.graph.Deactivate(id); err != nil {
			errs = append(errs, fmt.Errorf("deactivate %s: %w", id, err))
		}
	}
	for _, id := range diff.Activate {
		if err := c.graph.Activate(id); err != nil {
			errs = append(errs, fmt.Errorf("activate %s: %w", id, err))
		}
	}

	var target ObjectID
	if len(stack) > 0 {
		target = stack[0].Object().ID()
	}
	if target != c.output {
		if err := c.graph.SetOutput(c.ID(), target); err != nil {
			errs = append(errs, fmt.Errorf("set output %q: %w", target, err))
		}
		c.output = target
	}
	return errors.Join(errs...)
}

// withoutID returns stack minus the entry for id. The graph keeps the
// removed object linked until the next reconfigure unlinks it.
func withoutID(stack []Entity, id ObjectID) []Entity {
	out := make([]Entity, 0, len(stack))
	for _, e := range stack {
		if e.Object().ID() != id {
			out = append(out, e)
		}
	}
	return out
}

// hasDescendant reports whether id is a child of c at any depth.
func (c *Composition) hasDescendant(id ObjectID) bool {
	for _, e := range c.snap.Load().members {
		if e.Object().ID() == id {
			return true
		}
		if sub, ok := e.(*Composition); ok && sub.hasDescendant(id) {
			return true
		}
	}
	return false
}
