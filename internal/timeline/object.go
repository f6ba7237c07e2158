package timeline

import (
	"sync"

	"github.com/google/uuid"
)

// Second is one second expressed in timeline units (nanoseconds).
const Second uint64 = 1_000_000_000

// ObjectID uniquely identifies a timed object.
type ObjectID string

// NewObjectID returns a fresh random ObjectID.
func NewObjectID() ObjectID {
	return ObjectID(uuid.NewString())
}

// Kind tells the variants of a timed object apart.
type Kind int

const (
	KindSource Kind = iota
	KindOperation
	KindComposition
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindOperation:
		return "operation"
	case KindComposition:
		return "composition"
	default:
		return "unknown"
	}
}

// Property names an observable field of a TimedObject.
type Property int

const (
	PropStart Property = iota
	PropDuration
	PropStop
	PropMediaStart
	PropMediaDuration
	PropMediaStop
	PropRate
	PropPriority
	PropActive
)

var propertyNames = [...]string{
	PropStart:         "start",
	PropDuration:      "duration",
	PropStop:          "stop",
	PropMediaStart:    "media_start",
	PropMediaDuration: "media_duration",
	PropMediaStop:     "media_stop",
	PropRate:          "rate",
	PropPriority:      "priority",
	PropActive:        "active",
}

func (p Property) String() string {
	if p < 0 || int(p) >= len(propertyNames) {
		return "unknown"
	}
	return propertyNames[p]
}

// Observer receives one call per changed property of the object it watches.
// It is invoked after the object's internal lock has been released.
type Observer func(id ObjectID, prop Property)

// TimedObject holds the time bounds, priority and activity of an entity
// placed on a timeline. All methods are safe for concurrent use.
type TimedObject struct {
	id   ObjectID
	kind Kind

	mu            sync.RWMutex
	start         uint64
	duration      int64
	mediaStart    uint64
	mediaStartSet bool
	mediaDuration int64
	rate          float64
	priority      uint32
	active        bool
	parent        ObjectID

	observers map[uint64]Observer
	nextObs   uint64
}

// ObjectOption configures a TimedObject at construction time.
type ObjectOption func(*TimedObject)

// WithID sets the object's identity instead of generating one.
func WithID(id ObjectID) ObjectOption {
	return func(o *TimedObject) {
		if id != "" {
			o.id = id
		}
	}
}

// WithStart sets the initial start position.
func WithStart(start uint64) ObjectOption {
	return func(o *TimedObject) { o.start = start }
}

// WithDuration sets the initial duration. Negative values are ignored.
func WithDuration(d int64) ObjectOption {
	return func(o *TimedObject) {
		if d >= 0 {
			o.duration = d
		}
	}
}

// WithMediaStart sets the left bound of the object's internal time domain.
func WithMediaStart(ms uint64) ObjectOption {
	return func(o *TimedObject) {
		o.mediaStart = ms
		o.mediaStartSet = true
	}
}

// WithMediaDuration sets the length of the object's internal time domain.
func WithMediaDuration(d int64) ObjectOption {
	return func(o *TimedObject) {
		if d >= 0 {
			o.mediaDuration = d
		}
	}
}

// WithPriority sets the priority. Lower values take precedence.
func WithPriority(p uint32) ObjectOption {
	return func(o *TimedObject) { o.priority = p }
}

// WithActive sets whether the object is eligible for stack resolution.
func WithActive(active bool) ObjectOption {
	return func(o *TimedObject) { o.active = active }
}

func newTimedObject(kind Kind, opts ...ObjectOption) *TimedObject {
	o := &TimedObject{
		id:        NewObjectID(),
		kind:      kind,
		rate:      1.0,
		active:    true,
		observers: make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.updateRateLocked()
	return o
}

// ID returns the object's identity.
func (o *TimedObject) ID() ObjectID { return o.id }

// Kind returns the variant the object belongs to.
func (o *TimedObject) Kind() Kind { return o.kind }

func (o *TimedObject) Start() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.start
}

func (o *TimedObject) Duration() int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.duration
}

// Stop returns start + duration.
func (o *TimedObject) Stop() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.start + uint64(o.duration)
}

// MediaStart returns the left bound of the internal time domain and whether it is set.
func (o *TimedObject) MediaStart() (uint64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mediaStart, o.mediaStartSet
}

func (o *TimedObject) MediaDuration() int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mediaDuration
}

// MediaStop returns media_start + media_duration. It is unset when media_start is.
func (o *TimedObject) MediaStop() (uint64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.mediaStartSet {
		return 0, false
	}
	return o.mediaStart + uint64(o.mediaDuration), true
}

func (o *TimedObject) Rate() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rate
}

func (o *TimedObject) Priority() uint32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.priority
}

func (o *TimedObject) Active() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

// Parent returns the id of the composition the object belongs to, or "".
func (o *TimedObject) Parent() ObjectID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.parent
}

// SetStart moves the object on its parent's timeline.
func (o *TimedObject) SetStart(start uint64) error {
	if o.kind == KindComposition {
		return ErrReadOnlyProperty
	}
	o.mu.Lock()
	if o.start == start {
		o.mu.Unlock()
		return nil
	}
	o.start = start
	o.mu.Unlock()
	o.notify(PropStart, PropStop)
	return nil
}

// SetDuration changes the duration and with it the derived stop and rate.
func (o *TimedObject) SetDuration(d int64) error {
	if o.kind == KindComposition {
		return ErrReadOnlyProperty
	}
	if d < 0 {
		return ErrNegativeDuration
	}
	o.mu.Lock()
	if o.duration == d {
		o.mu.Unlock()
		return nil
	}
	o.duration = d
	rateChanged := o.updateRateLocked()
	o.mu.Unlock()

	o.notify(PropDuration, PropStop)
	if rateChanged {
		o.notify(PropRate)
	}
	return nil
}

// SetMediaStart sets the left bound of the internal time domain.
func (o *TimedObject) SetMediaStart(ms uint64) error {
	o.mu.Lock()
	if o.mediaStartSet && o.mediaStart == ms {
		o.mu.Unlock()
		return nil
	}
	o.mediaStart = ms
	o.mediaStartSet = true
	o.mu.Unlock()
	o.notify(PropMediaStart, PropMediaStop)
	return nil
}

// ClearMediaStart unsets the internal time domain, turning the object into
// an identity-mapped (live) one.
func (o *TimedObject) ClearMediaStart() {
	o.mu.Lock()
	if !o.mediaStartSet {
		o.mu.Unlock()
		return
	}
	o.mediaStart = 0
	o.mediaStartSet = false
	o.mu.Unlock()
	o.notify(PropMediaStart, PropMediaStop)
}

// SetMediaDuration changes the length of the internal time domain and the derived rate.
func (o *TimedObject) SetMediaDuration(d int64) error {
	if d < 0 {
		return ErrNegativeDuration
	}
	o.mu.Lock()
	if o.mediaDuration == d {
		o.mu.Unlock()
		return nil
	}
	o.mediaDuration = d
	rateChanged := o.updateRateLocked()
	o.mu.Unlock()

	o.notify(PropMediaDuration, PropMediaStop)
	if rateChanged {
		o.notify(PropRate)
	}
	return nil
}

func (o *TimedObject) SetPriority(p uint32) {
	o.mu.Lock()
	if o.priority == p {
		o.mu.Unlock()
		return
	}
	o.priority = p
	o.mu.Unlock()
	o.notify(PropPriority)
}

func (o *TimedObject) SetActive(active bool) {
	o.mu.Lock()
	if o.active == active {
		o.mu.Unlock()
		return
	}
	o.active = active
	o.mu.Unlock()
	o.notify(PropActive)
}

// Watch registers fn for property-change notifications. The returned
// function unregisters it and is safe to call more than once.
func (o *TimedObject) Watch(fn Observer) (cancel func()) {
	o.mu.Lock()
	key := o.nextObs
	o.nextObs++
	o.observers[key] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.observers, key)
			o.mu.Unlock()
		})
	}
}

func (o *TimedObject) notify(props ...Property) {
	o.mu.RLock()
	fns := make([]Observer, 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	o.mu.RUnlock()

	for _, p := range props {
		for _, fn := range fns {
			fn(o.id, p)
		}
	}
}

// updateRateLocked derives rate from the two durations. A zero duration
// leaves the previous rate in place. Caller must hold o.mu in write mode.
func (o *TimedObject) updateRateLocked() bool {
	if o.duration == 0 {
		return false
	}
	rate := 1.0
	if o.mediaDuration != 0 {
		rate = float64(o.mediaDuration) / float64(o.duration)
	}
	if rate == o.rate {
		return false
	}
	o.rate = rate
	return true
}

// setBounds overwrites start and duration without notifying and reports
// which of start, duration and stop changed. Used for derived bounds.
func (o *TimedObject) setBounds(start uint64, duration int64) []Property {
	o.mu.Lock()
	defer o.mu.Unlock()

	var changed []Property
	oldStop := o.start + uint64(o.duration)
	if o.start != start {
		o.start = start
		changed = append(changed, PropStart)
	}
	if o.duration != duration {
		o.duration = duration
		changed = append(changed, PropDuration)
	}
	if start+uint64(duration) != oldStop {
		changed = append(changed, PropStop)
	}
	return changed
}

// claim records parent as the object's owner. It fails if another
// composition already owns the object.
func (o *TimedObject) claim(parent ObjectID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.parent != "" {
		return false
	}
	o.parent = parent
	return true
}

func (o *TimedObject) release(parent ObjectID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.parent == parent {
		o.parent = ""
	}
}

// objectState is a consistent copy of the fields used for ordering and resolution.
type objectState struct {
	start    uint64
	stop     uint64
	priority uint32
	active   bool
}

func (o *TimedObject) state() objectState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return objectState{
		start:    o.start,
		stop:     o.start + uint64(o.duration),
		priority: o.priority,
		active:   o.active,
	}
}
