package timeline

import "math"

// Span is the set of fields that relate an object's container time to its
// media time. It is a value copy and can be used without locking.
type Span struct {
	Start         uint64
	Stop          uint64
	MediaStart    uint64
	MediaStop     uint64
	HasMediaStart bool
	Rate          float64
}

// Span returns a consistent copy of the object's mapping fields.
func (o *TimedObject) Span() Span {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Span{
		Start:         o.start,
		Stop:          o.start + uint64(o.duration),
		MediaStart:    o.mediaStart,
		MediaStop:     o.mediaStart + uint64(o.mediaDuration),
		HasMediaStart: o.mediaStartSet,
		Rate:          o.rate,
	}
}

// ToMediaTime converts a container time into the object's media time.
// When t lies outside [Start, Stop) the returned value is clamped to the
// matching media bound and inRange is false.
func (s Span) ToMediaTime(t uint64) (mt uint64, inRange bool) {
	if t < s.Start {
		if s.HasMediaStart {
			return s.MediaStart, false
		}
		return s.Start, false
	}
	if t >= s.Stop {
		if s.HasMediaStart {
			return s.MediaStop, false
		}
		return s.Stop, false
	}
	if !s.HasMediaStart {
		return t, true
	}
	return scale(t-s.Start, s.Rate) + s.MediaStart, true
}

// ToContainerTime converts a media time back into container time, clamping
// to Start or Stop when mt lies outside [MediaStart, MediaStop).
// Objects without a media domain map through ToMediaTime, which is the
// identity inside the object's bounds.
func (s Span) ToContainerTime(mt uint64) (t uint64, inRange bool) {
	if !s.HasMediaStart {
		return s.ToMediaTime(mt)
	}
	if mt < s.MediaStart {
		return s.Start, false
	}
	if mt >= s.MediaStop {
		return s.Stop, false
	}
	return scale(mt-s.MediaStart, 1/s.Rate) + s.Start, true
}

// scale multiplies d by rate and truncates, which keeps a mapped value
// strictly below the mapped stop.
func scale(d uint64, rate float64) uint64 {
	if rate == 1 {
		return d
	}
	return uint64(math.Floor(float64(d) * rate))
}

// ToMediaTime is shorthand for o.Span().ToMediaTime(t).
func (o *TimedObject) ToMediaTime(t uint64) (uint64, bool) {
	return o.Span().ToMediaTime(t)
}

// ToContainerTime is shorthand for o.Span().ToContainerTime(mt).
func (o *TimedObject) ToContainerTime(mt uint64) (uint64, bool) {
	return o.Span().ToContainerTime(mt)
}
