package compositor

import "timeline-compositor/internal/timeline"

// Times on the wire are nanoseconds.

// CreateCompositionRequest is the body of POST /compositions.
type CreateCompositionRequest struct {
	ID            string  `json:"id,omitempty"`
	Priority      uint32  `json:"priority"`
	PriorityFloor *uint32 `json:"priority_floor,omitempty"`
	// Scan is "start" or "stop"; empty uses the service default.
	Scan string `json:"scan,omitempty"`
}

// AddObjectRequest is the body of POST /compositions/{id}/objects.
type AddObjectRequest struct {
	ID string `json:"id,omitempty"`
	// Kind is "source" (default), "operation" or "composition".
	Kind string `json:"kind,omitempty"`
	// Ref names an existing composition to nest when Kind is "composition".
	Ref           string  `json:"ref,omitempty"`
	Inputs        int     `json:"inputs,omitempty"`
	Start         uint64  `json:"start"`
	Duration      int64   `json:"duration"`
	MediaStart    *uint64 `json:"media_start,omitempty"`
	MediaDuration int64   `json:"media_duration"`
	Priority      *uint32 `json:"priority,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// UpdateObjectRequest is the body of PATCH /compositions/{id}/objects/{object_id}.
// Only the fields present are changed.
type UpdateObjectRequest struct {
	Start           *uint64 `json:"start,omitempty"`
	Duration        *int64  `json:"duration,omitempty"`
	MediaStart      *uint64 `json:"media_start,omitempty"`
	ClearMediaStart bool    `json:"clear_media_start,omitempty"`
	MediaDuration   *int64  `json:"media_duration,omitempty"`
	Priority        *uint32 `json:"priority,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}

// StateRequest is the body of POST /compositions/{id}/state.
type StateRequest struct {
	State string `json:"state"`
}

// SeekRequest is the body of POST /compositions/{id}/seek.
type SeekRequest struct {
	Start *uint64 `json:"start,omitempty"`
	Stop  *uint64 `json:"stop,omitempty"`
	Rate  float64 `json:"rate"`
}

// UpdateRequest is the body of POST /compositions/{id}/update.
type UpdateRequest struct {
	Time uint64 `json:"time"`
}

// CreatedResponse carries the id of a created composition or object.
type CreatedResponse struct {
	ID timeline.ObjectID `json:"id"`
}

// WindowView is a timeline.Window on the wire. Unset bounds are omitted.
type WindowView struct {
	Start *uint64 `json:"start,omitempty"`
	Stop  *uint64 `json:"stop,omitempty"`
}

// MemberView describes one child of a composition.
type MemberView struct {
	ID         timeline.ObjectID `json:"id"`
	Kind       string            `json:"kind"`
	Start      uint64            `json:"start"`
	Stop       uint64            `json:"stop"`
	MediaStart *uint64           `json:"media_start,omitempty"`
	Rate       float64           `json:"rate"`
	Priority   uint32            `json:"priority"`
	Active     bool              `json:"active"`
}

// CompositionView is the body of GET /compositions/{id}.
type CompositionView struct {
	ID       timeline.ObjectID   `json:"id"`
	State    string              `json:"state"`
	Start    uint64              `json:"start"`
	Stop     uint64              `json:"stop"`
	Duration int64               `json:"duration"`
	Stack    []timeline.ObjectID `json:"stack"`
	Output   timeline.ObjectID   `json:"output,omitempty"`
	Segment  WindowView          `json:"segment"`
	Seek     WindowView          `json:"seek"`
	Position uint64              `json:"position"`
	Pending  bool                `json:"pending"`
	Members  []MemberView        `json:"members"`
}

// UpdateResponse reports the outcome of POST /compositions/{id}/update.
type UpdateResponse struct {
	Reconfigured bool                `json:"reconfigured"`
	Stack        []timeline.ObjectID `json:"stack"`
}

// StackView is the body of GET /compositions/{id}/stack.
type StackView struct {
	Time  uint64              `json:"time"`
	Stack []timeline.ObjectID `json:"stack"`
}

// MediaTimeView is the body of GET /compositions/{id}/objects/{object_id}/media-time.
type MediaTimeView struct {
	Time      uint64 `json:"time"`
	MediaTime uint64 `json:"media_time"`
	InRange   bool   `json:"in_range"`
}

func windowView(w timeline.Window) WindowView {
	return WindowView{Start: w.Start, Stop: w.Stop}
}

func compositionView(c *timeline.Composition) CompositionView {
	snap := c.Snapshot()
	v := CompositionView{
		ID:       snap.ID,
		State:    snap.State.String(),
		Start:    snap.Start,
		Stop:     snap.Stop,
		Duration: snap.Duration,
		Stack:    nonNil(snap.Stack),
		Output:   snap.Output,
		Segment:  windowView(snap.Segment),
		Seek:     windowView(snap.Seek),
		Position: snap.Position,
		Pending:  snap.Pending,
		Members:  make([]MemberView, 0, len(snap.Members)),
	}
	for _, e := range c.Members() {
		obj := e.Object()
		mv := MemberView{
			ID:       obj.ID(),
			Kind:     e.Kind().String(),
			Start:    obj.Start(),
			Stop:     obj.Stop(),
			Rate:     obj.Rate(),
			Priority: obj.Priority(),
			Active:   obj.Active(),
		}
		if ms, ok := obj.MediaStart(); ok {
			mv.MediaStart = &ms
		}
		v.Members = append(v.Members, mv)
	}
	return v
}

func nonNil(ids []timeline.ObjectID) []timeline.ObjectID {
	if ids == nil {
		return []timeline.ObjectID{}
	}
	return ids
}
