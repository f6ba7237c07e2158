package compositor

import (
	"errors"
	"fmt"
	"log/slog"

	"timeline-compositor/internal/timeline"
)

var (
	// ErrInvalidKind is returned for an object kind other than source,
	// operation or composition.
	ErrInvalidKind = errors.New("invalid object kind")

	// ErrInvalidState is returned for an unknown lifecycle state name.
	ErrInvalidState = errors.New("invalid state")

	// ErrMissingRef is returned when nesting a composition without naming it.
	ErrMissingRef = errors.New("composition ref is required")
)

// Settings are the defaults the Service applies to every composition it
// creates. Zero values are valid.
type Settings struct {
	Graph         timeline.Graph
	Logger        *slog.Logger
	Recorder      timeline.Recorder
	PriorityFloor uint32
	ScanMode      timeline.ScanMode
}

// Service creates compositions, edits their children and drives their
// lifecycle. Storage is delegated to Repository.
type Service struct {
	repo Repository
	set  Settings
	log  *slog.Logger
}

// NewService returns a Service backed by repo.
func NewService(repo Repository, set Settings) *Service {
	log := set.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, set: set, log: log}
}

// CreateComposition builds an empty composition and stores it.
func (s *Service) CreateComposition(req CreateCompositionRequest) (timeline.ObjectID, error) {
	floor := s.set.PriorityFloor
	if req.PriorityFloor != nil {
		floor = *req.PriorityFloor
	}
	scan := s.set.ScanMode
	if req.Scan != "" {
		scan = timeline.ParseScanMode(req.Scan)
	}

	objOpts := []timeline.ObjectOption{timeline.WithPriority(req.Priority)}
	if req.ID != "" {
		objOpts = append(objOpts, timeline.WithID(timeline.ObjectID(req.ID)))
	}
	opts := []timeline.Option{
		timeline.WithLogger(s.log),
		timeline.WithPriorityFloor(floor),
		timeline.WithScanMode(scan),
		timeline.WithObject(objOpts...),
	}
	if s.set.Graph != nil {
		opts = append(opts, timeline.WithGraph(s.set.Graph))
	}
	if s.set.Recorder != nil {
		opts = append(opts, timeline.WithRecorder(s.set.Recorder))
	}

	c := timeline.NewComposition(opts...)
	if err := s.repo.Add(c); err != nil {
		return "", fmt.Errorf("composition %q: %w", c.ID(), err)
	}
	s.log.Info("composition created",
		slog.String("composition_id", string(c.ID())),
		slog.String("scan", scan.String()),
		slog.Uint64("priority_floor", uint64(floor)))
	return c.ID(), nil
}

// GetComposition returns the composition with the given id.
func (s *Service) GetComposition(id timeline.ObjectID) (*timeline.Composition, error) {
	c, ok := s.repo.Get(id)
	if !ok {
		return nil, fmt.Errorf("composition %q: %w", id, timeline.ErrNotFound)
	}
	return c, nil
}

// DeleteComposition drops a composition, tears its stack down so the
// graph no longer renders it and releases its children so nested
// compositions can be deleted or nested elsewhere.
func (s *Service) DeleteComposition(id timeline.ObjectID) error {
	c, err := s.GetComposition(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("composition %q: %w", id, err)
	}
	if err := driveTo(c, timeline.StateNull); err != nil {
		s.log.Warn("teardown of deleted composition failed",
			slog.String("composition_id", string(id)),
			slog.String("error", err.Error()))
	}
	for _, e := range c.Members() {
		if err := c.Remove(e); err != nil {
			s.log.Warn("release of child failed",
				slog.String("composition_id", string(id)),
				slog.String("object_id", string(e.Object().ID())),
				slog.String("error", err.Error()))
		}
	}
	s.log.Info("composition deleted", slog.String("composition_id", string(id)))
	return nil
}

// AddObject creates a source or operation, or looks up an existing
// composition, and adds it to composition id.
func (s *Service) AddObject(id timeline.ObjectID, req AddObjectRequest) (timeline.ObjectID, error) {
	c, err := s.GetComposition(id)
	if err != nil {
		return "", err
	}

	e, err := s.buildEntity(req)
	if err != nil {
		return "", err
	}
	if err := c.Add(e); err != nil {
		return "", fmt.Errorf("add %s %q to %q: %w", e.Kind(), e.Object().ID(), id, err)
	}
	// A nested composition already exists; its properties change only once
	// it is a member.
	if sub, ok := e.(*timeline.Composition); ok {
		if req.Priority != nil {
			sub.SetPriority(*req.Priority)
		}
		if req.Active != nil {
			sub.SetActive(*req.Active)
		}
	}
	return e.Object().ID(), nil
}

func (s *Service) buildEntity(req AddObjectRequest) (timeline.Entity, error) {
	if req.Duration < 0 || req.MediaDuration < 0 {
		return nil, timeline.ErrNegativeDuration
	}

	opts := []timeline.ObjectOption{
		timeline.WithStart(req.Start),
		timeline.WithDuration(req.Duration),
		timeline.WithMediaDuration(req.MediaDuration),
	}
	if req.Priority != nil {
		opts = append(opts, timeline.WithPriority(*req.Priority))
	}
	if req.ID != "" {
		opts = append(opts, timeline.WithID(timeline.ObjectID(req.ID)))
	}
	if req.MediaStart != nil {
		opts = append(opts, timeline.WithMediaStart(*req.MediaStart))
	}
	if req.Active != nil {
		opts = append(opts, timeline.WithActive(*req.Active))
	}

	switch req.Kind {
	case "", "source":
		return timeline.NewSource(opts...), nil
	case "operation":
		return timeline.NewOperation(req.Inputs, opts...), nil
	case "composition":
		if req.Ref == "" {
			return nil, ErrMissingRef
		}
		return s.GetComposition(timeline.ObjectID(req.Ref))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, req.Kind)
	}
}

// UpdateObject applies the fields present in req to child objectID of
// composition id. It stops at the first failing field.
func (s *Service) UpdateObject(id, objectID timeline.ObjectID, req UpdateObjectRequest) error {
	obj, err := s.member(id, objectID)
	if err != nil {
		return err
	}

	if req.Start != nil {
		if err := obj.SetStart(*req.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if req.Duration != nil {
		if err := obj.SetDuration(*req.Duration); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
	}
	if req.ClearMediaStart {
		obj.ClearMediaStart()
	} else if req.MediaStart != nil {
		if err := obj.SetMediaStart(*req.MediaStart); err != nil {
			return fmt.Errorf("media_start: %w", err)
		}
	}
	if req.MediaDuration != nil {
		if err := obj.SetMediaDuration(*req.MediaDuration); err != nil {
			return fmt.Errorf("media_duration: %w", err)
		}
	}
	if req.Priority != nil {
		obj.SetPriority(*req.Priority)
	}
	if req.Active != nil {
		obj.SetActive(*req.Active)
	}
	return nil
}

// RemoveObject detaches child objectID from composition id.
func (s *Service) RemoveObject(id, objectID timeline.ObjectID) error {
	c, err := s.GetComposition(id)
	if err != nil {
		return err
	}
	e, ok := c.Member(objectID)
	if !ok {
		return fmt.Errorf("object %q in %q: %w", objectID, id, timeline.ErrNotFound)
	}
	return c.Remove(e)
}

// SetState moves composition id one lifecycle step to the named state.
func (s *Service) SetState(id timeline.ObjectID, name string) error {
	to, ok := timeline.ParseState(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidState, name)
	}
	c, err := s.GetComposition(id)
	if err != nil {
		return err
	}
	return c.SetState(to)
}

// Seek applies a time seek to composition id.
func (s *Service) Seek(id timeline.ObjectID, req SeekRequest) error {
	c, err := s.GetComposition(id)
	if err != nil {
		return err
	}
	return c.Seek(timeline.Seek{
		Rate:   req.Rate,
		Format: timeline.FormatTime,
		Range:  timeline.Window{Start: req.Start, Stop: req.Stop},
	})
}

// UpdateAt brings the stack of composition id in line with instant t.
func (s *Service) UpdateAt(id timeline.ObjectID, t uint64) (UpdateResponse, error) {
	c, err := s.GetComposition(id)
	if err != nil {
		return UpdateResponse{}, err
	}
	reconfigured, err := c.UpdateAt(t)
	if err != nil {
		return UpdateResponse{}, err
	}
	return UpdateResponse{Reconfigured: reconfigured, Stack: nonNil(c.Stack())}, nil
}

// StackAt resolves composition id at t without changing it.
func (s *Service) StackAt(id timeline.ObjectID, t uint64) ([]timeline.ObjectID, error) {
	c, err := s.GetComposition(id)
	if err != nil {
		return nil, err
	}
	return nonNil(c.ResolveAt(t)), nil
}

// MediaTime maps container time t into the media time of child objectID.
func (s *Service) MediaTime(id, objectID timeline.ObjectID, t uint64) (MediaTimeView, error) {
	obj, err := s.member(id, objectID)
	if err != nil {
		return MediaTimeView{}, err
	}
	mt, inRange := obj.ToMediaTime(t)
	return MediaTimeView{Time: t, MediaTime: mt, InRange: inRange}, nil
}

// Count returns the number of stored compositions.
func (s *Service) Count() int {
	return s.repo.Count()
}

func (s *Service) member(id, objectID timeline.ObjectID) (*timeline.TimedObject, error) {
	c, err := s.GetComposition(id)
	if err != nil {
		return nil, err
	}
	e, ok := c.Member(objectID)
	if !ok {
		return nil, fmt.Errorf("object %q in %q: %w", objectID, id, timeline.ErrNotFound)
	}
	return e.Object(), nil
}

// driveTo walks c through the lifecycle one step at a time until it
// reaches target.
func driveTo(c *timeline.Composition, target timeline.State) error {
	for c.State() != target {
		next := nextState(c.State(), target)
		if err := c.SetState(next); err != nil {
			return err
		}
	}
	return nil
}

func nextState(from, target timeline.State) timeline.State {
	switch {
	case from == timeline.StatePlaying:
		return timeline.StatePaused
	case from < target:
		return from + 1
	default:
		return from - 1
	}
}
