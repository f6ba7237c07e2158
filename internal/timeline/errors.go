package timeline

import "errors"

var (
	// ErrNotTimedObject is returned when a nil or foreign entity is added to a composition.
	ErrNotTimedObject = errors.New("not a timed object")

	// ErrNotFound is returned when removing or addressing an object that is not
	// a member of the composition.
	ErrNotFound = errors.New("object not found in composition")

	// ErrAlreadyMember is returned when adding an object that already belongs
	// to a composition. Membership is exclusive.
	ErrAlreadyMember = errors.New("object already belongs to a composition")

	// ErrCompositionCycle is returned when a composition would end up nested in itself.
	ErrCompositionCycle = errors.New("composition cannot contain itself")

	// ErrReadOnlyProperty is returned when setting a property that is derived,
	// such as the bounds of a composition.
	ErrReadOnlyProperty = errors.New("property is read-only")

	// ErrNegativeDuration is returned when a duration below zero is set.
	ErrNegativeDuration = errors.New("duration must not be negative")

	// ErrInvalidTransition is returned for a lifecycle change that skips a state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotPaused is returned when a topology change is requested outside the paused state.
	ErrNotPaused = errors.New("composition is not paused")

	// ErrInvalidSeek is returned for a seek with a zero rate or an inverted range.
	ErrInvalidSeek = errors.New("invalid seek")
)
