package timeline

// Graph is the downstream media graph a composition drives. Calls are made
// while the composition's mutation lock is held, so implementations must
// return promptly and must not call mutating Composition methods
// synchronously; use Composition.Defer for that.
type Graph interface {
	Link(upstream, downstream ObjectID) error
	Unlink(upstream, downstream ObjectID) error
	Activate(id ObjectID) error
	Deactivate(id ObjectID) error
	// SetOutput points the composition's single output at target.
	// An empty target leaves the output unconnected.
	SetOutput(composition, target ObjectID) error
}

// Recorder receives counts about the work a composition performs.
type Recorder interface {
	Reconfigured(composition ObjectID, ops, deactivated int)
	LinkOp(action LinkAction)
	PropertyChanged(prop Property)
}

type nopGraph struct{}

func (nopGraph) Link(ObjectID, ObjectID) error      { return nil }
func (nopGraph) Unlink(ObjectID, ObjectID) error    { return nil }
func (nopGraph) Activate(ObjectID) error            { return nil }
func (nopGraph) Deactivate(ObjectID) error          { return nil }
func (nopGraph) SetOutput(ObjectID, ObjectID) error { return nil }

type nopRecorder struct{}

func (nopRecorder) Reconfigured(ObjectID, int, int) {}
func (nopRecorder) LinkOp(LinkAction)               {}
func (nopRecorder) PropertyChanged(Property)        {}
