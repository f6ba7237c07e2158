package timeline

// Entity is implemented by every variant that can be placed in a
// Composition: Source, Operation and Composition itself.
type Entity interface {
	Object() *TimedObject
	Kind() Kind
	isEntity()
}

// Source is a leaf producing media.
type Source struct {
	*TimedObject
}

// NewSource returns a Source configured by opts.
func NewSource(opts ...ObjectOption) *Source {
	return &Source{TimedObject: newTimedObject(KindSource, opts...)}
}

func (s *Source) Object() *TimedObject {
	if s == nil {
		return nil
	}
	return s.TimedObject
}

func (s *Source) isEntity() {}

// Operation is an effect that consumes one or more inputs from the
// objects below it in the stack.
type Operation struct {
	*TimedObject
	inputs int
}

// NewOperation returns an Operation declaring the given number of inputs.
// Values below one are treated as one.
func NewOperation(inputs int, opts ...ObjectOption) *Operation {
	if inputs < 1 {
		inputs = 1
	}
	return &Operation{TimedObject: newTimedObject(KindOperation, opts...), inputs: inputs}
}

func (op *Operation) Object() *TimedObject {
	if op == nil {
		return nil
	}
	return op.TimedObject
}

// Inputs returns the number of inputs the operation declares.
func (op *Operation) Inputs() int { return op.inputs }

func (op *Operation) isEntity() {}

func isMultiInput(e Entity) bool {
	op, ok := e.(*Operation)
	return ok && op.inputs > 1
}

func entityIDs(es []Entity) []ObjectID {
	if len(es) == 0 {
		return nil
	}
	ids := make([]ObjectID, len(es))
	for i, e := range es {
		ids[i] = e.Object().ID()
	}
	return ids
}
