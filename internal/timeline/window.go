package timeline

// Window is a half-open [Start, Stop) range of container time. A nil bound
// is unset.
type Window struct {
	Start *uint64
	Stop  *uint64
}

// Contains reports whether t lies in the window. A window with an unset
// bound contains nothing.
func (w Window) Contains(t uint64) bool {
	if w.Start == nil || w.Stop == nil {
		return false
	}
	return *w.Start <= t && t < *w.Stop
}

// IsZero reports whether both bounds are unset.
func (w Window) IsZero() bool { return w.Start == nil && w.Stop == nil }

func (w Window) clone() Window {
	var out Window
	if w.Start != nil {
		out.Start = timePtr(*w.Start)
	}
	if w.Stop != nil {
		out.Stop = timePtr(*w.Stop)
	}
	return out
}

func timePtr(v uint64) *uint64 { return &v }
