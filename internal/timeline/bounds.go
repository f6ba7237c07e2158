package timeline

import "log/slog"

// recomputeBoundsLocked derives the composition's start, duration and stop
// from the heads of the two orderings. An empty composition spans [0, 0).
// It returns the properties that changed. Caller must hold c.mu.
func (c *Composition) recomputeBoundsLocked() []Property {
	first, last := c.index.head()
	if first == nil {
		return c.logBounds(c.setBounds(0, 0))
	}
	start := first.Object().Start()
	stop := last.Object().Stop()
	if stop < start {
		stop = start
	}
	return c.logBounds(c.setBounds(start, int64(stop-start)))
}

func (c *Composition) logBounds(changed []Property) []Property {
	if len(changed) > 0 {
		span := c.Span()
		c.log.Debug("bounds changed",
			slog.Uint64("start", span.Start),
			slog.Uint64("stop", span.Stop))
	}
	return changed
}
