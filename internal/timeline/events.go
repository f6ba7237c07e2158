package timeline

import (
	"log/slog"
	"math"
)

// Format is the unit a boundary event carries its values in.
type Format int

const (
	FormatTime Format = iota
	FormatBytes
	FormatFrames
)

func (f Format) String() string {
	switch f {
	case FormatTime:
		return "time"
	case FormatBytes:
		return "bytes"
	case FormatFrames:
		return "frames"
	default:
		return "unknown"
	}
}

// Seek asks the downstream graph to play Range at Rate.
type Seek struct {
	Rate   float64
	Format Format
	Range  Window
}

// Position is a position report flowing up from a child.
type Position struct {
	Format Format
	Value  uint64
}

// SegmentEvent announces the range a child is about to play.
type SegmentEvent struct {
	Format   Format
	Rate     float64
	Start    uint64
	Stop     uint64
	Position uint64
}

// translateSeek maps a seek expressed in container time into the media time
// of the object described by span. Non-time seeks pass through unchanged.
func translateSeek(log *slog.Logger, id ObjectID, span Span, s Seek) Seek {
	if s.Format != FormatTime {
		return s
	}
	out := s
	if s.Range.Start != nil {
		mt, _ := span.ToMediaTime(*s.Range.Start)
		warnOverflow(log, id, "seek_start", mt)
		out.Range.Start = timePtr(mt)
	}
	if s.Range.Stop != nil {
		mt, _ := span.ToMediaTime(*s.Range.Stop)
		warnOverflow(log, id, "seek_stop", mt)
		out.Range.Stop = timePtr(mt)
	}
	return out
}

// translatePosition maps a child's media-time position into container time.
func translatePosition(log *slog.Logger, id ObjectID, span Span, p Position) Position {
	if p.Format != FormatTime {
		return p
	}
	t, _ := span.ToContainerTime(p.Value)
	warnOverflow(log, id, "position", t)
	return Position{Format: p.Format, Value: t}
}

// translateSegment maps a child's segment announcement into container time.
func translateSegment(log *slog.Logger, id ObjectID, span Span, seg SegmentEvent) SegmentEvent {
	if seg.Format != FormatTime {
		return seg
	}
	out := seg
	out.Start, _ = span.ToContainerTime(seg.Start)
	out.Stop, _ = span.ToContainerTime(seg.Stop)
	out.Position, _ = span.ToContainerTime(seg.Position)
	warnOverflow(log, id, "segment_start", out.Start)
	warnOverflow(log, id, "segment_stop", out.Stop)
	warnOverflow(log, id, "segment_position", out.Position)
	return out
}

// warnOverflow logs values that do not fit a signed 64-bit time. The
// value is still forwarded.
func warnOverflow(log *slog.Logger, id ObjectID, field string, v uint64) {
	if v > math.MaxInt64 {
		log.Warn("mapped time exceeds signed range",
			slog.String("object_id", string(id)),
			slog.String("field", field),
			slog.Uint64("value", v))
	}
}
