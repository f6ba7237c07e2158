package timeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func indexOf(es ...Entity) *index {
	var ix index
	for _, e := range es {
		ix.insert(e)
	}
	return &ix
}

func TestResolve_lower_priority_value_wins(t *testing.T) {
	ix := indexOf(
		src("s1", 0, 10*Second, 1),
		src("s2", 5*Second, 15*Second, 2),
	)
	assert.Equal(t, []ObjectID{"s1", "s2"}, ids(resolve(ix, 7*Second, 0, true, ScanStartOrder)))

	ix = indexOf(
		src("s1", 0, 10*Second, 2),
		src("s2", 5*Second, 15*Second, 1),
	)
	assert.Equal(t, []ObjectID{"s2", "s1"}, ids(resolve(ix, 7*Second, 0, true, ScanStartOrder)))
}

func TestResolve_priority_floor_and_active(t *testing.T) {
	off := src("off", 0, 10*Second, 0)
	off.SetActive(false)
	ix := indexOf(
		off,
		src("top", 0, 10*Second, 1),
		src("under", 0, 10*Second, 3),
	)

	assert.Equal(t, []ObjectID{"top", "under"}, ids(resolve(ix, Second, 0, true, ScanStartOrder)))
	assert.Equal(t, []ObjectID{"off", "top", "under"}, ids(resolve(ix, Second, 0, false, ScanStartOrder)))
	assert.Equal(t, []ObjectID{"under"}, ids(resolve(ix, Second, 2, true, ScanStartOrder)))
}

func TestResolve_nothing_before_first_start(t *testing.T) {
	ix := indexOf(src("a", 5*Second, 10*Second, 1))
	assert.Empty(t, resolve(ix, Second, 0, true, ScanStartOrder))
	assert.Empty(t, resolve(ix, Second, 0, true, ScanStopOrder))
}

func TestResolve_stop_boundary_is_inclusive(t *testing.T) {
	ix := indexOf(src("a", 0, 5*Second, 1), src("b", 5*Second, 10*Second, 2))
	assert.Equal(t, []ObjectID{"a", "b"}, ids(resolve(ix, 5*Second, 0, true, ScanStartOrder)))
}

func TestResolve_start_order_stops_at_ended_object(t *testing.T) {
	// "short" ends before t and sits ahead of "long" in the start-ordering,
	// so the start-order scan gives up before reaching "long".
	ix := indexOf(
		src("short", 0, 2*Second, 1),
		src("long", Second, 10*Second, 2),
	)
	assert.Empty(t, resolve(ix, 5*Second, 0, true, ScanStartOrder))
	assert.Equal(t, []ObjectID{"long"}, ids(resolve(ix, 5*Second, 0, true, ScanStopOrder)))
}

func TestResolveTopLevel_window(t *testing.T) {
	ix := indexOf(
		src("bed", 0, 10*Second, 2),
		src("insert", 4*Second, 6*Second, 1),
	)

	stack, until, ok := resolveTopLevel(ix, 0, 0, ScanStartOrder)
	assert.Equal(t, []ObjectID{"bed"}, ids(stack))
	assert.True(t, ok)
	assert.Equal(t, 4*Second, until, "window ends where the next object starts")

	stack, until, ok = resolveTopLevel(ix, 4*Second, 0, ScanStartOrder)
	assert.Equal(t, []ObjectID{"insert"}, ids(stack))
	assert.True(t, ok)
	assert.Equal(t, 6*Second, until)

	stack, until, ok = resolveTopLevel(ix, 7*Second, 0, ScanStartOrder)
	assert.Equal(t, []ObjectID{"bed"}, ids(stack))
	assert.True(t, ok)
	assert.Equal(t, 10*Second, until)
}

func TestResolveTopLevel_empty(t *testing.T) {
	ix := indexOf(src("later", 5*Second, 6*Second, 1))
	stack, until, ok := resolveTopLevel(ix, 0, 0, ScanStartOrder)
	assert.Empty(t, stack)
	assert.True(t, ok)
	assert.Equal(t, 5*Second, until)

	stack, _, ok = resolveTopLevel(&index{}, 0, 0, ScanStartOrder)
	assert.Empty(t, stack)
	assert.False(t, ok)
}

// Every query's head must be the active covering object with the lowest
// priority value.
func TestResolve_head_is_best_covering_object(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		var objs []*Source
		var ix index
		for i := 0; i < 1+rng.Intn(8); i++ {
			start := uint64(rng.Intn(20)) * Second
			s := NewSource(
				WithStart(start),
				WithDuration(int64(uint64(1+rng.Intn(10))*Second)),
				WithPriority(uint32(rng.Intn(5))),
				WithActive(rng.Intn(4) != 0),
			)
			objs = append(objs, s)
			ix.insert(s)
		}

		for q := uint64(0); q < 32; q++ {
			tq := q*Second + Second/2
			var best *Source
			for _, s := range objs {
				if !s.Active() || s.Start() > tq || s.Stop() < tq {
					continue
				}
				if best == nil || s.Priority() < best.Priority() {
					best = s
				}
			}

			got := resolve(&ix, tq, 0, true, ScanStopOrder)
			if best == nil {
				assert.Empty(t, got)
				continue
			}
			if assert.NotEmpty(t, got) {
				assert.Equal(t, best.Priority(), got[0].Object().Priority())
			}
		}
	}
}
