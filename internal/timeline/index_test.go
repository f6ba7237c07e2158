package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func src(id string, start, stop uint64, prio uint32) *Source {
	return NewSource(
		WithID(ObjectID(id)),
		WithStart(start),
		WithDuration(int64(stop-start)),
		WithPriority(prio),
	)
}

func ids(es []Entity) []ObjectID { return entityIDs(es) }

func TestIndex_insert_orders(t *testing.T) {
	var ix index
	ix.insert(src("b", 5*Second, 10*Second, 1))
	ix.insert(src("a", 0, 5*Second, 1))
	ix.insert(src("c", 5*Second, 15*Second, 0))

	assert.Equal(t, []ObjectID{"a", "c", "b"}, ids(ix.byStart))
	assert.Equal(t, []ObjectID{"c", "b", "a"}, ids(ix.byStop))

	first, last := ix.head()
	assert.Equal(t, ObjectID("a"), first.Object().ID())
	assert.Equal(t, ObjectID("c"), last.Object().ID())
}

func TestIndex_ties_break_on_priority(t *testing.T) {
	var ix index
	ix.insert(src("low", 0, 10*Second, 5))
	ix.insert(src("high", 0, 10*Second, 1))

	assert.Equal(t, []ObjectID{"high", "low"}, ids(ix.byStart))
	assert.Equal(t, []ObjectID{"high", "low"}, ids(ix.byStop))
}

func TestIndex_equal_keys_keep_insertion_order(t *testing.T) {
	var ix index
	ix.insert(src("first", 0, Second, 1))
	ix.insert(src("second", 0, Second, 1))
	assert.Equal(t, []ObjectID{"first", "second"}, ids(ix.byStart))
}

func TestIndex_resort_after_change(t *testing.T) {
	var ix index
	a := src("a", 0, 5*Second, 1)
	b := src("b", 2*Second, 6*Second, 1)
	ix.insert(a)
	ix.insert(b)

	require.NoError(t, a.SetStart(3*Second))
	ix.resortStart()
	ix.resortStop()
	assert.Equal(t, []ObjectID{"b", "a"}, ids(ix.byStart))
	assert.Equal(t, []ObjectID{"a", "b"}, ids(ix.byStop))

	b.SetPriority(0)
	require.NoError(t, b.SetStart(3*Second))
	require.NoError(t, b.SetDuration(int64(5*Second)))
	ix.resortStart()
	ix.resortStop()
	assert.Equal(t, []ObjectID{"b", "a"}, ids(ix.byStart))
	assert.Equal(t, []ObjectID{"b", "a"}, ids(ix.byStop))
}

func TestIndex_remove(t *testing.T) {
	var ix index
	ix.insert(src("a", 0, Second, 1))
	ix.insert(src("b", Second, 2*Second, 1))

	assert.True(t, ix.remove("a"))
	assert.False(t, ix.remove("a"))
	assert.Equal(t, 1, ix.len())
	assert.Equal(t, []ObjectID{"b"}, ids(ix.byStart))
	assert.Equal(t, []ObjectID{"b"}, ids(ix.byStop))

	assert.True(t, ix.remove("b"))
	first, last := ix.head()
	assert.Nil(t, first)
	assert.Nil(t, last)
}
