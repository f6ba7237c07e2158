package graph

import (
	"testing"

	"timeline-compositor/internal/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_link_unlink(t *testing.T) {
	g := NewMemory(nil)

	require.NoError(t, g.Link("b", "a"))
	require.NoError(t, g.Link("c", "b"))
	assert.ErrorIs(t, g.Link("b", "a"), ErrAlreadyLinked)
	assert.Equal(t, []Edge{{"b", "a"}, {"c", "b"}}, g.Links())

	require.NoError(t, g.Unlink("b", "a"))
	assert.ErrorIs(t, g.Unlink("b", "a"), ErrNotLinked)
	assert.Equal(t, []Edge{{"c", "b"}}, g.Links())
}

func TestMemory_activation_and_output(t *testing.T) {
	g := NewMemory(nil)

	require.NoError(t, g.Activate("a"))
	assert.True(t, g.IsActive("a"))
	require.NoError(t, g.Deactivate("a"))
	assert.False(t, g.IsActive("a"))

	require.NoError(t, g.SetOutput("comp", "a"))
	assert.Equal(t, timeline.ObjectID("a"), g.Output("comp"))
	require.NoError(t, g.SetOutput("comp", ""))
	assert.Empty(t, g.Output("comp"))
}

func TestMemory_drives_a_composition(t *testing.T) {
	g := NewMemory(nil)
	c := timeline.NewComposition(timeline.WithGraph(g))
	mix := timeline.NewOperation(2, timeline.WithID("mix"), timeline.WithDuration(int64(10*timeline.Second)), timeline.WithPriority(0))
	bed := timeline.NewSource(timeline.WithID("bed"), timeline.WithDuration(int64(10*timeline.Second)), timeline.WithPriority(1))
	require.NoError(t, c.Add(mix))
	require.NoError(t, c.Add(bed))

	require.NoError(t, c.SetState(timeline.StateReady))
	require.NoError(t, c.SetState(timeline.StatePaused))
	assert.Equal(t, timeline.ObjectID("mix"), g.Output(c.ID()))
	assert.True(t, g.IsActive("mix"))
	assert.False(t, g.IsActive("bed"), "only the head of the stack renders")
	assert.Empty(t, g.Links())

	require.NoError(t, c.SetState(timeline.StateReady))
	assert.Empty(t, g.Output(c.ID()))
	assert.False(t, g.IsActive("mix"))
}
