package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propLog struct {
	props []Property
}

func (l *propLog) observe(_ ObjectID, p Property) { l.props = append(l.props, p) }

func TestTimedObject_defaults(t *testing.T) {
	s := NewSource()
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, KindSource, s.Kind())
	assert.True(t, s.Active())
	assert.Equal(t, 1.0, s.Rate())
	_, ok := s.MediaStart()
	assert.False(t, ok)
	_, ok = s.MediaStop()
	assert.False(t, ok)
}

func TestTimedObject_stop_follows_start_and_duration(t *testing.T) {
	s := NewSource(WithStart(2*Second), WithDuration(int64(3*Second)))
	assert.Equal(t, 5*Second, s.Stop())

	require.NoError(t, s.SetStart(4*Second))
	assert.Equal(t, 7*Second, s.Stop())

	require.NoError(t, s.SetDuration(int64(Second)))
	assert.Equal(t, 5*Second, s.Stop())
	assert.Equal(t, s.Start()+uint64(s.Duration()), s.Stop())
}

func TestTimedObject_negative_duration_rejected(t *testing.T) {
	s := NewSource(WithDuration(int64(Second)))
	assert.ErrorIs(t, s.SetDuration(-1), ErrNegativeDuration)
	assert.ErrorIs(t, s.SetMediaDuration(-1), ErrNegativeDuration)
	assert.Equal(t, int64(Second), s.Duration())
}

func TestTimedObject_rate(t *testing.T) {
	t.Run("equal_durations", func(t *testing.T) {
		s := NewSource(
			WithMediaStart(10*Second), WithMediaDuration(int64(2*Second)),
			WithStart(0), WithDuration(int64(2*Second)),
		)
		assert.Equal(t, 1.0, s.Rate())
	})

	t.Run("media_twice_as_long", func(t *testing.T) {
		s := NewSource(WithMediaStart(0), WithMediaDuration(int64(4*Second)), WithDuration(int64(2*Second)))
		assert.Equal(t, 2.0, s.Rate())
	})

	t.Run("zero_duration_keeps_previous_rate", func(t *testing.T) {
		s := NewSource(WithMediaStart(0), WithMediaDuration(int64(4*Second)), WithDuration(int64(2*Second)))
		require.NoError(t, s.SetDuration(0))
		assert.Equal(t, 2.0, s.Rate())
	})

	t.Run("zero_media_duration_resets_to_one", func(t *testing.T) {
		s := NewSource(WithMediaStart(0), WithMediaDuration(int64(4*Second)), WithDuration(int64(2*Second)))
		require.NoError(t, s.SetMediaDuration(0))
		assert.Equal(t, 1.0, s.Rate())
	})
}

func TestTimedObject_notifications(t *testing.T) {
	s := NewSource(WithDuration(int64(Second)))
	var log propLog
	cancel := s.Watch(log.observe)

	require.NoError(t, s.SetStart(Second))
	assert.Equal(t, []Property{PropStart, PropStop}, log.props)

	log.props = nil
	require.NoError(t, s.SetStart(Second))
	assert.Empty(t, log.props, "unchanged value must not notify")

	require.NoError(t, s.SetMediaStart(0))
	require.NoError(t, s.SetMediaDuration(int64(2*Second)))
	assert.Equal(t, []Property{PropMediaStart, PropMediaStop, PropMediaDuration, PropMediaStop, PropRate}, log.props)

	log.props = nil
	s.SetPriority(3)
	s.SetActive(false)
	assert.Equal(t, []Property{PropPriority, PropActive}, log.props)

	cancel()
	cancel()
	log.props = nil
	s.SetPriority(4)
	assert.Empty(t, log.props)
}

func TestTimedObject_composition_bounds_read_only(t *testing.T) {
	c := NewComposition()
	assert.ErrorIs(t, c.SetStart(Second), ErrReadOnlyProperty)
	assert.ErrorIs(t, c.SetDuration(int64(Second)), ErrReadOnlyProperty)
	c.SetPriority(2)
	assert.Equal(t, uint32(2), c.Priority())
}

func TestParseState(t *testing.T) {
	st, ok := ParseState(" Paused ")
	assert.True(t, ok)
	assert.Equal(t, StatePaused, st)
	_, ok = ParseState("running")
	assert.False(t, ok)
}
