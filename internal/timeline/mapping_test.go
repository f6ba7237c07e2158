package timeline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_media_offset(t *testing.T) {
	s := NewSource(
		WithMediaStart(10*Second), WithMediaDuration(int64(2*Second)),
		WithStart(0), WithDuration(int64(2*Second)),
	)
	require.Equal(t, 1.0, s.Rate())

	mt, ok := s.ToMediaTime(Second)
	assert.True(t, ok)
	assert.Equal(t, 11*Second, mt)

	ct, ok := s.ToContainerTime(11 * Second)
	assert.True(t, ok)
	assert.Equal(t, Second, ct)
}

func TestMapping_out_of_range_clamps(t *testing.T) {
	s := NewSource(
		WithStart(5*Second), WithDuration(int64(2*Second)),
		WithMediaStart(10*Second), WithMediaDuration(int64(4*Second)),
	)

	mt, ok := s.ToMediaTime(Second)
	assert.False(t, ok)
	assert.Equal(t, 10*Second, mt)

	mt, ok = s.ToMediaTime(7 * Second)
	assert.False(t, ok)
	assert.Equal(t, 14*Second, mt)

	ct, ok := s.ToContainerTime(9 * Second)
	assert.False(t, ok)
	assert.Equal(t, 5*Second, ct)

	ct, ok = s.ToContainerTime(14 * Second)
	assert.False(t, ok)
	assert.Equal(t, 7*Second, ct)
}

func TestMapping_rate_scaling(t *testing.T) {
	s := NewSource(
		WithStart(Second), WithDuration(int64(2*Second)),
		WithMediaStart(0), WithMediaDuration(int64(4*Second)),
	)
	mt, ok := s.ToMediaTime(2 * Second)
	assert.True(t, ok)
	assert.Equal(t, 2*Second, mt)

	ct, ok := s.ToContainerTime(3 * Second)
	assert.True(t, ok)
	assert.Equal(t, 2*Second+Second/2, ct)
}

func TestMapping_without_media_domain_is_identity(t *testing.T) {
	s := NewSource(WithStart(Second), WithDuration(int64(Second)))

	mt, ok := s.ToMediaTime(Second + 10)
	assert.True(t, ok)
	assert.Equal(t, Second+10, mt)

	ct, ok := s.ToContainerTime(Second + 10)
	assert.True(t, ok)
	assert.Equal(t, Second+10, ct)

	mt, ok = s.ToMediaTime(0)
	assert.False(t, ok)
	assert.Equal(t, Second, mt)

	ct, ok = s.ToContainerTime(5 * Second)
	assert.False(t, ok)
	assert.Equal(t, 2*Second, ct)
}

func TestMapping_round_trip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		duration := int64(Second) + rng.Int63n(int64(100*Second))
		rate := []float64{0.25, 0.5, 1, 1.5, 2, 4}[rng.Intn(6)]
		span := NewSource(
			WithStart(uint64(rng.Int63n(int64(1000*Second)))),
			WithDuration(duration),
			WithMediaStart(uint64(rng.Int63n(int64(1000*Second)))),
			WithMediaDuration(int64(float64(duration)*rate)),
		).Span()
		if span.Rate == 0 {
			continue
		}
		tolerance := uint64(math.Ceil(1/span.Rate)) + 1

		samples := []uint64{span.Start, span.Stop - 1}
		for j := 0; j < 20; j++ {
			samples = append(samples, span.Start+uint64(rng.Int63n(duration)))
		}
		for _, tc := range samples {
			mt, ok := span.ToMediaTime(tc)
			require.True(t, ok, "t=%d span=%+v", tc, span)
			back, ok := span.ToContainerTime(mt)
			require.True(t, ok, "mt=%d span=%+v", mt, span)

			diff := back - tc
			if tc > back {
				diff = tc - back
			}
			assert.LessOrEqual(t, diff, tolerance, "t=%d back=%d rate=%v", tc, back, span.Rate)
		}
	}
}
