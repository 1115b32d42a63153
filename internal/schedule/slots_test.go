package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotStarts(slots []Slot) []time.Time {
	starts := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Interval.Start)
	}
	return starts
}

func TestGenerateSlots(t *testing.T) {
	t.Run("30 minute sessions with 15 minute buffer", func(t *testing.T) {
		slots := GenerateSlots([]Interval{iv(10, 0, 18, 0)}, 30*time.Minute, 15*time.Minute)

		require.NotEmpty(t, slots)
		assert.Equal(t, at(10, 0), slots[0].Interval.Start)
		assert.Equal(t, at(10, 45), slots[1].Interval.Start)
		assert.Equal(t, at(11, 30), slots[2].Interval.Start)

		for _, s := range slots {
			assert.Equal(t, 30*time.Minute, s.Interval.Duration())
			assert.False(t, s.Interval.End.After(at(18, 0)))
		}
		for i := 1; i < len(slots); i++ {
			gap := slots[i].Interval.Start.Sub(slots[i-1].Interval.End)
			assert.Equal(t, 15*time.Minute, gap)
		}
	})

	t.Run("45 minute sessions yield eight slots over an eight hour day", func(t *testing.T) {
		slots := GenerateSlots([]Interval{iv(10, 0, 18, 0)}, 45*time.Minute, 15*time.Minute)

		assert.Len(t, slots, 8)
		assert.Equal(t, at(10, 0), slots[0].Interval.Start)
		assert.Equal(t, at(17, 0), slots[7].Interval.Start)
		assert.Equal(t, at(17, 45), slots[7].Interval.End)
	})

	t.Run("no slot extends past the interval end", func(t *testing.T) {
		slots := GenerateSlots([]Interval{iv(10, 0, 10, 50)}, 30*time.Minute, 15*time.Minute)

		// 10:45+30m would overrun, so only the first slot fits.
		assert.Equal(t, []time.Time{at(10, 0)}, slotStarts(slots))
	})

	t.Run("interval shorter than the duration yields nothing", func(t *testing.T) {
		assert.Empty(t, GenerateSlots([]Interval{iv(10, 0, 10, 20)}, 30*time.Minute, 15*time.Minute))
	})

	t.Run("exact fit is included", func(t *testing.T) {
		slots := GenerateSlots([]Interval{iv(10, 0, 10, 30)}, 30*time.Minute, 15*time.Minute)
		assert.Equal(t, []time.Time{at(10, 0)}, slotStarts(slots))
	})

	t.Run("open intervals are laid out independently", func(t *testing.T) {
		slots := GenerateSlots(
			[]Interval{iv(9, 0, 10, 0), iv(13, 0, 14, 0)},
			30*time.Minute, 15*time.Minute,
		)
		// The second interval restarts at its own start; the break between
		// intervals carries no buffer.
		assert.Equal(t, []time.Time{at(9, 0), at(13, 0)}, slotStarts(slots))
	})

	t.Run("zero buffer packs slots back to back", func(t *testing.T) {
		slots := GenerateSlots([]Interval{iv(9, 0, 11, 0)}, 30*time.Minute, 0)
		assert.Equal(t, []time.Time{at(9, 0), at(9, 30), at(10, 0), at(10, 30)}, slotStarts(slots))
	})

	t.Run("non-positive duration yields nothing", func(t *testing.T) {
		assert.Nil(t, GenerateSlots([]Interval{iv(9, 0, 17, 0)}, 0, 15*time.Minute))
	})
}
