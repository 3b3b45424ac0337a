package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsed(t *testing.T) {
	tests := []struct {
		name string
		now  uint32
		last uint32
		want uint32
	}{
		{
			name: "no time passed",
			now:  1000,
			last: 1000,
			want: 0,
		},
		{
			name: "simple difference",
			now:  1800,
			last: 520,
			want: 1280,
		},
		{
			name: "across one wrap",
			now:  100,
			last: math.MaxUint32 - 99,
			want: 200,
		},
		{
			name: "wrap lands exactly on zero",
			now:  0,
			last: math.MaxUint32,
			want: 1,
		},
		{
			name: "full range minus one",
			now:  math.MaxUint32,
			last: 0,
			want: math.MaxUint32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Elapsed(tt.now, tt.last))
		})
	}
}

func TestSim_AdvanceAndSet(t *testing.T) {
	sim := NewSim(0)
	assert.Equal(t, uint32(0), sim.Now())

	sim.Advance(520)
	assert.Equal(t, uint32(520), sim.Now())

	sim.Set(1800)
	assert.Equal(t, uint32(1800), sim.Now())

	// Advancing past the counter range wraps modulo 2^32.
	sim.Set(math.MaxUint32)
	sim.Advance(2)
	assert.Equal(t, uint32(1), sim.Now())
}

func TestMillis_StartsNearZero(t *testing.T) {
	c := NewMillis()
	assert.Less(t, c.Now(), uint32(1000), "fresh counter should read well under a second")
}

func TestMicros_Advances(t *testing.T) {
	c := NewMicros()
	first := c.Now()
	time.Sleep(2 * time.Millisecond)
	second := c.Now()
	assert.GreaterOrEqual(t, Elapsed(second, first), uint32(1000), "at least 1ms should elapse")
}
