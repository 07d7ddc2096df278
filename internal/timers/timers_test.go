package timers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/tickfsm/internal/primitives"
)

func popAll(c Timers) []primitives.TimerID {
	var out []primitives.TimerID
	for {
		id, ok := c.Triggered()
		if !ok {
			return out
		}
		out = append(out, id)
	}
}

func TestTimeoutFiresOnce(t *testing.T) {
	c := NewCore([]primitives.TimerID{"t"}, 0)
	require.NoError(t, c.Create("t", primitives.DefaultTimerSettings(100*time.Millisecond)))

	c.Tick(60 * time.Millisecond)
	assert.Empty(t, popAll(c))
	left, err := c.Remaining("t")
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, left)

	c.Tick(40 * time.Millisecond)
	assert.Equal(t, []primitives.TimerID{"t"}, popAll(c))

	c.Tick(time.Second)
	assert.Empty(t, popAll(c), "one-shot must not fire again")
	_, err = c.Remaining("t")
	assert.ErrorIs(t, err, primitives.ErrTimerNotStarted)
}

func TestIntervalRestartsWithoutCarry(t *testing.T) {
	c := NewCore([]primitives.TimerID{"i"}, 0)
	require.NoError(t, c.Create("i", primitives.TimerSettings{Enabled: true, Timeout: 100 * time.Millisecond, Renew: true}))

	fired := 0
	for range 9 {
		c.Tick(50 * time.Millisecond)
		fired += len(popAll(c))
	}
	assert.Equal(t, 4, fired)

	// A large step fires once and restarts the full period.
	c.Tick(time.Second)
	assert.Len(t, popAll(c), 1)
	left, err := c.Remaining("i")
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, left)
}

func TestTickDeclarationOrder(t *testing.T) {
	c := NewCore([]primitives.TimerID{"b", "a", "c"}, 0)
	for _, id := range []primitives.TimerID{"c", "a", "b"} {
		require.NoError(t, c.Create(id, primitives.DefaultTimerSettings(10*time.Millisecond)))
	}
	c.Tick(10 * time.Millisecond)
	assert.Equal(t, []primitives.TimerID{"b", "a", "c"}, popAll(c))
}

func TestCreateReplacesAndDisabled(t *testing.T) {
	c := NewCore([]primitives.TimerID{"t"}, 0)
	require.NoError(t, c.Create("t", primitives.DefaultTimerSettings(10*time.Millisecond)))
	require.NoError(t, c.Create("t", primitives.DefaultTimerSettings(time.Second)))
	c.Tick(10 * time.Millisecond)
	assert.Empty(t, popAll(c))

	require.NoError(t, c.Create("t", primitives.TimerSettings{Enabled: false, Timeout: time.Millisecond}))
	assert.ErrorIs(t, c.Cancel("t"), primitives.ErrTimerNotStarted)
}

func TestCancel(t *testing.T) {
	c := NewCore([]primitives.TimerID{"t"}, 0)
	assert.ErrorIs(t, c.Cancel("t"), primitives.ErrTimerNotStarted)
	assert.ErrorIs(t, c.Cancel("nope"), primitives.ErrUnknownTimer)
	assert.ErrorIs(t, c.Create("nope", primitives.TimerSettings{}), primitives.ErrUnknownTimer)

	require.NoError(t, c.Create("t", primitives.DefaultTimerSettings(time.Millisecond)))
	require.NoError(t, c.Cancel("t"))
	c.Tick(time.Second)
	assert.Empty(t, popAll(c))
}

func TestPendingOverflowPanics(t *testing.T) {
	c := NewCore([]primitives.TimerID{"a", "b"}, 1)
	require.NoError(t, c.Create("a", primitives.DefaultTimerSettings(time.Millisecond)))
	require.NoError(t, c.Create("b", primitives.DefaultTimerSettings(time.Millisecond)))
	assert.Panics(t, func() { c.Tick(time.Millisecond) })
}

func TestNull(t *testing.T) {
	var n Timers = Null{}
	assert.ErrorIs(t, n.Create("t", primitives.DefaultTimerSettings(time.Second)), primitives.ErrNotSupported)
	assert.ErrorIs(t, n.Cancel("t"), primitives.ErrNotSupported)
	n.Tick(time.Hour)
	_, ok := n.Triggered()
	assert.False(t, ok)
}

func TestScoped(t *testing.T) {
	c := NewCore([]primitives.TimerID{"own", "blinking/blink"}, 0)
	s := NewScoped(c, "blinking")

	require.NoError(t, s.Create("blink", primitives.DefaultTimerSettings(5*time.Millisecond)))
	left, err := c.Remaining("blinking/blink")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, left)

	s.Tick(time.Second)
	_, ok := s.Triggered()
	assert.False(t, ok, "scoped view never yields ids")

	c.Tick(5 * time.Millisecond)
	assert.Equal(t, []primitives.TimerID{"blinking/blink"}, popAll(c))

	assert.ErrorIs(t, s.Cancel("blink"), primitives.ErrTimerNotStarted)
	assert.ErrorIs(t, s.Create("other", primitives.TimerSettings{}), primitives.ErrUnknownTimer)
}
