package queue

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/tickfsm/internal/primitives"
)

func drain(q Queue) []string {
	var out []string
	for {
		ev, ok := q.Dequeue()
		if !ok {
			return out
		}
		out = append(out, ev.Type)
	}
}

func TestFIFOOrder(t *testing.T) {
	backends := map[string]Queue{
		"array": NewArray(4),
		"vec":   NewVec(0),
	}
	for name, q := range backends {
		t.Run(name, func(t *testing.T) {
			for _, typ := range []string{"a", "b", "c"} {
				require.NoError(t, q.Enqueue(primitives.NewEvent(typ, nil)))
			}
			assert.Equal(t, 3, q.Len())
			assert.Equal(t, []string{"a", "b", "c"}, drain(q))
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestArrayOverCapacity(t *testing.T) {
	q := NewArray(2)
	require.NoError(t, q.Enqueue(primitives.NewEvent("a", nil)))
	require.NoError(t, q.Enqueue(primitives.NewEvent("b", nil)))

	err := q.Enqueue(primitives.NewEvent("c", nil))
	require.ErrorIs(t, err, primitives.ErrQueueOverCapacity)
	assert.Equal(t, 2, q.Len(), "rejected event must not displace buffered ones")

	// Wrap around the ring.
	_, _ = q.Dequeue()
	require.NoError(t, q.Enqueue(primitives.NewEvent("c", nil)))
	assert.Equal(t, []string{"b", "c"}, drain(q))
	assert.Equal(t, 2, q.Cap())
}

func TestVecGrows(t *testing.T) {
	q := NewVec(1)
	for i := 0; i < 100; i++ {
		require.NoError(t, q.Enqueue(primitives.NewEvent("e", i)))
	}
	assert.Equal(t, 100, q.Len())
	assert.Equal(t, -1, q.Cap())
	ev, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 0, ev.Data)
}

func TestNullRejects(t *testing.T) {
	var q Queue = Null{}
	err := q.Enqueue(primitives.NewEvent("a", nil))
	require.ErrorIs(t, err, primitives.ErrNotSupported)
	_, ok := q.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestNew(t *testing.T) {
	q, err := New(KindArray, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, q.Cap())

	q, err = New("", 0)
	require.NoError(t, err)
	assert.IsType(t, &Vec{}, q)

	q, err = New(KindNull, 0)
	require.NoError(t, err)
	assert.IsType(t, Null{}, q)

	_, err = New(KindArray, 0)
	assert.Error(t, err)
	_, err = New("ring", 1)
	assert.Error(t, err)
}

func TestVecReclaimsConsumedPrefix(t *testing.T) {
	v := NewVec(4)
	require.NoError(t, v.Enqueue(primitives.NewEvent("0", nil)))

	// A queue that never fully drains still reuses its storage.
	for i := 1; i <= 1000; i++ {
		require.NoError(t, v.Enqueue(primitives.NewEvent(strconv.Itoa(i), nil)))
		ev, ok := v.Dequeue()
		require.True(t, ok)
		require.Equal(t, strconv.Itoa(i-1), ev.Type)
	}
	assert.Equal(t, 1, v.Len())
	assert.LessOrEqual(t, cap(v.events), 8)
	assert.Equal(t, []string{"1000"}, drain(v))
	assert.Zero(t, v.head)
}
