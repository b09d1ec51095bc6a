package ringchan

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int](0) })
	assert.Panics(t, func() { New[int](-1) })
}

func TestRingChannel_OverwritesOldest(t *testing.T) {
	rc := New[int](3)

	for i := 1; i <= 5; i++ {
		dropped := rc.Send(i)
		assert.Equal(t, i > 3, dropped, "send %d", i)
	}

	require.Equal(t, 3, rc.Len())
	assert.Equal(t, 3, rc.Cap())

	got := []int{<-rc.C(), <-rc.C(), <-rc.C()}
	assert.Equal(t, []int{3, 4, 5}, got, "only the newest values MUST remain")

	m := rc.GetMetrics()
	assert.Equal(t, int64(5), m.Written)
	assert.Equal(t, int64(2), m.Overwritten)
	assert.Equal(t, int64(0), m.Rejected)
}

func TestRingChannel_RetainSkipsProtectedElements(t *testing.T) {
	// GOAL: protected elements survive overflow and order is preserved
	//
	// TEST SCENARIO: negative values are protected; capacity 3 filled with -1, 2, -3
	//                → sending 4 evicts 2, sending 5 with only protected left evicts the oldest

	rc := New[int](3).Retain(func(v int) bool { return v < 0 })

	rc.Send(-1)
	rc.Send(2)
	rc.Send(-3)

	assert.True(t, rc.Send(4), "overflow MUST report a drop")
	assert.Equal(t, 3, rc.Len())

	got := []int{<-rc.C(), <-rc.C(), <-rc.C()}
	assert.Equal(t, []int{-1, -3, 4}, got, "the oldest unprotected value MUST be evicted")

	rc.Send(-4)
	rc.Send(-5)
	rc.Send(-6)
	assert.True(t, rc.Send(7), "an unprotected value MUST be discarded when everything buffered is protected")
	assert.True(t, rc.Send(-7), "a protected value MUST evict the oldest when everything buffered is protected")
	rc.Close()

	var rest []int
	for v := range rc.C() {
		rest = append(rest, v)
	}
	assert.Equal(t, []int{-5, -6, -7}, rest)

	m := rc.GetMetrics()
	assert.Equal(t, int64(3), m.Overwritten)
	assert.Equal(t, int64(8), m.Written, "a discarded incoming value MUST NOT count as written")
}

func TestRingChannel_SendAfterClose(t *testing.T) {
	rc := New[string](2)
	rc.Send("a")
	rc.Close()
	rc.Close()

	assert.NotPanics(t, func() { rc.Send("late") })

	var got []string
	for v := range rc.C() {
		got = append(got, v)
	}
	assert.Equal(t, []string{"a"}, got, "buffered values MUST stay readable after close")
	assert.Equal(t, int64(1), rc.GetMetrics().Rejected)
}

func TestRingChannel_ConcurrentProducers(t *testing.T) {
	rc := New[int](8)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rc.Send(i)
			}
		}()
	}
	wg.Wait()

	m := rc.GetMetrics()
	assert.Equal(t, int64(400), m.Written)
	assert.Equal(t, int64(400-8), m.Overwritten)
	assert.Equal(t, 8, rc.Len())
}
