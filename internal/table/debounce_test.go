package table

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink[T any] struct {
	mu     sync.Mutex
	values []T
}

func (s *sink[T]) put(v T) {
	s.mu.Lock()
	s.values = append(s.values, v)
	s.mu.Unlock()
}

func (s *sink[T]) got() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.values...)
}

func TestDebouncer_CoalescesRapidCalls(t *testing.T) {
	out := &sink[string]{}
	d := NewDebouncer(30*time.Millisecond, out.put)

	for _, v := range []string{"a", "ac", "acm", "acme"} {
		d.Call(v)
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	require.Eventually(t, func() bool { return len(out.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"acme"}, out.got())
	assert.False(t, d.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Len(t, out.got(), 1)
}

func TestDebouncer_SeparateBurstsFireSeparately(t *testing.T) {
	out := &sink[int]{}
	d := NewDebouncer(10*time.Millisecond, out.put)

	d.Call(1)
	require.Eventually(t, func() bool { return len(out.got()) == 1 }, time.Second, 2*time.Millisecond)
	d.Call(2)
	require.Eventually(t, func() bool { return len(out.got()) == 2 }, time.Second, 2*time.Millisecond)

	assert.Equal(t, []int{1, 2}, out.got())
}

func TestDebouncer_Flush(t *testing.T) {
	out := &sink[string]{}
	d := NewDebouncer(time.Hour, out.put)

	d.Flush()
	assert.Empty(t, out.got(), "nothing pending")

	d.Call("x")
	d.Flush()
	assert.Equal(t, []string{"x"}, out.got())
	assert.False(t, d.Pending())
}

func TestDebouncer_StopAndCancel(t *testing.T) {
	out := &sink[string]{}
	d := NewDebouncer(10*time.Millisecond, out.put)

	d.Call("dropped")
	d.Cancel()
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, out.got())

	d.Call("also dropped")
	d.Stop()
	d.Call("ignored")
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, out.got())
	assert.False(t, d.Pending())
}
