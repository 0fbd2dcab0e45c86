package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New(4)

	ch := n.Subscribe()
	require.NotNil(t, ch)

	n.mu.RLock()
	assert.Len(t, n.listeners, 1)
	n.mu.RUnlock()

	n.Unsubscribe(ch)

	n.mu.RLock()
	assert.Len(t, n.listeners, 0)
	n.mu.RUnlock()

	// second unsubscribe must not panic on the closed channel
	n.Unsubscribe(ch)
}

func TestNotifier_ErrorReachesAllSubscribers(t *testing.T) {
	n := New(4)

	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Error("Error", "connection refused")

	for _, ch := range []chan Notification{ch1, ch2} {
		select {
		case nt := <-ch:
			assert.Equal(t, LevelError, nt.Level)
			assert.Equal(t, "connection refused", nt.Message)
			assert.NotEqual(t, uuid.Nil, nt.ID)
			assert.False(t, nt.Time.IsZero())
		case <-time.After(100 * time.Millisecond):
			t.Fatal("subscriber did not receive notification")
		}
	}
}

func TestNotifier_Publish_NonBlocking(t *testing.T) {
	n := New(1)

	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Success("Saved", "first")

	done := make(chan struct{})
	go func() {
		n.Success("Saved", "second")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Publish blocked on full channel")
	}

	nt := <-ch
	assert.Equal(t, "first", nt.Message)
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New(8)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe()
			n.Info("Info", "ping")
			n.Unsubscribe(ch)
		}()
	}
	wg.Wait()

	n.mu.RLock()
	assert.Len(t, n.listeners, 0)
	n.mu.RUnlock()
}
