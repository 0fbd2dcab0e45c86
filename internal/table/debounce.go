package table

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is how long an input must stay unchanged before it is applied
const DefaultDebounceDelay = 400 * time.Millisecond

// Debouncer coalesces rapid calls and forwards only the last value once no call
// has arrived for the configured delay. The sink runs on a timer goroutine.
type Debouncer[T any] struct {
	delay time.Duration
	sink  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	has     bool
	gen     uint64
	stopped bool
}

// NewDebouncer creates a Debouncer forwarding settled values to sink
func NewDebouncer[T any](delay time.Duration, sink func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		sink:  sink,
	}
}

// Call records v and restarts the delay
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = v
	d.has = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush forwards the pending value immediately, if any
func (d *Debouncer[T]) Flush() {
	v, ok := d.take()
	if ok {
		d.sink(v)
	}
}

// Cancel drops the pending value
func (d *Debouncer[T]) Cancel() {
	d.take()
}

// Pending reports whether a value is waiting for the delay to elapse
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.has
}

// Stop drops the pending value and ignores further calls
func (d *Debouncer[T]) Stop() {
	d.take()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || !d.has {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.clear()
	d.mu.Unlock()

	d.sink(v)
}

func (d *Debouncer[T]) take() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++

	v, ok := d.pending, d.has
	d.clear()
	return v, ok
}

func (d *Debouncer[T]) clear() {
	var zero T
	d.pending = zero
	d.has = false
}
