// Package notify provides a transient notification channel for user-visible messages.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notification
type Level string

const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Notification is a single transient message
type Notification struct {
	ID      uuid.UUID
	Level   Level
	Title   string
	Message string
	Time    time.Time
}

// Notifier broadcasts notifications to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Notification]struct{}
	buffer    int
}

// New creates a Notifier whose subscriber channels hold up to buffer pending notifications.
func New(buffer int) *Notifier {
	if buffer < 1 {
		buffer = 1
	}
	return &Notifier{
		listeners: make(map[chan Notification]struct{}),
		buffer:    buffer,
	}
}

// Subscribe returns a channel that receives published notifications.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Notification {
	ch := make(chan Notification, n.buffer)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Notification) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Publish sends nt to all listeners.
// Non-blocking: a listener whose channel is full misses the notification.
func (n *Notifier) Publish(nt Notification) {
	if nt.ID == uuid.Nil {
		nt.ID = uuid.New()
	}
	if nt.Time.IsZero() {
		nt.Time = time.Now()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- nt:
		default:
		}
	}
}

// Error publishes an error notification
func (n *Notifier) Error(title, message string) {
	n.Publish(Notification{Level: LevelError, Title: title, Message: message})
}

// Success publishes a success notification
func (n *Notifier) Success(title, message string) {
	n.Publish(Notification{Level: LevelSuccess, Title: title, Message: message})
}

// Info publishes an informational notification
func (n *Notifier) Info(title, message string) {
	n.Publish(Notification{Level: LevelInfo, Title: title, Message: message})
}
