package pipeline

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
)

// FailedEvent is an event a sink did not accept.
type FailedEvent struct {
	PageView  analytics.PageView `json:"page_view"`
	Event     analytics.Event    `json:"event"`
	Sink      string             `json:"sink"`
	MessageID string             `json:"message_id,omitempty"`
	Error     string             `json:"error"`
	Timestamp time.Time          `json:"timestamp"`
}

// DeadLetterQueue stores events that failed delivery.
type DeadLetterQueue struct {
	mu     sync.RWMutex
	failed []FailedEvent
	limit  int
}

// NewDeadLetterQueue creates a DLQ keeping at most limit events; the oldest
// are dropped first. limit <= 0 means unbounded.
func NewDeadLetterQueue(limit int) *DeadLetterQueue {
	return &DeadLetterQueue{failed: []FailedEvent{}, limit: limit}
}

// Enqueue adds a failed event to the queue.
func (dlq *DeadLetterQueue) Enqueue(fe FailedEvent) {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()
	dlq.failed = append(dlq.failed, fe)
	if dlq.limit > 0 && len(dlq.failed) > dlq.limit {
		dlq.failed = append([]FailedEvent(nil), dlq.failed[len(dlq.failed)-dlq.limit:]...)
	}
}

// GetAll returns all failed events (for inspection/replay).
func (dlq *DeadLetterQueue) GetAll() []FailedEvent {
	dlq.mu.RLock()
	defer dlq.mu.RUnlock()
	result := make([]FailedEvent, len(dlq.failed))
	copy(result, dlq.failed)
	return result
}

// Drain removes and returns every queued event.
func (dlq *DeadLetterQueue) Drain() []FailedEvent {
	dlq.mu.Lock()
	defer dlq.mu.Unlock()
	out := dlq.failed
	dlq.failed = []FailedEvent{}
	return out
}

// Clear removes all failed events from the queue.
func (dlq *DeadLetterQueue) Clear() {
	dlq.mu.Lock()
	dlq.failed = []FailedEvent{}
	dlq.mu.Unlock()
}

// Count returns the number of failed events in the queue.
func (dlq *DeadLetterQueue) Count() int {
	dlq.mu.RLock()
	defer dlq.mu.RUnlock()
	return len(dlq.failed)
}
