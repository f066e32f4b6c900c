// Package notify carries user-facing outcomes (success, info, error) from services to whatever
// surface displays them.
package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notices.
type Notifier interface {
	Push(n Notice)
}

// Queue is a goroutine-safe FIFO of notices.
type Queue struct {
	mu      sync.Mutex
	notices []Notice
}

var _ Notifier = (*Queue)(nil)

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	q.mu.Lock()
	q.notices = append(q.notices, n)
	q.mu.Unlock()
}

func (q *Queue) Success(msg string) { q.Push(Notice{Level: LevelSuccess, Message: msg}) }
func (q *Queue) Info(msg string)    { q.Push(Notice{Level: LevelInfo, Message: msg}) }
func (q *Queue) Error(msg string)   { q.Push(Notice{Level: LevelError, Message: msg}) }

// Drain returns the pending notices in push order and empties the queue.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.notices
	q.notices = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notices)
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Push(Notice) {}
