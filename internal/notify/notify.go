package notify

import (
	"io"
	"log"
	"sync"
)

// Notifier is the user-facing notification surface. Store operations report
// outcomes here instead of failing their callers.
type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(title, description string) {
	n.logger.Printf("notify: %s: %s", title, description)
}

func (n *LogNotifier) Error(title, description string) {
	n.logger.Printf("notify error: %s: %s", title, description)
}

const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is one buffered message.
type Notification struct {
	Level       string `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Buffer collects notifications so a caller can deliver them later, e.g. in
// an HTTP response body. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	pending []Notification
}

func (b *Buffer) Success(title, description string) {
	b.append(Notification{Level: LevelSuccess, Title: title, Description: description})
}

func (b *Buffer) Error(title, description string) {
	b.append(Notification{Level: LevelError, Title: title, Description: description})
}

func (b *Buffer) append(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, n)
}

// Drain returns the buffered notifications and empties the buffer.
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}
