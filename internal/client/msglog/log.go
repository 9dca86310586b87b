// Package msglog holds the per-session message sequence rendered by a
// chat view. The log is append-only while a session is active: order
// is arrival order as observed by this client, nothing is deduped or
// reordered, and the whole log is discarded on close.
package msglog

import (
	"sync"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

// Log is an ordered message sequence for one chat session. Appends
// arrive from the transport's read goroutine while the view renders,
// so access is mutex-guarded.
type Log struct {
	mu       sync.RWMutex
	messages []chat.Message
	seen     map[string]struct{}
}

// New returns an empty log.
func New() *Log {
	return &Log{
		messages: make([]chat.Message, 0, 16),
		seen:     make(map[string]struct{}),
	}
}

// Append adds a message at the end of the sequence. It never fails and
// never reorders earlier entries.
func (l *Log) Append(m chat.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, m)
	if m.CorrelationID != "" {
		l.seen[m.CorrelationID] = struct{}{}
	}
}

// All returns a copy of the sequence in append order.
func (l *Log) All() []chat.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	copied := make([]chat.Message, len(l.messages))
	copy(copied, l.messages)
	return copied
}

// Len reports the number of messages held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// SeenCorrelation reports whether a message carrying the given
// correlation id was already appended. The controller uses it to drop
// the server's echo of this client's own sends.
func (l *Log) SeenCorrelation(id string) bool {
	if id == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// Clear empties the log. Called on session close and when a dialog
// reopens without a prior session.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
	l.seen = make(map[string]struct{})
}
