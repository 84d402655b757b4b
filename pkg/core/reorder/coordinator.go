// Package reorder batches drag gestures so a whole drag session produces at
// most one move request.
package reorder

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a settled drag is committed
const DefaultDebounce = 300 * time.Millisecond

// Update is an intermediate drag position.
type Update struct {
	LinkID int64
	Source int
	Over   int
}

// Drop describes how a drag ended. Destination is nil when the drop was cancelled.
type Drop struct {
	LinkID      int64
	Source      int
	Destination *int
}

// NeedsMove reports whether the drop changes the link's position.
func (d Drop) NeedsMove() bool {
	return d.Destination != nil && *d.Destination != d.Source
}

type CompletionFunc func(Drop)

// Session is the state of one drag-enabled view. It must be cleaned up when
// the view goes away.
type Session struct {
	mu        sync.Mutex
	dragging  bool
	closed    bool
	gen       uint64
	observers []func(Update)
	window    time.Duration
	timer     *time.Timer
	onDrop    CompletionFunc

	// firing is held while a debounced completion runs.
	firing sync.Mutex
}

// NewSession creates a coordinator. A non-positive window uses DefaultDebounce.
func NewSession(window time.Duration, onDrop CompletionFunc) *Session {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Session{
		window: window,
		onDrop: onDrop,
	}
}

// Subscribe registers fn for intermediate updates.
func (s *Session) Subscribe(fn func(Update)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Session) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.dragging = true
	}
}

// Move forwards u to observers while a drag is in progress and reports
// whether it was forwarded. Late updates are stale and dropped.
func (s *Session) Move(u Update) bool {
	s.mu.Lock()
	if !s.dragging {
		s.mu.Unlock()
		return false
	}
	observers := append([]func(Update){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(u)
	}
	return true
}

// End finishes the drag. A cancelled or same-position drop completes
// immediately; a real move is committed after the quiet period and
// replaces any move still waiting.
func (s *Session) End(d Drop) {
	s.mu.Lock()
	s.dragging = false
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !d.NeedsMove() {
		s.mu.Unlock()
		s.onDrop(d)
		return
	}

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, func() { s.fire(gen, d) })
	s.mu.Unlock()
}

func (s *Session) fire(gen uint64, d Drop) {
	s.firing.Lock()
	defer s.firing.Unlock()

	s.mu.Lock()
	live := !s.closed && s.gen == gen
	s.mu.Unlock()
	if live {
		s.onDrop(d)
	}
}

// Cancel ends a drag without a drop.
func (s *Session) Cancel(linkID int64, source int) {
	s.End(Drop{LinkID: linkID, Source: source})
}

// Cleanup cancels any pending commit and resets the session. If a commit
// is already running, Cleanup waits for it, so no completion runs after
// Cleanup returns. It must not be called from the CompletionFunc.
func (s *Session) Cleanup() {
	s.mu.Lock()
	s.closed = true
	s.dragging = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.firing.Lock()
	s.firing.Unlock()
}
