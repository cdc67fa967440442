// Package signal propagates "data changed" notifications between views that
// do not know about each other.
package signal

import "sync"

// Signal is a toggling change flag with subscribers. Every Mark flips the
// flag and wakes each subscriber; wake-ups that arrive while a subscriber has
// not yet drained its channel coalesce into one.
type Signal struct {
	subs    map[int]chan struct{}
	nextID  int
	version uint64
	changed bool
	mu      sync.Mutex
}

// New returns an unmarked signal.
func New() *Signal {
	return &Signal{subs: make(map[int]chan struct{})}
}

// Mark records a change and notifies subscribers.
func (s *Signal) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = !s.changed
	s.version++
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Changed returns the current flag value. Only its transitions are meaningful.
func (s *Signal) Changed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Version counts Marks since creation.
func (s *Signal) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscription receives a value on C after each Mark.
type Subscription struct {
	C  <-chan struct{}
	id int
}

// Subscribe registers a new subscriber.
func (s *Signal) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	return &Subscription{C: ch, id: id}
}

// Unsubscribe stops notifications to sub. It is safe to call more than once.
func (s *Signal) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub.id)
}

// Subscribers returns the number of registered subscribers.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
