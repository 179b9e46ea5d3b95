package session

import (
	"context"
	"sync"
)

// Snapshot is an immutable view of the session state. Every mutation on the
// store replaces the whole snapshot atomically before subscribers are
// notified, so a subscriber never observes a torn state.
type Snapshot struct {
	Messages  []Message
	Sources   []Source
	Loading   bool
	Connected bool
}

// LastMessage returns the trailing log entry, if any.
func (s Snapshot) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Store holds the ordered message log, the current source citations, the
// loading flag, and the connectivity flag. Mutations are expected to come
// from a single event-processing goroutine; the mutex only protects
// subscriber registration and concurrent readers.
type Store struct {
	mu      sync.Mutex
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore() *Store {
	return &Store{subs: map[int]func(Snapshot){}}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers a callback invoked with each new snapshot. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Watch returns a latest-value channel of snapshots, seeded with the current
// state. Intermediate snapshots are conflated if the receiver lags. The
// subscription ends when ctx is canceled.
func (s *Store) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	push := func(sn Snapshot) {
		for {
			select {
			case ch <- sn:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	}
	unsub := s.Subscribe(push)
	go func() {
		<-ctx.Done()
		unsub()
	}()
	push(s.Snapshot())
	return ch
}

// mutate applies fn to a copy of the snapshot, swaps it in, and notifies
// subscribers. Callbacks run outside the lock so a subscriber may read the
// store without deadlocking.
func (s *Store) mutate(fn func(*Snapshot)) Snapshot {
	s.mu.Lock()
	next := s.snap
	next.Messages = append([]Message(nil), s.snap.Messages...)
	next.Sources = append([]Source(nil), s.snap.Sources...)
	fn(&next)
	s.snap = next
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub(next)
	}
	return next
}

// AppendMessage appends one entry to the log.
func (s *Store) AppendMessage(m Message) {
	s.mutate(func(sn *Snapshot) {
		sn.Messages = append(sn.Messages, m)
	})
}

// UpdateLastAssistant applies the chunk aggregation rule: if the log ends in
// an assistant message its content is replaced with the payload (each chunk
// carries the full text so far, not a delta); otherwise a fresh assistant
// message is appended.
func (s *Store) UpdateLastAssistant(content string) {
	s.mutate(func(sn *Snapshot) {
		if n := len(sn.Messages); n > 0 && sn.Messages[n-1].Role == RoleAssistant {
			sn.Messages[n-1].Content = content
			return
		}
		sn.Messages = append(sn.Messages, NewMessage(RoleAssistant, content))
	})
}

// AppendSource adds one citation to the current list.
func (s *Store) AppendSource(src Source) {
	s.mutate(func(sn *Snapshot) {
		sn.Sources = append(sn.Sources, src)
	})
}

// ReplaceSources swaps in a complete citation list.
func (s *Store) ReplaceSources(srcs []Source) {
	s.mutate(func(sn *Snapshot) {
		sn.Sources = append([]Source(nil), srcs...)
	})
}

// ResetSources empties the citation list. Called whenever a new user
// message is sent, before any frame for that turn is processed.
func (s *Store) ResetSources() {
	s.mutate(func(sn *Snapshot) {
		sn.Sources = nil
	})
}

func (s *Store) SetLoading(v bool) {
	s.mutate(func(sn *Snapshot) {
		sn.Loading = v
	})
}

func (s *Store) SetConnected(v bool) {
	s.mutate(func(sn *Snapshot) {
		sn.Connected = v
	})
}

// Clear replaces the log with a single system message and empties the
// source list. Connectivity and loading are untouched, and the session
// identifier is unaffected: this is a display-only reset, the remote
// conversation context survives.
func (s *Store) Clear(notice string) {
	s.mutate(func(sn *Snapshot) {
		sn.Messages = []Message{NewMessage(RoleSystem, notice)}
		sn.Sources = nil
	})
}
