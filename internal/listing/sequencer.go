package listing

import (
	"context"
	stderrors "errors"
	"sync"
)

// ErrStale is returned by a fetch whose response arrived after a newer fetch
// had been issued. The stale response is discarded.
var ErrStale = stderrors.New("listing: stale response discarded")

// Ticket identifies one issued fetch.
type Ticket struct {
	Ctx    context.Context
	id     uint64
	cancel context.CancelFunc
}

// Sequencer issues monotonically increasing tickets. Issuing a ticket cancels
// the context of the previous one.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

func (s *Sequencer) Begin(parent context.Context) Ticket {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	s.cancel = cancel
	return Ticket{Ctx: ctx, id: s.latest, cancel: cancel}
}

// Done releases t and reports whether it is still the latest ticket.
func (s *Sequencer) Done(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.cancel()
	if t.id != s.latest {
		return false
	}
	s.cancel = nil
	return true
}

func (s *Sequencer) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
