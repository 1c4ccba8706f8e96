// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package session

// Scheduler is the session-wide FIFO of outstanding async RPC replies.
// Every AsyncStub on a session shares the same Scheduler: Invoke enqueues
// the stub itself (possibly more than once, if several calls on that
// stub are in flight), and Step drains the queue head-first, stopping at
// the first reply that is not yet fully read.
type Scheduler struct {
	s     *Session
	queue []asyncReader
}

func newScheduler(s *Session) *Scheduler {
	return &Scheduler{s: s}
}

// enqueue is called with s.mu held by the enqueuing AsyncStub.Invoke.
func (sc *Scheduler) enqueue(r asyncReader) {
	sc.queue = append(sc.queue, r)
}

// Step drives one round of progress on a non-blocking descriptor: it
// repeatedly finishes whichever reply is at the head of the queue until
// either the queue is empty or the head reply still has unread bytes
// pending. An I/O error latches the session broken and is returned.
func (sc *Scheduler) Step() error {
	s := sc.s

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.broken {
		return s.err
	}
	for len(sc.queue) > 0 {
		front := sc.queue[0]
		done, err := front.readAndFinish(s.fd)
		if err != nil {
			return s.fail(err)
		}
		if !done {
			break
		}
		sc.queue = sc.queue[1:]
		s.mets.AdjustPipelineDepth(-1)
	}
	return nil
}

// PendingRequests reports how many async replies are currently queued.
func (sc *Scheduler) PendingRequests() int {
	s := sc.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(sc.queue)
}
