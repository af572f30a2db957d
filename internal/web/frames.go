package web

import "sync"

// frameStore holds the latest published composite JPEG. Stream handlers
// block on next until a frame newer than the one they last wrote is
// available, so every viewer always sees the freshest frame and frames
// skipped by a slow viewer are simply never sent.
type frameStore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte
	seq    uint64
	closed bool
}

func newFrameStore() *frameStore {
	s := &frameStore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *frameStore) put(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.data = append(s.data[:0], data...)
	s.seq++
	s.cond.Broadcast()
}

// next blocks until a frame newer than after exists, then returns a
// copy of it with its sequence number. ok is false once the store is
// closed.
func (s *frameStore) next(after uint64) (data []byte, seq uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.seq == after && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return nil, 0, false
	}
	data = make([]byte, len(s.data))
	copy(data, s.data)
	return data, s.seq, true
}

func (s *frameStore) sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *frameStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
}
