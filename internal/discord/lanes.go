package discord

import (
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog/log"
)

// lanes runs jobs one at a time per key, in the order they were submitted.
// Different keys run concurrently. Each key gets its own worker the first
// time it is seen.
type lanes struct {
	mu     sync.Mutex
	queues map[string]chan func()
	size   int
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

func newLanes(size int) *lanes {
	return &lanes{
		queues: make(map[string]chan func()),
		size:   size,
		done:   make(chan struct{}),
	}
}

// submit queues job on key's lane. It blocks while the lane is full and
// returns false once the lanes are closed.
func (l *lanes) submit(key string, job func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	q, ok := l.queues[key]
	if !ok {
		q = make(chan func(), l.size)
		l.queues[key] = q
		l.wg.Add(1)
		go l.run(key, q)
	}
	l.mu.Unlock()

	select {
	case q <- job:
		return true
	case <-l.done:
		return false
	}
}

func (l *lanes) run(key string, q chan func()) {
	defer l.wg.Done()
	for {
		select {
		case job := <-q:
			safely(key, job)
		case <-l.done:
			for {
				select {
				case job := <-q:
					safely(key, job)
				default:
					return
				}
			}
		}
	}
}

// close stops accepting jobs and waits for queued ones to finish.
func (l *lanes) close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.done)
	l.mu.Unlock()
	l.wg.Wait()
}

// safely runs fn, logging instead of crashing if it panics.
func safely(what string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("handler", what).Bytes("stack", debug.Stack()).Msg("handler panicked")
		}
	}()
	fn()
}
