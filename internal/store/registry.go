// internal/store/registry.go
//
// In-memory session registry: the single source of truth for "is a game
// running in this channel".
//
// Characteristics:
//   - At most one active *game.Session per channel ID.
//   - Terminal sessions are removed synchronously with the event that ends
//     them (winning/final guess, explicit Terminate, or timeout).
//   - Every session gets one timeout timer owned by its registry entry.
//   - Concurrency-safe via a single Mutex; guesses for a channel are applied
//     one at a time in lock acquisition order.
//   - Callers only ever see clones, never the live session.
//   - State is lost when the process restarts.

package store

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/smitebot/internal/game"
	"github.com/robalobadob/smitebot/internal/words"
)

var (
	ErrAlreadyRunning = errors.New("game already running")
	ErrNoGame         = errors.New("no game running")
)

// TimeoutFunc is called, outside the registry lock, with a session that
// just timed out.
type TimeoutFunc func(s *game.Session)

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the system clock.
func WithClock(c Clock) Option { return func(r *Registry) { r.clock = c } }

// WithRandom replaces the answer draw source.
func WithRandom(src words.RandomSource) Option { return func(r *Registry) { r.rng = src } }

// WithDuration sets the game duration. Zero disables the timeout.
func WithDuration(d time.Duration) Option { return func(r *Registry) { r.duration = d } }

// WithTimeoutFunc sets the hook run after a session times out.
func WithTimeoutFunc(f TimeoutFunc) Option { return func(r *Registry) { r.onTimeout = f } }

type entry struct {
	session *game.Session
	timer   Timer // nil when no duration is configured
}

// Registry maps channel IDs to their active session.
type Registry struct {
	mu    sync.Mutex        // guards games
	games map[string]*entry // keyed by channel ID

	words     *words.Set
	rng       words.RandomSource
	clock     Clock
	duration  time.Duration
	onTimeout TimeoutFunc
}

// NewRegistry constructs an empty Registry drawing answers from w.
func NewRegistry(w *words.Set, opts ...Option) *Registry {
	r := &Registry{
		games: make(map[string]*entry),
		words: w,
		rng:   words.CryptoSource{},
		clock: SystemClock{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Duration is the configured game length (zero when attempt-based).
func (r *Registry) Duration() time.Duration { return r.duration }

// Now reports the registry clock's current time.
func (r *Registry) Now() time.Time { return r.clock.Now() }

// TryStart creates a session for channelID unless one is already active.
func (r *Registry) TryStart(channelID string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[channelID]; ok {
		return nil, ErrAlreadyRunning
	}
	s := game.New(channelID, r.words.Pick(r.rng), r.clock.Now())
	e := &entry{session: s}
	if r.duration > 0 {
		id := s.ID
		e.timer = r.clock.AfterFunc(r.duration, func() { r.expire(channelID, id) })
	}
	r.games[channelID] = e

	log.Debug().Str("channel", channelID).Str("session", s.ID).Msg("game started")
	return s.Clone(), nil
}

// Active returns a snapshot of the channel's session, if any.
func (r *Registry) Active(channelID string) (*game.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.games[channelID]
	if !ok {
		return nil, false
	}
	return e.session.Clone(), true
}

// Guess applies a validated word to the channel's session. When the guess
// ends the game the session is unregistered before the lock is released.
// The returned snapshot includes the new attempt.
func (r *Registry) Guess(channelID, guesserID, word string) (game.Turn, *game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.games[channelID]
	if !ok {
		return game.Turn{}, nil, ErrNoGame
	}
	turn, err := e.session.Guess(guesserID, word)
	if err != nil {
		return game.Turn{}, nil, err
	}
	if turn.Status.Terminal() {
		r.removeLocked(channelID, e)
	}
	return turn, e.session.Clone(), nil
}

// Terminate ends the channel's session with status and unregisters it.
// It is a no-op returning false when nothing is registered.
func (r *Registry) Terminate(channelID string, status game.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.games[channelID]
	if !ok {
		return false
	}
	if !e.session.Status.Terminal() {
		e.session.Status = status
	}
	r.removeLocked(channelID, e)
	return true
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

// removeLocked stops the entry's timer and deletes it. A timer that already
// fired is fine: expire will find nothing to do.
func (r *Registry) removeLocked(channelID string, e *entry) {
	if e.timer != nil {
		_ = e.timer.Stop()
	}
	delete(r.games, channelID)
	log.Debug().Str("channel", channelID).Str("session", e.session.ID).
		Str("status", string(e.session.Status)).Msg("game removed")
}

// expire is the timer callback. It only acts if the same session is still
// registered and active, so a late timer can never end a newer game.
func (r *Registry) expire(channelID, sessionID string) {
	r.mu.Lock()
	e, ok := r.games[channelID]
	if !ok || e.session.ID != sessionID || !e.session.Expire() {
		r.mu.Unlock()
		return
	}
	delete(r.games, channelID)
	snap := e.session.Clone()
	r.mu.Unlock()

	log.Info().Str("channel", channelID).Str("session", sessionID).Msg("game timed out")
	if r.onTimeout != nil {
		r.onTimeout(snap)
	}
}
