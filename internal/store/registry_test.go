package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/smitebot/internal/game"
	"github.com/robalobadob/smitebot/internal/words"
)

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs due timers. With force set, due
// timers run even if stopped, simulating a stop that lost the race.
func (c *manualClock) Advance(d time.Duration, force bool) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.fired && !t.at.After(c.now) && (force || !t.stopped) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type seqSource struct{ i int }

func (s *seqSource) Intn(n int) int {
	v := s.i % n
	s.i++
	return v
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *manualClock, *[]*game.Session) {
	t.Helper()
	clock := newManualClock()
	var timedOut []*game.Session
	w := words.FromLists([]string{"crane", "slate"}, []string{"plant", "brick"})
	base := []Option{
		WithClock(clock),
		WithRandom(&seqSource{}),
		WithDuration(5 * time.Minute),
		WithTimeoutFunc(func(s *game.Session) { timedOut = append(timedOut, s) }),
	}
	return NewRegistry(w, append(base, opts...)...), clock, &timedOut
}

func TestRegistry_TryStartOncePerChannel(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	s, err := r.TryStart("c1")
	require.NoError(t, err)
	assert.Equal(t, "crane", s.Answer)
	assert.Equal(t, game.StatusActive, s.Status)

	_, _, err = r.Guess("c1", "<@1>", "plant")
	require.NoError(t, err)

	_, err = r.TryStart("c1")
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	active, ok := r.Active("c1")
	require.True(t, ok)
	assert.Equal(t, "crane", active.Answer)
	assert.Len(t, active.Attempts, 1)

	_, err = r.TryStart("c2")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_WinUnregisters(t *testing.T) {
	r, clock, timedOut := newTestRegistry(t)
	_, err := r.TryStart("c1")
	require.NoError(t, err)

	turn, snap, err := r.Guess("c1", "<@1>", "crane")
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, turn.Status)
	assert.Equal(t, game.StatusWon, snap.Status)

	_, ok := r.Active("c1")
	assert.False(t, ok)

	s, err := r.TryStart("c1")
	require.NoError(t, err)
	assert.Equal(t, "slate", s.Answer)

	// The first game's timer was stopped; only the new game can time out.
	clock.Advance(5*time.Minute, false)
	require.Len(t, *timedOut, 1)
	assert.Equal(t, s.ID, (*timedOut)[0].ID)
}

func TestRegistry_LostAfterSixGuesses(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	_, err := r.TryStart("c1")
	require.NoError(t, err)

	var turn game.Turn
	for _, w := range []string{"slate", "plant", "brick", "story", "shelf", "piano"} {
		turn, _, err = r.Guess("c1", "<@1>", w)
		require.NoError(t, err)
	}
	assert.Equal(t, game.StatusLost, turn.Status)
	assert.Equal(t, 6, turn.Number)
	_, ok := r.Active("c1")
	assert.False(t, ok)

	_, _, err = r.Guess("c1", "<@1>", "train")
	assert.ErrorIs(t, err, ErrNoGame)
}

func TestRegistry_DuplicateGuess(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	_, err := r.TryStart("c1")
	require.NoError(t, err)

	_, _, err = r.Guess("c1", "<@1>", "plant")
	require.NoError(t, err)
	_, _, err = r.Guess("c1", "<@2>", "plant")
	assert.ErrorIs(t, err, game.ErrAlreadyGuessed)

	s, _ := r.Active("c1")
	assert.Len(t, s.Attempts, 1)
}

func TestRegistry_Timeout(t *testing.T) {
	r, clock, timedOut := newTestRegistry(t)
	s, err := r.TryStart("c1")
	require.NoError(t, err)

	clock.Advance(4*time.Minute, false)
	assert.Empty(t, *timedOut)

	clock.Advance(time.Minute, false)
	require.Len(t, *timedOut, 1)
	assert.Equal(t, s.ID, (*timedOut)[0].ID)
	assert.Equal(t, game.StatusTimedOut, (*timedOut)[0].Status)

	_, ok := r.Active("c1")
	assert.False(t, ok)
}

func TestRegistry_LateTimerIsNoop(t *testing.T) {
	r, clock, timedOut := newTestRegistry(t)
	_, err := r.TryStart("c1")
	require.NoError(t, err)
	_, _, err = r.Guess("c1", "<@1>", "crane")
	require.NoError(t, err)

	next, err := r.TryStart("c1")
	require.NoError(t, err)

	// Fire the stopped timer of the finished game anyway.
	clock.Advance(5*time.Minute, true)

	// Only the second session's own timer may end it.
	require.Len(t, *timedOut, 1)
	assert.Equal(t, next.ID, (*timedOut)[0].ID)
}

func TestRegistry_TerminateIdempotent(t *testing.T) {
	r, clock, timedOut := newTestRegistry(t)
	_, err := r.TryStart("c1")
	require.NoError(t, err)

	assert.True(t, r.Terminate("c1", game.StatusTimedOut))
	assert.False(t, r.Terminate("c1", game.StatusTimedOut))

	clock.Advance(10*time.Minute, true)
	assert.Empty(t, *timedOut)
}

func TestRegistry_NoDurationNoTimer(t *testing.T) {
	r, clock, timedOut := newTestRegistry(t, WithDuration(0))
	_, err := r.TryStart("c1")
	require.NoError(t, err)

	clock.Advance(time.Hour, true)
	assert.Empty(t, *timedOut)
	_, ok := r.Active("c1")
	assert.True(t, ok)
}
