// internal/game/engine.go
//
// Game session state machine for one channel.
// Responsibilities:
//   - Create sessions bound to a channel with a fixed answer.
//   - Apply guesses: reject duplicates, evaluate, score, record history.
//   - Track transitions: active → won/lost/timed_out (all terminal).
//
// Notes:
//   - Vocabulary validation lives in the words package; callers check it
//     before calling Guess.
//   - A Session is not safe for concurrent use. The store package serialises
//     access per registry.
package game

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session holds the state of a single channel's game.
type Session struct {
	ID        string    // unique per session, used to match timeout callbacks
	ChannelID string    // owning channel
	Answer    string    // lowercase solution
	Attempts  []Attempt // append-only history
	Status    Status
	StartedAt time.Time

	budget Budget
}

// New constructs an active session for channelID.
func New(channelID, answer string, now time.Time) *Session {
	ans := strings.ToLower(answer)
	return &Session{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		Answer:    ans,
		Attempts:  []Attempt{},
		Status:    StatusActive,
		StartedAt: now,
		budget:    NewBudget(ans),
	}
}

// AttemptCount is the number of accepted guesses.
func (s *Session) AttemptCount() int { return len(s.Attempts) }

// Guessed reports whether word was already accepted in this session.
func (s *Session) Guessed(word string) bool {
	for _, a := range s.Attempts {
		if a.Word == word {
			return true
		}
	}
	return false
}

// Guess applies an already-validated word for guesserID.
//
// Rules:
//   - Session must be active (ErrFinished otherwise).
//   - A word already in the history is rejected with ErrAlreadyGuessed and
//     does not consume an attempt.
//
// The attempt is appended before the terminal check so the winning or final
// guess is always part of the history.
func (s *Session) Guess(guesserID, word string) (Turn, error) {
	if s.Status.Terminal() {
		return Turn{}, ErrFinished
	}
	word = strings.ToLower(strings.TrimSpace(word))
	if s.Guessed(word) {
		return Turn{}, ErrAlreadyGuessed
	}

	marks := Evaluate(s.Answer, word)
	att := Attempt{
		GuesserID: guesserID,
		Word:      word,
		Marks:     marks,
		Points:    s.budget.Spend(word, marks),
	}
	s.Attempts = append(s.Attempts, att)

	turn := Turn{Attempt: att, Number: len(s.Attempts)}
	switch {
	case allExact(marks):
		s.Status = StatusWon
		turn.Bonus = WinBonus
	case len(s.Attempts) >= MaxAttempts:
		s.Status = StatusLost
	}
	turn.Status = s.Status
	return turn, nil
}

// Expire moves an active session to TimedOut.
// Returns false if the session had already finished.
func (s *Session) Expire() bool {
	if s.Status.Terminal() {
		return false
	}
	s.Status = StatusTimedOut
	return true
}

// IsWord reports whether s is exactly WordLength lowercase a–z letters.
func IsWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// Clone returns a deep copy that shares nothing with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Attempts = make([]Attempt, len(s.Attempts))
	for i, a := range s.Attempts {
		a.Marks = append([]Mark(nil), a.Marks...)
		c.Attempts[i] = a
	}
	c.budget = make(Budget, len(s.budget))
	for k, v := range s.budget {
		c.budget[k] = v
	}
	return &c
}
