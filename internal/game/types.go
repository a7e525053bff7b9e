// internal/game/types.go
//
// Core type definitions for the Wordle game engine.
// Defines:
//   - Mark: per-letter result of a guess (exact/present/absent).
//   - Status: lifecycle state of a channel's game session.
//   - Attempt / Turn: one accepted guess and what it earned.

package game

import "errors"

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "exact":   letter is correct and in the correct position.
//   - "present": letter exists in the answer but in a different position.
//   - "absent":  letter has no remaining credit in the answer.
type Mark string

const (
	MarkExact   Mark = "exact"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// Status is the lifecycle state of a Session.
// Active is the only non-terminal state.
type Status string

const (
	StatusActive   Status = "active"
	StatusWon      Status = "won"
	StatusLost     Status = "lost"
	StatusTimedOut Status = "timed_out"
	// StatusAborted ends a session whose answer could not be evaluated.
	StatusAborted Status = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s != StatusActive }

const (
	// MaxAttempts is the number of accepted guesses before a session is lost.
	MaxAttempts = 6
	// WordLength is the fixed length of answers and guesses.
	WordLength = 5
	// WinBonus is awarded to the player who guesses the answer.
	WinBonus = 4
)

var (
	ErrFinished       = errors.New("game finished")
	ErrAlreadyGuessed = errors.New("already guessed")
)

// Attempt is one accepted guess in a session's history.
type Attempt struct {
	GuesserID string // chat user identifier (mention form)
	Word      string // lowercase guess
	Marks     []Mark // per-letter evaluation
	Points    int    // points taken from the letter budget
}

// Turn is the result of applying a guess.
type Turn struct {
	Attempt Attempt
	Number  int    // 1-based attempt number
	Status  Status // session status after the guess
	Bonus   int    // completion bonus, WinBonus when the guess won
}

// Total returns everything the guesser earned on this turn.
func (t Turn) Total() int { return t.Attempt.Points + t.Bonus }
