package wordle

import "github.com/robalobadob/smitebot/internal/game"

// GateKind is the outcome of a channel check.
type GateKind int

const (
	GateOK GateKind = iota
	GateWrongChannel
	GateNotConfigured
)

type Gate struct {
	Kind          GateKind
	GameChannelID string // set for GateWrongChannel
}

// StartKind is the outcome of StartGame.
type StartKind int

const (
	StartStarted StartKind = iota
	StartAlreadyRunning
	StartWrongChannel
	StartChannelNotConfigured
	StartFailed
)

func (k StartKind) String() string {
	switch k {
	case StartStarted:
		return "started"
	case StartAlreadyRunning:
		return "already_running"
	case StartWrongChannel:
		return "wrong_channel"
	case StartChannelNotConfigured:
		return "channel_not_configured"
	case StartFailed:
		return "failed"
	}
	return "unknown"
}

type StartResult struct {
	Kind          StartKind
	Session       *game.Session // set when started
	GameChannelID string        // set for StartWrongChannel
	Message       Message
}

// GuessKind is the outcome of HandleCandidateMessage.
type GuessKind int

const (
	GuessIgnored GuessKind = iota
	GuessInvalidWord
	GuessAlreadyGuessed
	GuessProgress
	GuessWon
	GuessLost
	GuessAborted
)

func (k GuessKind) String() string {
	switch k {
	case GuessIgnored:
		return "ignored"
	case GuessInvalidWord:
		return "invalid_word"
	case GuessAlreadyGuessed:
		return "already_guessed"
	case GuessProgress:
		return "progress"
	case GuessWon:
		return "won"
	case GuessLost:
		return "lost"
	case GuessAborted:
		return "aborted"
	}
	return "unknown"
}

type GuessResult struct {
	Kind         GuessKind
	Message      Message       // reply; empty for GuessIgnored
	Announcement *Message      // end-of-game notice for GuessWon/GuessLost
	Session      *game.Session // snapshot after the guess
	Turn         game.Turn
}
