// internal/wordle/service.go
//
// Entry points the chat gateway calls into.
// Responsibilities:
//   - StartGame: gate to the configured channel, then start a session.
//   - HandleCandidateMessage: route plain chat text to the channel's session.
//   - LeaderboardView: current ranking.
//   - Timeout notifications, pushed through the Sink.
//
// Every call returns a discriminated result carrying ready-to-send text;
// the gateway decides how to present it. Only timeouts originate here
// without an inbound event, so they are the only thing sent via Sink.

package wordle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/smitebot/internal/game"
	"github.com/robalobadob/smitebot/internal/leaderboard"
	"github.com/robalobadob/smitebot/internal/render"
	"github.com/robalobadob/smitebot/internal/store"
	"github.com/robalobadob/smitebot/internal/words"
)

// ChannelResolver knows which channel hosts the game in each guild.
type ChannelResolver interface {
	IsGameChannel(channelID string) bool
	FindGameChannel(guildID string) (channelID string, ok bool)
}

// Tone tells the gateway how to colour a message.
type Tone int

const (
	ToneSuccess Tone = iota
	ToneFailure
)

// Message is an outbound chat message.
type Message struct {
	Text string
	Tone Tone
}

// Sink delivers messages that are not replies to an inbound event.
type Sink interface {
	Send(ctx context.Context, channelID string, m Message) error
}

// Recorder persists finished sessions.
type Recorder interface {
	Record(ctx context.Context, s *game.Session, finishedAt time.Time) error
}

// Deps are the collaborators of a Service. Clock, Random, and Recorder
// are optional.
type Deps struct {
	Words    *words.Set
	Board    *leaderboard.Board
	Channels ChannelResolver
	Sink     Sink
	Renderer *render.Renderer
	Recorder Recorder
	Clock    store.Clock
	Random   words.RandomSource
	Duration time.Duration
}

// Service is the Wordle core.
type Service struct {
	words    *words.Set
	board    *leaderboard.Board
	channels ChannelResolver
	sink     Sink
	renderer *render.Renderer
	recorder Recorder
	registry *store.Registry
}

// New builds a Service and its session registry.
func New(d Deps) *Service {
	s := &Service{
		words:    d.Words,
		board:    d.Board,
		channels: d.Channels,
		sink:     d.Sink,
		renderer: d.Renderer,
		recorder: d.Recorder,
	}
	if s.renderer == nil {
		s.renderer = render.New(render.DiscordGlyphs)
	}
	opts := []store.Option{
		store.WithDuration(d.Duration),
		store.WithTimeoutFunc(s.onTimeout),
	}
	if d.Clock != nil {
		opts = append(opts, store.WithClock(d.Clock))
	}
	if d.Random != nil {
		opts = append(opts, store.WithRandom(d.Random))
	}
	s.registry = store.NewRegistry(d.Words, opts...)
	return s
}

// Registry exposes the session registry (ops API, tests).
func (s *Service) Registry() *store.Registry { return s.registry }

// Gate checks that channelID is the game channel for guildID.
func (s *Service) Gate(guildID, channelID string) Gate {
	if s.channels.IsGameChannel(channelID) {
		return Gate{Kind: GateOK}
	}
	if id, ok := s.channels.FindGameChannel(guildID); ok {
		return Gate{Kind: GateWrongChannel, GameChannelID: id}
	}
	return Gate{Kind: GateNotConfigured}
}

// StartGame starts a session in channelID if it is the game channel and
// nothing is running there.
func (s *Service) StartGame(ctx context.Context, guildID, channelID string) StartResult {
	g := s.Gate(guildID, channelID)
	switch g.Kind {
	case GateWrongChannel:
		return StartResult{Kind: StartWrongChannel, GameChannelID: g.GameChannelID}
	case GateNotConfigured:
		return StartResult{Kind: StartChannelNotConfigured}
	}

	sess, err := s.registry.TryStart(channelID)
	if errors.Is(err, store.ErrAlreadyRunning) {
		return StartResult{Kind: StartAlreadyRunning, Message: Message{Text: "A game is already running!", Tone: ToneFailure}}
	}
	if err != nil {
		log.Error().Err(err).Str("channel", channelID).Msg("start game")
		return StartResult{Kind: StartFailed, Message: Message{Text: "Could not start a game.", Tone: ToneFailure}}
	}
	log.Info().Str("guild", guildID).Str("channel", channelID).Str("session", sess.ID).Msg("wordle started")
	return StartResult{
		Kind:    StartStarted,
		Session: sess,
		Message: Message{Text: render.Started(s.registry.Duration())},
	}
}

// HandleCandidateMessage treats text as a possible guess in channelID.
// Anything that is not a five-letter word in an active game channel is
// Ignored without a reply.
func (s *Service) HandleCandidateMessage(ctx context.Context, channelID, authorID, text string) GuessResult {
	if !s.channels.IsGameChannel(channelID) {
		return GuessResult{Kind: GuessIgnored}
	}
	if _, ok := s.registry.Active(channelID); !ok {
		return GuessResult{Kind: GuessIgnored}
	}
	word := strings.ToLower(strings.TrimSpace(text))
	if !game.IsWord(word) {
		return GuessResult{Kind: GuessIgnored}
	}
	if !s.words.IsValid(word) {
		return GuessResult{Kind: GuessInvalidWord, Message: Message{Text: render.InvalidWord(word), Tone: ToneFailure}}
	}

	turn, sess, err := s.guess(ctx, channelID, authorID, word)
	switch {
	case errors.Is(err, errBrokenGame):
		return GuessResult{Kind: GuessAborted, Session: sess, Message: Message{Text: render.Aborted(sess), Tone: ToneFailure}}
	case errors.Is(err, game.ErrAlreadyGuessed):
		return GuessResult{Kind: GuessAlreadyGuessed, Message: Message{Text: render.AlreadyGuessed(word), Tone: ToneFailure}}
	case errors.Is(err, store.ErrNoGame), errors.Is(err, game.ErrFinished):
		// The game ended between the lookup and the guess.
		return GuessResult{Kind: GuessIgnored}
	case err != nil:
		log.Error().Err(err).Str("channel", channelID).Msg("apply guess")
		return GuessResult{Kind: GuessIgnored}
	}

	if err := s.board.Add(authorID, turn.Total()); err != nil {
		log.Warn().Err(err).Str("player", authorID).Msg("leaderboard add")
	}

	elapsed := s.registry.Now().Sub(sess.StartedAt)
	res := GuessResult{
		Session: sess,
		Turn:    turn,
		Message: Message{Text: s.renderer.Transcript(sess, turn, s.registry.Duration(), elapsed)},
	}
	switch turn.Status {
	case game.StatusWon:
		res.Kind = GuessWon
		res.Announcement = &Message{Text: render.Won(sess, authorID)}
		s.record(ctx, sess)
	case game.StatusLost:
		res.Kind = GuessLost
		res.Announcement = &Message{Text: render.Lost(sess), Tone: ToneFailure}
		s.record(ctx, sess)
	default:
		res.Kind = GuessProgress
	}
	log.Debug().Str("channel", channelID).Str("player", authorID).Int("attempt", turn.Number).
		Str("status", string(turn.Status)).Int("points", turn.Total()).Msg("guess applied")
	return res
}

// LeaderboardView returns the ranking for the current epoch.
func (s *Service) LeaderboardView() []leaderboard.Entry { return s.board.Rank() }

// ActiveGames counts channels with a running game.
func (s *Service) ActiveGames() int { return s.registry.Len() }

// ResetLeaderboard starts a new scoring epoch.
func (s *Service) ResetLeaderboard() {
	s.board.Reset()
	log.Info().Msg("leaderboard reset")
}

var errBrokenGame = errors.New("wordle: session answer cannot be evaluated")

// guess applies word to the channel's session. The word list is not
// validated on load, so a malformed answer makes evaluation panic; that
// session is ended as aborted and recorded instead of taking the process
// down.
func (s *Service) guess(ctx context.Context, channelID, authorID, word string) (turn game.Turn, sess *game.Session, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		snap, ok := s.registry.Active(channelID)
		s.registry.Terminate(channelID, game.StatusAborted)
		log.Error().Interface("panic", p).Str("channel", channelID).Str("word", word).
			Msg("guess evaluation failed, game aborted")
		if !ok {
			turn, sess, err = game.Turn{}, nil, store.ErrNoGame
			return
		}
		snap.Status = game.StatusAborted
		s.record(ctx, snap)
		turn, sess, err = game.Turn{}, snap, errBrokenGame
	}()
	return s.registry.Guess(channelID, authorID, word)
}

func (s *Service) onTimeout(sess *game.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.record(ctx, sess)
	if s.sink == nil {
		return
	}
	if err := s.sink.Send(ctx, sess.ChannelID, Message{Text: render.TimedOut(sess), Tone: ToneFailure}); err != nil {
		log.Warn().Err(err).Str("channel", sess.ChannelID).Msg("send timeout notice")
	}
}

func (s *Service) record(ctx context.Context, sess *game.Session) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, sess, s.registry.Now()); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("record game")
	}
}
