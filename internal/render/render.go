// Package render turns game state into chat text. Glyph choice is left to
// the caller so the same transcript works for any chat platform.
package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/smitebot/internal/game"
	"github.com/robalobadob/smitebot/internal/leaderboard"
)

// Glyphs are the symbols drawn for each mark.
type Glyphs struct {
	Exact   string
	Present string
	Absent  string
}

// DiscordGlyphs are Discord emoji shortcodes.
var DiscordGlyphs = Glyphs{
	Exact:   ":green_square:",
	Present: ":yellow_square:",
	Absent:  ":black_large_square:",
}

// ResetNotice is appended to the leaderboard listing.
const ResetNotice = "The leaderboard resets every Sunday at 12PM Central Time!"

// Renderer formats transcripts with a fixed glyph set.
type Renderer struct {
	Glyphs Glyphs
}

// New returns a Renderer using g.
func New(g Glyphs) *Renderer { return &Renderer{Glyphs: g} }

func (r *Renderer) glyph(m game.Mark) string {
	switch m {
	case game.MarkExact:
		return r.Glyphs.Exact
	case game.MarkPresent:
		return r.Glyphs.Present
	default:
		return r.Glyphs.Absent
	}
}

// Line renders one guess as glyphs followed by the uppercase word.
func (r *Renderer) Line(a game.Attempt) string {
	var sb strings.Builder
	for _, m := range a.Marks {
		sb.WriteString(r.glyph(m))
		sb.WriteByte(' ')
	}
	sb.WriteString(strings.ToUpper(a.Word))
	return sb.String()
}

// Transcript renders every attempt in s, oldest first. The newest attempt
// (the one described by turn) carries its points. The footer is the time
// left when duration > 0, otherwise the attempt counter.
func (r *Renderer) Transcript(s *game.Session, turn game.Turn, duration, elapsed time.Duration) string {
	var sb strings.Builder
	last := len(s.Attempts) - 1
	for i, a := range s.Attempts {
		sb.WriteString(r.Line(a))
		sb.WriteString(" - Guessed by ")
		sb.WriteString(a.GuesserID)
		if i == last {
			fmt.Fprintf(&sb, " (+%d)", turn.Attempt.Points)
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	if duration > 0 {
		sb.WriteString(RemainingMinutes(duration, elapsed))
	} else {
		fmt.Fprintf(&sb, "Attempt %d of %d", turn.Number, game.MaxAttempts)
	}
	return sb.String()
}

// RemainingMinutes reports time left, rounded up to whole minutes.
func RemainingMinutes(duration, elapsed time.Duration) string {
	left := max(0, duration-elapsed)
	mins := int(math.Ceil(left.Minutes()))
	return fmt.Sprintf("%d minute%s remaining!", mins, plural(mins))
}

// Started announces a new game.
func Started(duration time.Duration) string {
	if duration > 0 {
		mins := int(math.Ceil(duration.Minutes()))
		return fmt.Sprintf("A game of Wordle has been initiated! You have %d minute%s to guess the word, type your guess in chat! (Must be a %d letter word)",
			mins, plural(mins), game.WordLength)
	}
	return fmt.Sprintf("A game of Wordle has been initiated! You have %d tries to guess the word, type your guess in chat! (Must be a %d letter word)",
		game.MaxAttempts, game.WordLength)
}

// Won congratulates the winner.
func Won(s *game.Session, winner string) string {
	return fmt.Sprintf("%s guessed the correct word %s in %d tries and has been awarded %d points! Well done!",
		winner, strings.ToUpper(s.Answer), s.AttemptCount(), game.WinBonus)
}

// Lost reveals the answer after the last attempt.
func Lost(s *game.Session) string {
	return fmt.Sprintf("Out of tries! The correct word was %s!", strings.ToUpper(s.Answer))
}

// TimedOut reveals the answer after the timer ran out.
func TimedOut(s *game.Session) string {
	return fmt.Sprintf("Time's Up! The correct word was %s!", strings.ToUpper(s.Answer))
}

// Aborted explains that a broken game was ended.
func Aborted(s *game.Session) string {
	return fmt.Sprintf("This game's word (%s) could not be scored, so the game has been ended. Start a new one with /wordle!",
		strings.ToUpper(s.Answer))
}

// InvalidWord rejects a word outside the vocabulary.
func InvalidWord(word string) string {
	return fmt.Sprintf("%s is not a valid word!", strings.ToUpper(word))
}

// AlreadyGuessed rejects a repeated word.
func AlreadyGuessed(word string) string {
	return fmt.Sprintf("%s has already been guessed!", strings.ToUpper(word))
}

// Leaderboard renders a ranked listing followed by the reset notice.
func Leaderboard(rows []leaderboard.Entry) string {
	lines := lo.Map(rows, func(e leaderboard.Entry, i int) string {
		return fmt.Sprintf("%d. %s: %d", i+1, e.PlayerID, e.Score)
	})
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(ResetNotice)
	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
