package discord

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/smitebot/internal/game"
	"github.com/robalobadob/smitebot/internal/leaderboard"
	"github.com/robalobadob/smitebot/internal/wordle"
	"github.com/robalobadob/smitebot/internal/words"
)

func TestLanes_KeepOrderPerKey(t *testing.T) {
	l := newLanes(4)
	var mu sync.Mutex
	got := map[string][]int{}

	for i := 0; i < 50; i++ {
		i := i
		for _, key := range []string{"a", "b"} {
			key := key
			require.True(t, l.submit(key, func() {
				if i%7 == 0 {
					time.Sleep(time.Millisecond)
				}
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
			}))
		}
	}
	l.close()

	want := lo.Range(50)
	assert.Equal(t, want, got["a"])
	assert.Equal(t, want, got["b"])
	assert.False(t, l.submit("a", func() {}))
}

func TestLanes_PanicDoesNotStopLane(t *testing.T) {
	l := newLanes(4)
	ran := false
	l.submit("a", func() { panic("boom") })
	l.submit("a", func() { ran = true })
	l.close()
	assert.True(t, ran)
}

func TestBot_CandidatesAppliedInArrivalOrder(t *testing.T) {
	lookup := fakeLookup{channels: map[string]*discordgo.Channel{
		"100": {ID: "100", GuildID: "g1", Name: "wordle", Type: discordgo.ChannelTypeGuildText},
	}}
	svc := wordle.New(wordle.Deps{
		Words:    words.FromLists([]string{"crane"}, []string{"slate", "plant", "brick", "story", "grape"}),
		Board:    leaderboard.New(),
		Channels: namedChannels{lookup: lookup, name: "wordle"},
	})
	require.Equal(t, wordle.StartStarted, svc.StartGame(context.Background(), "g1", "100").Kind)

	var mu sync.Mutex
	var replies []string
	b := &Bot{
		cmds:  &commands{game: svc},
		lanes: newLanes(laneDepth),
		reply: func(_ string, m wordle.Message) {
			mu.Lock()
			replies = append(replies, m.Text)
			mu.Unlock()
		},
	}

	guesses := []string{"slate", "plant", "brick", "story", "grape"}
	for i, w := range guesses {
		b.enqueueCandidate("100", fmt.Sprintf("<@%d>", i), w)
	}
	b.lanes.close()

	s, ok := svc.Registry().Active("100")
	require.True(t, ok)
	assert.Equal(t, guesses, lo.Map(s.Attempts, func(a game.Attempt, _ int) string { return a.Word }))
	for i, a := range s.Attempts {
		assert.Equal(t, fmt.Sprintf("<@%d>", i), a.GuesserID)
	}
	require.Len(t, replies, len(guesses))
	assert.Contains(t, replies[4], "Attempt 5 of 6")
}
