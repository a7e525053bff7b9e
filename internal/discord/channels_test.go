package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestNamedChannels(t *testing.T) {
	lookup := fakeLookup{channels: map[string]*discordgo.Channel{
		"1": {ID: "1", GuildID: "g", Name: "wordle", Type: discordgo.ChannelTypeGuildText},
		"2": {ID: "2", GuildID: "g", Name: "wordle", Type: discordgo.ChannelTypeGuildVoice},
		"3": {ID: "3", GuildID: "g", Name: "general", Type: discordgo.ChannelTypeGuildText},
	}}
	c := namedChannels{lookup: lookup, name: "wordle"}

	assert.True(t, c.IsGameChannel("1"))
	assert.False(t, c.IsGameChannel("3"))
	assert.False(t, c.IsGameChannel("404"))

	id, ok := c.FindGameChannel("g")
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	_, ok = c.FindGameChannel("")
	assert.False(t, ok)
	_, ok = c.FindGameChannel("other")
	assert.False(t, ok)
}
