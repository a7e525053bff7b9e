package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// channelLookup is the part of discordgo the resolver needs.
type channelLookup interface {
	Channel(channelID string) (*discordgo.Channel, error)
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
}

// sessionLookup reads from the gateway state cache and falls back to REST.
type sessionLookup struct{ s *discordgo.Session }

func (l sessionLookup) Channel(id string) (*discordgo.Channel, error) {
	if ch, err := l.s.State.Channel(id); err == nil {
		return ch, nil
	}
	return l.s.Channel(id)
}

func (l sessionLookup) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	if g, err := l.s.State.Guild(guildID); err == nil && len(g.Channels) > 0 {
		return g.Channels, nil
	}
	return l.s.GuildChannels(guildID)
}

// namedChannels resolves channels by name, one designated text channel
// per guild.
type namedChannels struct {
	lookup channelLookup
	name   string
}

// IsGameChannel reports whether channelID is a text channel with the
// configured name.
func (c namedChannels) IsGameChannel(channelID string) bool {
	ch, err := c.lookup.Channel(channelID)
	if err != nil {
		log.Debug().Err(err).Str("channel", channelID).Msg("channel lookup")
		return false
	}
	return ch.Name == c.name
}

// FindGameChannel returns the guild's text channel with the configured name.
func (c namedChannels) FindGameChannel(guildID string) (string, bool) {
	return findTextChannel(c.lookup, guildID, c.name)
}

func findTextChannel(l channelLookup, guildID, name string) (string, bool) {
	if guildID == "" {
		return "", false
	}
	chans, err := l.GuildChannels(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("list guild channels")
		return "", false
	}
	for _, ch := range chans {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch.ID, true
		}
	}
	return "", false
}
