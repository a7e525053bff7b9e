// Package discord connects the Wordle service and the quote store to a
// Discord gateway session.
//
// Inbound events are delivered synchronously in gateway order:
//   - InteractionCreate: slash commands (see commands.go), each on its own
//     goroutine.
//   - MessageCreate: every message is offered to the Wordle service as a
//     candidate guess, through a per-channel lane so guesses in a channel
//     are applied in the order Discord delivered them.
//   - GuildMemberAdd: welcome message in the welcome channel.
//
// Outbound: replies to interactions, embeds for guesses, and the Sink used
// for timeout notices.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/smitebot/internal/quotes"
	"github.com/robalobadob/smitebot/internal/wordle"
)

const (
	presence  = "/help if ya need something"
	laneDepth = 64
)

// Config holds the gateway-facing settings.
type Config struct {
	Token          string
	EmbedTitle     string
	GameChannel    string
	WelcomeChannel string
}

// Bot owns the gateway session.
type Bot struct {
	cfg      Config
	s        *discordgo.Session
	channels namedChannels
	cmds     *commands
	lanes    *lanes
	reply    func(channelID string, m wordle.Message)
}

// New creates the session. Call Resolver and Sink to build the Wordle
// service, then Attach it before Open.
func New(cfg Config, q *quotes.Store) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	// Handlers run on the gateway goroutine so MessageCreate order is kept;
	// anything slow is moved off it below.
	s.SyncEvents = true
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	b := &Bot{
		cfg:      cfg,
		s:        s,
		channels: namedChannels{lookup: sessionLookup{s: s}, name: cfg.GameChannel},
		lanes:    newLanes(laneDepth),
	}
	b.reply = b.send
	b.cmds = &commands{
		quotes:      q,
		embedTitle:  cfg.EmbedTitle,
		channelName: cfg.GameChannel,
		latency:     func() int64 { return s.HeartbeatLatency().Milliseconds() },
	}
	return b, nil
}

// Resolver is the game-channel resolver backed by this session.
func (b *Bot) Resolver() wordle.ChannelResolver { return b.channels }

// Sink sends unsolicited messages through this session.
func (b *Bot) Sink() wordle.Sink { return sink{b} }

// Attach wires the Wordle service into event handling.
func (b *Bot) Attach(svc *wordle.Service) { b.cmds.game = svc }

// Open connects to the gateway and registers commands globally.
func (b *Bot) Open() error {
	if b.cmds.game == nil {
		return fmt.Errorf("discord: no wordle service attached")
	}
	b.s.AddHandler(b.onReady)
	b.s.AddHandler(b.onInteraction)
	b.s.AddHandler(b.onMessage)
	b.s.AddHandler(b.onMemberJoin)
	if err := b.s.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	return nil
}

// Close disconnects from the gateway and finishes queued guesses.
func (b *Bot) Close() error {
	err := b.s.Close()
	b.lanes.close()
	return err
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	go safely("ready", func() { b.ready(s, r) })
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("user", r.User.String()).Int("guilds", len(r.Guilds)).Msg("discord ready")
	if err := s.UpdateGameStatus(0, presence); err != nil {
		log.Warn().Err(err).Msg("set presence")
	}
	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", commandDefs); err != nil {
		log.Error().Err(err).Msg("register commands")
		return
	}
	log.Info().Int("commands", len(commandDefs)).Msg("commands synced")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	go safely("interaction", func() { b.interaction(s, i) })
}

func (b *Bot) interaction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data := i.ApplicationCommandData()
	inv := invocation{
		Name:      data.Name,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Options:   make(map[string]string, len(data.Options)),
	}
	if i.Member != nil && i.Member.User != nil {
		inv.UserID = i.Member.User.ID
	} else if i.User != nil {
		inv.UserID = i.User.ID
	}
	for _, o := range data.Options {
		if o.Type == discordgo.ApplicationCommandOptionString {
			inv.Options[o.Name] = o.StringValue()
		}
	}

	r := b.cmds.run(ctx, inv)
	resp := &discordgo.InteractionResponseData{Content: r.Content}
	if r.Embed != nil {
		resp.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}
	if r.Ephemeral {
		resp.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: resp,
	}); err != nil {
		log.Warn().Err(err).Str("command", inv.Name).Msg("interaction respond")
	}
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	b.enqueueCandidate(m.ChannelID, m.Author.Mention(), m.Content)
}

// enqueueCandidate hands a message to its channel's lane.
func (b *Bot) enqueueCandidate(channelID, authorID, content string) {
	b.lanes.submit(channelID, func() { b.candidate(channelID, authorID, content) })
}

func (b *Bot) candidate(channelID, authorID, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := b.cmds.game.HandleCandidateMessage(ctx, channelID, authorID, content)
	if res.Kind == wordle.GuessIgnored {
		return
	}
	b.reply(channelID, res.Message)
	if res.Announcement != nil {
		b.reply(channelID, *res.Announcement)
	}
}

func (b *Bot) onMemberJoin(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.Member == nil || e.User == nil {
		return
	}
	go safely("welcome", func() { b.welcome(s, e) })
}

func (b *Bot) welcome(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	id, ok := findTextChannel(sessionLookup{s: s}, e.GuildID, b.cfg.WelcomeChannel)
	if !ok {
		return
	}
	msg := fmt.Sprintf("Everyone give a HUGE welcome to this new pal: %s!", e.User.Mention())
	if _, err := s.ChannelMessageSend(id, msg); err != nil {
		log.Warn().Err(err).Str("guild", e.GuildID).Msg("send welcome")
	}
}

func (b *Bot) send(channelID string, m wordle.Message) {
	if _, err := b.s.ChannelMessageSendEmbed(channelID, b.cmds.embed(m)); err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("send embed")
	}
}

type sink struct{ b *Bot }

func (k sink) Send(ctx context.Context, channelID string, m wordle.Message) error {
	_, err := k.b.s.ChannelMessageSendEmbed(channelID, k.b.cmds.embed(m), discordgo.WithContext(ctx))
	return err
}
