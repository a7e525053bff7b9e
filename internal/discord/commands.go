package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/smitebot/internal/quotes"
	"github.com/robalobadob/smitebot/internal/render"
	"github.com/robalobadob/smitebot/internal/wordle"
)

const (
	colorGreen = 0x2ecc71
	colorRed   = 0xe74c3c
)

const helpText = "Available Commands:\n\n" +
	"/help: Displays a list of commands\n" +
	"/ping: Replies with latency to server\n" +
	"/addquote: Adds a quote\n" +
	"/quote: displays a saved quote\n" +
	"/wordle: Initiates a game of wordle (must be in the #%s channel to start the game)\n" +
	"/leaderboard: Displays the current leaderboard for Wordle\n" +
	"/grass: Reminds everyone to touch grass\n" +
	"/water: Reminds everyone to drink water\n"

// commandDefs are registered with Discord at startup.
var commandDefs = []*discordgo.ApplicationCommand{
	{Name: "help", Description: "Displays the list of commands"},
	{Name: "ping", Description: "Replies with latency to server"},
	{Name: "grass", Description: "Reminds everyone to touch grass"},
	{Name: "water", Description: "Reminds everyone to drink water"},
	{Name: "wordle", Description: "Starts a game of Wordle!"},
	{Name: "leaderboard", Description: "Displays the current leaderboard for Wordle!"},
	{
		Name:        "addquote",
		Description: "Adds a quote to the bot",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "quote_text", Description: "The quote that was said", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "author", Description: "Who said it?", Required: true},
		},
	},
	{
		Name:        "quote",
		Description: "Displays a saved quote",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "author", Description: "(Optional): Get a quote from a specific person!"},
		},
	},
}

// invocation is a slash command stripped of discordgo types.
type invocation struct {
	Name      string
	GuildID   string
	ChannelID string
	UserID    string
	Options   map[string]string
}

// reply is what a command answers with.
type reply struct {
	Content   string
	Embed     *discordgo.MessageEmbed
	Ephemeral bool
}

// quoteStore is the subset of quotes.Store commands use.
type quoteStore interface {
	Add(ctx context.Context, submitterID, author, text string) (quotes.Quote, error)
	Random(ctx context.Context, author string) (quotes.Quote, error)
}

// commands executes slash commands.
type commands struct {
	game        *wordle.Service
	quotes      quoteStore
	embedTitle  string
	channelName string
	latency     func() int64 // milliseconds
}

func (c *commands) embed(m wordle.Message) *discordgo.MessageEmbed {
	color := colorGreen
	if m.Tone == wordle.ToneFailure {
		color = colorRed
	}
	return &discordgo.MessageEmbed{Title: c.embedTitle, Description: m.Text, Color: color}
}

func (c *commands) failure(text string) reply {
	return reply{Embed: c.embed(wordle.Message{Text: text, Tone: wordle.ToneFailure}), Ephemeral: true}
}

func (c *commands) run(ctx context.Context, inv invocation) reply {
	switch inv.Name {
	case "help":
		return reply{Content: fmt.Sprintf(helpText, c.channelName), Ephemeral: true}
	case "ping":
		return reply{Content: fmt.Sprintf("Pong! %dms", c.latency()), Ephemeral: true}
	case "grass":
		return reply{Content: "REMINDER: Touch grass."}
	case "water":
		return reply{Content: "REMINDER: Drink water."}
	case "wordle":
		return c.wordle(ctx, inv)
	case "leaderboard":
		return c.leaderboard(inv)
	case "addquote":
		return c.addQuote(ctx, inv)
	case "quote":
		return c.quote(ctx, inv)
	}
	log.Warn().Str("command", inv.Name).Msg("unknown command")
	return reply{Content: "Unknown command.", Ephemeral: true}
}

func (c *commands) wordle(ctx context.Context, inv invocation) reply {
	res := c.game.StartGame(ctx, inv.GuildID, inv.ChannelID)
	switch res.Kind {
	case wordle.StartWrongChannel:
		return c.failure(fmt.Sprintf("Please use the <#%s> channel to start a game!", res.GameChannelID))
	case wordle.StartChannelNotConfigured:
		return c.failure(c.notConfigured("play"))
	case wordle.StartAlreadyRunning, wordle.StartFailed:
		return reply{Embed: c.embed(res.Message), Ephemeral: true}
	}
	return reply{Embed: c.embed(res.Message)}
}

func (c *commands) leaderboard(inv invocation) reply {
	g := c.game.Gate(inv.GuildID, inv.ChannelID)
	switch g.Kind {
	case wordle.GateWrongChannel:
		return c.failure(fmt.Sprintf("Please use the <#%s> channel to display the leaderboard!", g.GameChannelID))
	case wordle.GateNotConfigured:
		return c.failure(c.notConfigured("play and use the leaderboard"))
	}
	text := render.Leaderboard(c.game.LeaderboardView())
	return reply{Embed: c.embed(wordle.Message{Text: text})}
}

func (c *commands) notConfigured(what string) string {
	return fmt.Sprintf("#%s not found! Please ensure you have a #%s text channel setup to %s!", c.channelName, c.channelName, what)
}

func (c *commands) addQuote(ctx context.Context, inv invocation) reply {
	text := strings.TrimSpace(inv.Options["quote_text"])
	if text == "" {
		return reply{Content: "A quote needs some text.", Ephemeral: true}
	}
	q, err := c.quotes.Add(ctx, inv.UserID, inv.Options["author"], text)
	if err != nil {
		log.Error().Err(err).Msg("add quote")
		return reply{Content: "Could not save that quote.", Ephemeral: true}
	}
	return reply{Content: fmt.Sprintf("Quote added: %s - %s", q.Text, q.Author), Ephemeral: true}
}

func (c *commands) quote(ctx context.Context, inv invocation) reply {
	author := inv.Options["author"]
	q, err := c.quotes.Random(ctx, author)
	switch {
	case errors.Is(err, quotes.ErrNoQuotes) && strings.TrimSpace(author) != "":
		return reply{Content: fmt.Sprintf("No quotes found for %s.", author), Ephemeral: true}
	case errors.Is(err, quotes.ErrNoQuotes):
		return reply{Content: "No quotes found.", Ephemeral: true}
	case err != nil:
		log.Error().Err(err).Msg("random quote")
		return reply{Content: "Could not load a quote.", Ephemeral: true}
	}
	return reply{Content: fmt.Sprintf("%s - %s\nSubmitted by <@%s>", q.Text, q.Author, q.SubmitterID)}
}
