package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/smitebot/internal/config"
	"github.com/robalobadob/smitebot/internal/database"
	"github.com/robalobadob/smitebot/internal/discord"
	"github.com/robalobadob/smitebot/internal/history"
	"github.com/robalobadob/smitebot/internal/httpserver"
	"github.com/robalobadob/smitebot/internal/leaderboard"
	"github.com/robalobadob/smitebot/internal/quotes"
	"github.com/robalobadob/smitebot/internal/render"
	"github.com/robalobadob/smitebot/internal/schedule"
	"github.com/robalobadob/smitebot/internal/wordle"
	"github.com/robalobadob/smitebot/internal/words"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "smitebot",
	Short: "smitebot: Smite Night Discord bot (quotes, reminders, Wordle)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		setupLogging(cfg)
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and serve the ops API",
	RunE:  runServe,
}

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Show word list statistics for the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := words.Load(cfg.AnswersFile, cfg.ValidFile)
		a, v := w.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "answers: %d\nvalid:   %d\nfallback: %v\n", a, v, w.Fallback())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(wordsCmd)
}

func setupLogging(c config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}

	wl := words.Load(cfg.AnswersFile, cfg.ValidFile)
	a, v := wl.Stats()
	log.Info().Int("answers", a).Int("valid", v).Bool("fallback", wl.Fallback()).Msg("word lists loaded")

	db, err := database.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	quoteStore := quotes.NewStore(db)
	games := history.NewStore(db)

	bot, err := discord.New(discord.Config{
		Token:          cfg.DiscordToken,
		EmbedTitle:     cfg.EmbedTitle,
		GameChannel:    cfg.WordleChannel,
		WelcomeChannel: cfg.WelcomeChannel,
	}, quoteStore)
	if err != nil {
		return err
	}

	svc := wordle.New(wordle.Deps{
		Words:    wl,
		Board:    leaderboard.New(),
		Channels: bot.Resolver(),
		Sink:     bot.Sink(),
		Renderer: render.New(render.DiscordGlyphs),
		Recorder: games,
		Duration: cfg.GameDuration,
	})
	bot.Attach(svc)

	sched, err := schedule.New(cfg.ResetSchedule, cfg.ResetTimezone, svc)
	if err != nil {
		return err
	}
	sched.Start()
	log.Info().Time("next", sched.Next()).Msg("leaderboard reset scheduled")

	var srv *httpserver.Server
	if cfg.HTTPAddr != "" {
		opts := httpserver.Options{
			JWTSecret:         cfg.JWTSecret,
			AdminPasswordHash: cfg.AdminPasswordHash,
		}
		if err := opts.Validate(); err != nil {
			return fmt.Errorf("ops api: %w", err)
		}
		if cfg.AdminPasswordHash == "" {
			log.Info().Msg("ADMIN_PASSWORD_HASH unset, admin routes disabled")
		}
		srv = httpserver.New(svc, games, wl, opts)
		go func() {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("starting ops api")
			if err := srv.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("ops api exited")
			}
		}()
	}

	if err := bot.Open(); err != nil {
		return err
	}
	log.Info().Str("channel", cfg.WordleChannel).Dur("duration", cfg.GameDuration).Msg("smitebot online")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := bot.Close(); err != nil {
		log.Warn().Err(err).Msg("discord close")
	}
	sched.Stop(shutdownCtx)
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("ops api shutdown")
		}
	}
	return nil
}
