// Package config reads smitebot settings from the environment.
// A .env file, if present, is loaded first (see Load).
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DiscordToken string

	WordleChannel  string        // channel name games are restricted to
	EmbedTitle     string        // title on every Wordle embed
	GameDuration   time.Duration // zero means attempt-based games
	AnswersFile    string
	ValidFile      string
	WelcomeChannel string

	DBPath   string
	HTTPAddr string // empty disables the ops API

	JWTSecret         string // no default; admin stays off without it
	AdminPasswordHash string // bcrypt hash; empty disables /auth/token

	ResetSchedule string // cron spec for the weekly leaderboard reset
	ResetTimezone string

	LogLevel  string
	LogPretty bool
}

// Load reads .env (if any) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() Config {
	return Config{
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		WordleChannel:     getEnv("WORDLE_CHANNEL", "wordle"),
		EmbedTitle:        getEnv("WORDLE_EMBED_TITLE", "Wordle! (Beta)"),
		GameDuration:      time.Duration(getEnvInt("WORDLE_DURATION", 300)) * time.Second,
		AnswersFile:       os.Getenv("WORDS_ANSWERS_FILE"),
		ValidFile:         os.Getenv("WORDS_ALLOWED_FILE"),
		WelcomeChannel:    getEnv("WELCOME_CHANNEL", "welcome"),
		DBPath:            getEnv("DB_PATH", "./data/smitebot.db"),
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		ResetSchedule:     getEnv("LEADERBOARD_RESET_CRON", "0 12 * * SUN"),
		ResetTimezone:     getEnv("LEADERBOARD_TZ", "America/Chicago"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPretty:         os.Getenv("LOG_PRETTY") == "1",
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid integer, using default")
		return def
	}
	return n
}
