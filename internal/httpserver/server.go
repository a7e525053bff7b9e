// internal/httpserver/server.go
//
// Ops HTTP API for the bot.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs, rate limit).
//   - Public endpoints: "/", "/health", "/leaderboard", "/games/active",
//     "/games/recent", "/debug/words".
//   - Admin endpoints (require a JWT from POST /auth/token):
//     POST /leaderboard/reset.
//
// Notes:
//   - The API is read-mostly; the only write is the manual leaderboard reset,
//     the same operation the weekly schedule performs.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/smitebot/internal/history"
	"github.com/robalobadob/smitebot/internal/leaderboard"
	"github.com/robalobadob/smitebot/internal/words"
)

// Game is the subset of the Wordle service the API needs.
type Game interface {
	LeaderboardView() []leaderboard.Entry
	ResetLeaderboard()
	ActiveGames() int
}

// Recent lists finished games.
type Recent interface {
	Recent(ctx context.Context, channelID string, limit int) ([]history.Game, error)
}

// Options configures a Server.
type Options struct {
	JWTSecret         string        // empty disables admin routes
	AdminPasswordHash string        // bcrypt; empty disables admin routes
	RateLimit         rate.Limit    // requests per second per server; 0 = 10
	RateBurst         int           // 0 = 20
	TokenTTL          time.Duration // 0 = 24h
}

// Server bundles router and the services it exposes.
type Server struct {
	r      *chi.Mux
	game   Game
	recent Recent
	words  *words.Set
	opts   Options
	http   *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(g Game, recent Recent, w *words.Set, opts Options) *Server {
	if opts.RateLimit == 0 {
		opts.RateLimit = 10
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 20
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), game: g, recent: recent, words: w, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(jsonContentType)                 // default JSON responses

	limiter := rate.NewLimiter(opts.RateLimit, opts.RateBurst)
	s.r.Use(rateLimit(limiter)) // shared token bucket

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"smitebot","endpoints":["/health","/leaderboard","/games/active","/games/recent","/debug/words","POST /auth/token","POST /leaderboard/reset"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, v := s.words.Stats()
		writeJSON(w, http.StatusOK, map[string]any{"answers": a, "valid": v, "fallback": s.words.Fallback()})
	})

	// --- game state ---
	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.r.Get("/games/active", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"active": s.game.ActiveGames()})
	})
	s.r.Get("/games/recent", s.handleRecent)

	// --- admin ---
	s.r.Post("/auth/token", s.handleToken)
	s.r.With(s.requireAdmin()).Post("/leaderboard/reset", func(w http.ResponseWriter, r *http.Request) {
		s.game.ResetLeaderboard()
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start begins serving HTTP on addr. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows := s.game.LeaderboardView()
	if rows == nil {
		rows = []leaderboard.Entry{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.recent == nil {
		writeJSON(w, http.StatusOK, []history.Game{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := s.recent.Recent(r.Context(), r.URL.Query().Get("channel"), limit)
	if err != nil {
		log.Error().Err(err).Msg("list recent games")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db_error"})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// rateLimit rejects requests once the shared bucket is empty.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limited"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
