package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/smitebot/internal/history"
	"github.com/robalobadob/smitebot/internal/leaderboard"
	"github.com/robalobadob/smitebot/internal/words"
)

type fakeGame struct {
	board  *leaderboard.Board
	active int
	resets int
}

func (f *fakeGame) LeaderboardView() []leaderboard.Entry { return f.board.Rank() }
func (f *fakeGame) ResetLeaderboard()                    { f.resets++; f.board.Reset() }
func (f *fakeGame) ActiveGames() int                     { return f.active }

type fakeRecent []history.Game

func (f fakeRecent) Recent(_ context.Context, channelID string, _ int) ([]history.Game, error) {
	var out []history.Game
	for _, g := range f {
		if channelID == "" || g.ChannelID == channelID {
			out = append(out, g)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *fakeGame) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	g := &fakeGame{board: leaderboard.New(), active: 2}
	require.NoError(t, g.board.Add("<@1>", 4))
	require.NoError(t, g.board.Add("<@2>", 7))

	recent := fakeRecent{{ID: "a", ChannelID: "c1"}, {ID: "b", ChannelID: "c2"}}
	srv := New(g, recent, words.FromLists([]string{"crane"}, []string{"slate"}), Options{
		JWTSecret:         "test-secret",
		AdminPasswordHash: string(hash),
		RateLimit:         1000,
		RateBurst:         1000,
	})
	return srv, g
}

func do(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_PublicEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/leaderboard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []leaderboard.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Equal(t, []leaderboard.Entry{{PlayerID: "<@2>", Score: 7}, {PlayerID: "<@1>", Score: 4}}, rows)

	rec = do(t, srv, http.MethodGet, "/games/active", "", "")
	assert.JSONEq(t, `{"active":2}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/games/recent?channel=c2", "", "")
	var games []history.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "b", games[0].ID)

	rec = do(t, srv, http.MethodGet, "/debug/words", "", "")
	assert.JSONEq(t, `{"answers":1,"valid":2,"fallback":false}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ResetRequiresAdmin(t *testing.T) {
	srv, g := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/leaderboard/reset", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/leaderboard/reset", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/auth/token", `{"password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/auth/token", `{"password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tok tokenRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	rec = do(t, srv, http.MethodPost, "/leaderboard/reset", "", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, g.resets)
	assert.Empty(t, g.board.Rank())
}

func TestServer_RateLimit(t *testing.T) {
	g := &fakeGame{board: leaderboard.New()}
	srv := New(g, nil, words.FromLists([]string{"crane"}, nil), Options{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, srv, http.MethodGet, "/health", "", "").Code)
}

func signed(t *testing.T, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   adminSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestServer_AdminDisabledWithoutPassword(t *testing.T) {
	g := &fakeGame{board: leaderboard.New()}
	require.NoError(t, g.board.Add("<@1>", 3))
	srv := New(g, nil, words.FromLists([]string{"crane"}, nil), Options{
		JWTSecret: "dev_secret_change_me",
		RateLimit: 1000,
		RateBurst: 1000,
	})

	rec := do(t, srv, http.MethodPost, "/leaderboard/reset", "", signed(t, "dev_secret_change_me"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, g.resets)
	assert.Len(t, g.board.Rank(), 1)

	rec = do(t, srv, http.MethodPost, "/auth/token", `{"password":""}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ForeignSecretRejected(t *testing.T) {
	srv, g := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/leaderboard/reset", "", signed(t, "some-other-secret"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, g.resets)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"admin off", Options{}, true},
		{"admin off with secret", Options{JWTSecret: "dev_secret_change_me"}, true},
		{"no secret", Options{AdminPasswordHash: "$2a$hash"}, false},
		{"placeholder", Options{AdminPasswordHash: "$2a$hash", JWTSecret: "dev_secret_change_me"}, false},
		{"short", Options{AdminPasswordHash: "$2a$hash", JWTSecret: "tiny"}, false},
		{"good", Options{AdminPasswordHash: "$2a$hash", JWTSecret: "0123456789abcdef0123"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakSecret)
			}
		})
	}
}
