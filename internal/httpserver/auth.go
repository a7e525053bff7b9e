// internal/httpserver/auth.go
//
// Admin authentication for the ops API.
//   - POST /auth/token exchanges the admin password for an HS256 JWT.
//   - requireAdmin enforces a valid bearer token on gated routes.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

// minSecretLen is the shortest JWT_SECRET accepted when admin is enabled.
const minSecretLen = 16

// placeholderSecrets are sample values that must never sign real tokens.
var placeholderSecrets = map[string]bool{
	"dev_secret_change_me": true,
	"changeme":             true,
	"secret":               true,
}

var ErrWeakSecret = errors.New("JWT_SECRET must be set to a private value of at least 16 bytes when ADMIN_PASSWORD_HASH is set")

// Validate rejects option sets that would let anyone mint admin tokens.
func (o Options) Validate() error {
	if o.AdminPasswordHash == "" {
		return nil
	}
	if len(o.JWTSecret) < minSecretLen || placeholderSecrets[o.JWTSecret] {
		return ErrWeakSecret
	}
	return nil
}

// adminEnabled is true only when a password hash and a secret are both set.
func (o Options) adminEnabled() bool {
	return o.AdminPasswordHash != "" && o.JWTSecret != ""
}

type tokenReq struct {
	Password string `json:"password"`
}

type tokenRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleToken verifies the admin password and returns a signed token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.opts.adminEnabled() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "admin_disabled"})
		return
	}
	var body tokenReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	if !checkPassword(s.opts.AdminPasswordHash, body.Password) {
		log.Warn().Str("remote", r.RemoteAddr).Msg("admin login failed")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid password"})
		return
	}
	tok, exp, err := s.signJWT(adminSubject)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign_failed"})
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{Token: tok, ExpiresAt: exp})
}

// signJWT creates an HS256 JWT for sub that expires after opts.TokenTTL.
func (s *Server) signJWT(sub string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// requireAdmin enforces a valid admin JWT. With admin disabled every request
// is refused, whatever token it carries.
func (s *Server) requireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.opts.adminEnabled() {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "admin_disabled"})
				return
			}
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}
			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.opts.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid || claims.Subject != adminSubject {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
