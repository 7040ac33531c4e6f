package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/fir-api/config"
	"github.com/linesmerrill/fir-api/models"
)

const (
	// tokenCacheTTL bounds how long a verified token is served from cache.
	// Expiry is still checked on every request.
	tokenCacheTTL = 10 * time.Minute

	tokenCookie = "access_token_cookie"
	tokenQuery  = "access_token"

	extStationID = "station_id"
	extExpiry    = "exp"
)

// MiddlewareAuth verifies bearer tokens and puts the caller identity on the request context
type MiddlewareAuth struct {
	Secret []byte

	authenticator auth.Authenticator
	now           func() time.Time
}

// NewMiddlewareAuth creates the auth middleware for the given HS256 secret
func NewMiddlewareAuth(secret string) *MiddlewareAuth {
	m := &MiddlewareAuth{Secret: []byte(secret), now: time.Now}
	m.SetupGoGuardian()
	return m
}

// SetupGoGuardian sets up the go-guardian cached bearer strategy
func (m *MiddlewareAuth) SetupGoGuardian() {
	m.authenticator = auth.New()
	cache := store.NewFIFO(context.Background(), tokenCacheTTL)
	tokenStrategy := bearer.New(m.ValidateToken, cache)
	m.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateToken is the go-guardian authenticate func for tokens missing from the cache
func (m *MiddlewareAuth) ValidateToken(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	claims, err := ParseToken(m.Secret, token)
	if err != nil {
		return nil, err
	}
	ext := map[string][]string{
		extStationID: {claims.StationID},
		extExpiry:    {strconv.FormatInt(claims.ExpiresAt.Unix(), 10)},
	}
	return auth.NewDefaultUser(claims.Subject, claims.Subject, []string{claims.Role}, ext), nil
}

// Middleware rejects requests without a valid token and passes the identity on
func (m *MiddlewareAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		promoteToken(r)

		info, err := m.authenticator.Authenticate(r)
		if err != nil {
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		identity, err := m.identity(info)
		if err != nil {
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		zap.S().Debugw("user authenticated", "userId", identity.UserID, "role", identity.Role)
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// identity converts a cached auth.Info back into an Identity, refusing tokens
// that expired while cached
func (m *MiddlewareAuth) identity(info auth.Info) (models.Identity, error) {
	ext := info.Extensions()
	exp, err := strconv.ParseInt(first(ext[extExpiry]), 10, 64)
	if err != nil {
		return models.Identity{}, errors.New("token has no expiry")
	}
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	if !now().Before(time.Unix(exp, 0)) {
		return models.Identity{}, errors.New("token is expired")
	}
	return models.Identity{
		UserID:    info.ID(),
		Role:      first(info.Groups()),
		StationID: first(ext[extStationID]),
	}, nil
}

// promoteToken lets browsers and websocket clients send the token as a cookie
// or query parameter instead of the Authorization header
func promoteToken(r *http.Request) {
	if r.Header.Get("Authorization") != "" {
		return
	}
	if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
		r.Header.Set("Authorization", "Bearer "+c.Value)
		return
	}
	if t := r.URL.Query().Get(tokenQuery); t != "" {
		r.Header.Set("Authorization", "Bearer "+t)
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
