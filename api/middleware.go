package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/config"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

var (
	errTokenRevoked = errors.New("token has been revoked")
	errTokenExpired = errors.New("token has expired")
)

type sessionClaims struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues signed session tokens and checks them on every request.
// Verified tokens are cached by the go-guardian bearer strategy, revoked token ids
// are remembered until the token would have expired anyway.
type Authenticator struct {
	authenticator auth.Authenticator
	strategy      auth.Strategy
	revoked       store.Cache
	secret        []byte
	ttl           time.Duration
	now           func() time.Time
}

// NewAuthenticator builds the bearer strategy around a HS256 secret
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	a := &Authenticator{
		revoked: store.NewFIFO(context.Background(), ttl),
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
	a.strategy = bearer.New(a.verify, store.NewFIFO(context.Background(), ttl))
	a.authenticator = auth.New()
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, a.strategy)
	return a, nil
}

// Issue signs a token carrying the identity. It satisfies services.SessionManager.
func (a *Authenticator) Issue(identity models.Identity) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := sessionClaims{
		Email:    identity.Email,
		Username: identity.Username,
		Name:     identity.Name,
		Role:     string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Revoke drops the token from the cache and blocks its id until expiry
func (a *Authenticator) Revoke(token string) error {
	claims, err := a.parse(token)
	if err != nil {
		// an expired or foreign token is already unusable
		return nil
	}
	if err := a.revoked.Store(claims.ID, true, nil); err != nil {
		return err
	}
	return auth.Revoke(a.strategy, token, nil)
}

func (a *Authenticator) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (a *Authenticator) verify(_ context.Context, r *http.Request, token string) (auth.Info, error) {
	claims, err := a.parse(token)
	if err != nil {
		return nil, err
	}
	if _, ok, _ := a.revoked.Load(claims.ID, r); ok {
		return nil, errTokenRevoked
	}
	return auth.NewDefaultUser(claims.Email, claims.Subject, []string{claims.Role}, map[string][]string{
		"username": {claims.Username},
		"name":     {claims.Name},
		"exp":      {strconv.FormatInt(claims.ExpiresAt.Unix(), 10)},
	}), nil
}

// identityFromInfo maps the cached user info back to an identity. Cached entries
// can outlive the token, so the expiry is checked again here.
func (a *Authenticator) identityFromInfo(info auth.Info) (models.Identity, error) {
	ext := info.Extensions()
	if exp, err := strconv.ParseInt(first(ext["exp"]), 10, 64); err != nil || a.now().Unix() >= exp {
		return models.Identity{}, errTokenExpired
	}
	identity := models.Identity{
		ID:       info.ID(),
		Email:    info.UserName(),
		Username: first(ext["username"]),
		Name:     first(ext["name"]),
		Role:     models.Role(first(info.Groups())),
	}
	return identity, nil
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Authenticate resolves the bearer token on r
func (a *Authenticator) Authenticate(r *http.Request) (models.Identity, error) {
	info, err := a.authenticator.Authenticate(r)
	if err != nil {
		return models.Identity{}, err
	}
	return a.identityFromInfo(info)
}

// Middleware rejects requests without a valid session and puts the identity on the context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		identity, err := a.Authenticate(r)
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
			config.ErrorStatus(mapper.MsgSessionExpired, http.StatusUnauthorized, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin must be chained after Middleware
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok || !identity.IsAdmin() {
			config.ErrorStatus("admin access required", http.StatusForbidden, w, fmt.Errorf("role %q", identity.Role))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the raw token from the Authorization header, falling back
// to the token query parameter used by browser websocket clients
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// AuthenticateToken verifies a raw token without going through the request cache
func (a *Authenticator) AuthenticateToken(token string) (models.Identity, error) {
	info, err := a.verify(context.Background(), nil, token)
	if err != nil {
		return models.Identity{}, err
	}
	return a.identityFromInfo(info)
}
