// Package session implements cookie-backed login sessions: a signed JWT
// carried by the browser plus a Redis record that makes logout effective
// immediately. Resolution is a tagged result so callers can tell "no
// session" apart from "the session backend is down".
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "pl_session"

type State int

const (
	Authenticated State = iota
	Unauthenticated
	ProviderError
)

type Session struct {
	ID        string
	AccountID string
	Email     string
}

// Resolution is the outcome of resolving a session token.
// Session is non-nil only when State is Authenticated; Err is non-nil only
// when State is ProviderError.
type Resolution struct {
	State   State
	Session *Session
	Err     error
}

// Resolver is the read side consumed by the access gate.
type Resolver interface {
	Resolve(ctx context.Context, token string) Resolution
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Manager struct {
	rdb    *redis.Client
	secret string
	ttl    time.Duration
}

func NewManager(rdb *redis.Client, secret string, ttl time.Duration) *Manager {
	return &Manager{
		rdb:    rdb,
		secret: secret,
		ttl:    ttl,
	}
}

func sessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// Issue creates a session for the account and returns the signed token.
func (m *Manager) Issue(ctx context.Context, accountID, email string) (string, error) {
	jti := uuid.NewString()

	token, err := makeToken(m.secret, jti, accountID, email, m.ttl)
	if err != nil {
		return "", err
	}

	if err := m.rdb.Set(ctx, sessionKey(jti), accountID, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Resolve classifies a token into Authenticated, Unauthenticated or
// ProviderError. A malformed or expired token is Unauthenticated; only a
// failure to reach the session store is a ProviderError.
func (m *Manager) Resolve(ctx context.Context, token string) Resolution {
	if token == "" {
		return Resolution{State: Unauthenticated}
	}

	claims, err := parseToken(m.secret, token)
	if err != nil {
		return Resolution{State: Unauthenticated}
	}

	_, err = m.rdb.Get(ctx, sessionKey(claims.ID)).Result()
	if errors.Is(err, redis.Nil) {
		// logged out or expired server-side
		return Resolution{State: Unauthenticated}
	}
	if err != nil {
		return Resolution{State: ProviderError, Err: err}
	}

	return Resolution{
		State: Authenticated,
		Session: &Session{
			ID:        claims.ID,
			AccountID: claims.Subject,
			Email:     claims.Email,
		},
	}
}

// Destroy removes the server-side session record. The cookie itself is
// cleared by the handler.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	claims, err := parseToken(m.secret, token)
	if err != nil {
		// nothing to destroy for a token we no longer accept
		return nil
	}

	return m.rdb.Del(ctx, sessionKey(claims.ID)).Err()
}

// TTL reports the configured session lifetime; used for the cookie max-age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func makeToken(secret, jti, accountID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(secret, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
