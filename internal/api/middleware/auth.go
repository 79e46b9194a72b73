package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasktrack/tasktrack/internal/api/response"
	"github.com/tasktrack/tasktrack/internal/domain"
)

type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "userID"
	// TokenQueryParam carries the token for websocket upgrades, where
	// browsers cannot set headers.
	TokenQueryParam = "token"
)

// Auth requires a valid HS256 bearer token in the Authorization header and
// stores its subject as the user ID.
func Auth(secret string) func(http.Handler) http.Handler {
	return authenticate([]byte(secret), bearerToken)
}

// UpgradeAuth is Auth for websocket upgrades: without an Authorization
// header it reads the token from the TokenQueryParam query parameter.
func UpgradeAuth(secret string) func(http.Handler) http.Handler {
	return authenticate([]byte(secret), func(r *http.Request) string {
		if r.Header.Get("Authorization") != "" {
			return bearerToken(r)
		}
		return r.URL.Query().Get(TokenQueryParam)
	})
}

func authenticate(key []byte, token func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := token(r)
			if raw == "" {
				response.Error(w, domain.NewUnauthorizedError())
				return
			}

			userID, err := ParseToken(key, raw)
			if err != nil {
				response.Error(w, domain.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// ParseToken verifies the signature and expiry and returns the subject.
func ParseToken(secret []byte, raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// NewToken signs an HS256 token for userID. A zero ttl issues a token
// without expiry.
func NewToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GetUserID retrieves the authenticated user ID from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID returns a context carrying userID, as Auth would set it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
