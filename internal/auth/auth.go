// Package auth signs and checks the HS256 bearer tokens that bots and
// operators present on mutating routes.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/pkg/utilities"
)

var ErrDisabled = errors.New("auth: no signing secret configured")

// Tokens issues and verifies service tokens with a shared secret.
type Tokens struct {
	secret []byte
	issuer string
}

func NewTokens(secret, issuer string) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer}
}

// Enabled reports whether a secret is configured.
func (t *Tokens) Enabled() bool { return len(t.secret) > 0 }

// Issue signs a token for subject valid for ttl.
func (t *Tokens) Issue(subject string, ttl time.Duration) (string, error) {
	if !t.Enabled() {
		return "", ErrDisabled
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": t.issuer,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": utilities.NewKSUID(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature, issuer and expiry and returns the subject.
func (t *Tokens) Verify(token string) (string, error) {
	if !t.Enabled() {
		return "", ErrDisabled
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	return claims.GetSubject()
}

// Middleware rejects requests without a valid bearer token. With no secret
// configured every request passes.
func (t *Tokens) Middleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !t.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				apperror.Write(w, logger, apperror.NewUnauthorized("missing_token"))
				return
			}
			sub, err := t.Verify(strings.TrimSpace(h[len("bearer "):]))
			if err != nil {
				logger.Debugw("bearer token rejected", "err", err, "path", r.URL.Path)
				apperror.Write(w, logger, apperror.NewUnauthorized("invalid_token"))
				return
			}
			logger.Debugw("bearer token accepted", "sub", sub, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
