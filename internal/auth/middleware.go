package auth

import (
	"context"
	"net/http"
	"strings"

	"mediabank/internal/constants"
	"mediabank/internal/logger"
)

type contextKey int

const (
	claimsContextKey contextKey = iota
	tokenRejectedContextKey
)

// Middleware resolves session tokens into claims on the request context.
type Middleware struct {
	issuer *TokenIssuer
	logger *logger.Logger
}

func NewMiddleware(issuer *TokenIssuer, log *logger.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: log}
}

// Authenticate extracts and validates the session token. It always calls
// next — handlers decide whether their endpoint requires auth. A token
// that was presented but failed validation is flagged on the context so
// the handler can distinguish "invalid token" from "no token".
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.issuer.Validate(token)
		if err != nil {
			m.logger.Debug("Auth: rejected token on %s %s: %v", r.Method, r.URL.Path, err)
			ctx := context.WithValue(r.Context(), tokenRejectedContextKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken reads the bearer header, falling back to the token query
// parameter for browser-initiated downloads that cannot set headers.
func extractToken(r *http.Request) string {
	header := r.Header.Get(constants.HeaderAuthorization)
	if strings.HasPrefix(header, constants.AuthBearerPrefix) {
		return strings.TrimPrefix(header, constants.AuthBearerPrefix)
	}
	return r.URL.Query().Get(constants.AuthQueryParamToken)
}

// GetClaims returns the authenticated claims from the context, or nil.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// TokenWasRejected reports whether a token was presented but failed
// validation.
func TokenWasRejected(ctx context.Context) bool {
	rejected, _ := ctx.Value(tokenRejectedContextKey).(bool)
	return rejected
}
