// Package middleware provides reusable HTTP middleware for the Wayfarer API.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

type ctxKey int

const identityKey ctxKey = iota

// NewAuthenticator returns a middleware that requires a valid HMAC-signed
// bearer token on every request. The token's "sub" claim carries the user id
// and the "email" claim the account email used for invite matching. Token
// issuance lives in the separate auth service; this middleware only verifies.
//
// Requests without a valid token are rejected with 401 before reaching the
// handler.
func NewAuthenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			sub, err := claims.GetSubject()
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			email, _ := claims["email"].(string)

			identity := domain.Identity{UserID: userID, Email: email}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a context carrying the authenticated identity.
// Exported so handler tests can inject an identity without minting tokens.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the authenticated identity placed in the context by
// NewAuthenticator.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}
