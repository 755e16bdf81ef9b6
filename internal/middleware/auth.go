// Package middleware provides HTTP middlewares for session authentication,
// request logging, and reveal throttling.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionAuth resolves an optional caller identity from a bearer session
// token.
//
// The token is an HS256 JWT whose subject claim carries the user id,
// issued by the identity layer in front of this service. A missing or
// invalid token does not fail the request: creation and reveal are open
// to anonymous callers, and handlers that need an identity check the
// context themselves.
func SessionAuth(key []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context. Returns an empty string for anonymous callers.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
