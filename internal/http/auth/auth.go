// Package auth attaches the calling staff member to the request context.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/http/api"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// Claims is the token payload issued by the clinic's auth service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errNoToken = errors.New("missing bearer token")

// Middleware identifies the actor of each request. With a secret, an HS256
// bearer token is required and its sub and role claims name the actor.
// Without one, the X-Actor-ID and X-Actor-Role headers are trusted; that mode
// is meant for a deployment behind an authenticating proxy.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				a   actor.Actor
				err error
			)

			if secret != "" {
				a, err = fromToken(r, secret)
			} else {
				a = fromHeaders(r)
			}

			if err != nil {
				api.JSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
				return
			}

			if a.ID != "" {
				r = r.WithContext(actor.WithContext(r.Context(), a))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func fromHeaders(r *http.Request) actor.Actor {
	return actor.Actor{
		ID:   strings.TrimSpace(r.Header.Get(HeaderActorID)),
		Role: actor.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole)))),
	}
}

func fromToken(r *http.Request, secret string) (actor.Actor, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return actor.Actor{}, errNoToken
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return actor.Actor{}, err
	}

	a := actor.Actor{ID: claims.Subject, Role: actor.Role(claims.Role)}
	if err := a.Validate(); err != nil {
		return actor.Actor{}, err
	}

	return a, nil
}
