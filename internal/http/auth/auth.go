// Package auth verifies bearer tokens issued by an external identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/pocket/internal/http/render"
)

var ErrMissingToken = errors.New("missing bearer token")

type subjectKey struct{}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses raw and returns the token subject.
func (v *Verifier) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	return claims.Subject, nil
}

// Middleware rejects requests without a valid token. Websocket clients cannot
// set headers, so the token may also arrive as the access_token query parameter.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFrom(r)
		if raw == "" {
			render.JSON(w, http.StatusUnauthorized, map[string]string{"error": ErrMissingToken.Error()})
			return
		}

		sub, err := v.Verify(raw)
		if err != nil {
			slog.WarnContext(r.Context(), "rejected token", "path", r.URL.Path, "error", err)
			render.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, sub)))
	})
}

// Subject returns the subject of the verified token, if any.
func Subject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey{}).(string)
	return sub, ok
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}

		return ""
	}

	return r.URL.Query().Get("access_token")
}
