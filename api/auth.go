package api

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"
)

// TokenValidator verifies a Google ID token for organizer-only endpoints.
type TokenValidator interface {
	Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

type GoogleTokenValidator struct{}

func (GoogleTokenValidator) Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, token, audience)
}

func (a *API) requireOrganizer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := a.getLoggerOrBaseLogger(ctx)

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeJSONError(w, http.StatusUnauthorized, AuthError, "Missing bearer token")
			return
		}

		_, err := a.authValidator.Validate(ctx, token, a.googleClientID)
		if err != nil {
			logger.Warn("Rejected organizer token", "error", err)
			writeJSONError(w, http.StatusUnauthorized, AuthError, "Invalid token")
			return
		}

		next(w, r)
	}
}
