package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "eventsapi/internal/delivery/http/helpers"
	"eventsapi/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// bearerPrefix is matched literally at the start of the Authorization header.
const bearerPrefix = "Bearer"

// Response messages for authentication and authorization failures.
const (
	MsgNoToken         = "Not authorized, no token"
	MsgTokenFailed     = "Not authorized, token failed"
	MsgGuestsForbidden = "Guests cannot create or modify events"
)

// SetIdentity returns a context with the caller identity set. Used by auth middleware.
func SetIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated caller from the context, if present.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*domain.Identity)
	return id, ok && id != nil
}

// BearerToken extracts the credential from an Authorization header value.
// It returns domain.ErrAuthMissing when the header is empty or does not start with "Bearer".
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", domain.ErrAuthMissing
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), nil
}

// RequireAuth returns a middleware that validates the Bearer token and sets the caller identity
// in the request context. If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, MsgNoToken)
				return
			}
			identity, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, MsgTokenFailed)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), identity)))
		})
	}
}

// RequireEventEditor rejects callers that may not mutate events with 403.
// It must run after RequireAuth.
func RequireEventEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		if err := domain.AuthorizeEventMutation(identity); err != nil {
			if errors.Is(err, domain.ErrPermissionDenied) {
				h.WriteJSONError(w, http.StatusForbidden, MsgGuestsForbidden)
				return
			}
			h.WriteJSONServerError(w, "Server Error", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
