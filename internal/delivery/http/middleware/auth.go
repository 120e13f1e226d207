package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/pkg/clients/identity"
	"github.com/tumbleweedd/workspace_system/pkg/logger"
)

type callerKey struct{}

type identityClient interface {
	UserByToken(ctx context.Context, token string) (*identity.User, error)
}

// Auth resolves the bearer token against the identity service and stores the
// caller's uuid in the request context. Fine-grained permission checks stay
// in the services; this only establishes who is calling.
func Auth(log logger.Logger, client identityClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "delivery.http.middleware.Auth"

			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			user, err := client.UserByToken(r.Context(), token)
			if err != nil {
				log.Warn(op, logger.Err(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			callerUUID, err := uuid.Parse(user.UUID)
			if err != nil {
				log.Error(op, logger.Err(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, callerUUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerUUID returns the authenticated caller stored by Auth.
func CallerUUID(ctx context.Context) (uuid.UUID, bool) {
	callerUUID, ok := ctx.Value(callerKey{}).(uuid.UUID)
	return callerUUID, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}

	return token
}
