package middleware

import (
	"net/http"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/pkg/logger"
)

// UserContext tags the request logger with the authenticated user, when the
// session middleware has placed one in the context.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := internal.UserIDFromContext(r.Context())
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
