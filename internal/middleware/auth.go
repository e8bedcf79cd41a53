package middleware

import (
	"net/http"
	"strings"

	reqctx "infinite-experiment/logbook/internal/context"
)

// UserIDHeader is set by the authenticating proxy in front of the service
const UserIDHeader = "X-User-Id"

// UserIDMiddleware trusts the upstream user id header and rejects requests
// without one
func UserIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			http.Error(w, "Unauthorized. Missing "+UserIDHeader, http.StatusUnauthorized)
			return
		}

		ctx := reqctx.SetUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
