package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/cardbook/cardbook/internal/common"
)

type contextKey string

const userIDKey contextKey = "userID"

// sampleUserID is the owner injected when no backend is configured; it
// matches the owner of the built-in sample cards.
const sampleUserID = "mock-user"

// authenticated checks the bearer token and stores the account id in the
// request context. Without a configured backend the check is skipped and
// the sample owner is injected, so the client works unauthenticated.
func (a *API) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.sessions.Configured() {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, sampleUserID)))
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrorUnauthorized)
			return
		}

		userID, err := a.sessions.UserIDFromToken(token)
		if err != nil {
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
