package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/wuffchat/wuffchat-cli/pkg/utils"
)

// RequireAPIKey gates requests on the X-API-Key header. An empty expected
// key disables the check. A wrong key is a 403, not a 401 -- the client
// reserves 401 for session expiry.
func RequireAPIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				utils.RespondError(w, http.StatusForbidden, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
