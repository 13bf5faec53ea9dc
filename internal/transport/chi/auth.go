package chi

import (
	"crypto/subtle"
	"net/http"
)

// BasicAuthMiddleware returns a middleware that validates HTTP Basic
// credentials against the configured user map. An empty map disables
// authentication (pass-through). Applied per route group; public routes
// never see it.
func BasicAuthMiddleware(users map[string]string) func(http.Handler) http.Handler {
	valid := make(map[string]string, len(users))
	for user, pass := range users {
		if user != "" && pass != "" {
			valid[user] = pass
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled -- pass everything through
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				challenge(w, "missing credentials")
				return
			}

			want, exists := valid[user]
			if !exists || subtle.ConstantTimeCompare([]byte(pass), []byte(want)) != 1 {
				challenge(w, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func challenge(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="recipedex"`)
	writeError(w, http.StatusUnauthorized, msg)
}
