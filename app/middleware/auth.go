package middleware

import (
	"net/http"

	"github.com/goccy/go-json"

	"feedapp/app/auth"
	"feedapp/app/logging"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Authenticate attaches the caller's identity when a valid bearer token is
// present. Requests without an Authorization header pass through as
// anonymous; a present but invalid token is rejected.
func Authenticate(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := auth.BearerToken(header)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			claims, err := v.ValidateToken(token)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
				writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				UserID:   claims.Subject,
				Username: claims.Username,
			})
			ctx = logging.ContextWithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Warn().Err(err).Msg("failed to write error response")
	}
}
