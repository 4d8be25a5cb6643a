package middleware

import (
	"context"
	"net/http"
	"time"

	"prepline/internal/model"
	"prepline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SessionCookie is the cookie carrying the session token. A bearer token in
// X-Session-Token works too, for clients that cannot hold cookies.
const SessionCookie = "prepline_session"

// contextKey is the private type for request-context values.
type contextKey int

const userKey contextKey = iota

// UserFromContext returns the authenticated user attached by SessionAuth,
// or nil when the request is anonymous.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// CORS adds CORS headers to the response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Session-Token")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionAuth resolves the session token and attaches the user to the
// request context. Requests without a valid session are rejected.
func SessionAuth(auth service.AuthService, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				token = cookie.Value
			}
			if token == "" {
				token = r.Header.Get("X-Session-Token")
			}

			if token == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing session token")
				http.Error(w, "unauthorised: login required", http.StatusUnauthorized)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Msg("invalid session token")
				http.Error(w, "unauthorised: login required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on a fixed page permission. Must run
// inside SessionAuth.
func RequirePermission(auth service.AuthService, page string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return requirePage(auth, logger, func(r *http.Request) string { return page })
}

// RequireDashboardPermission gates a dashboard route on the permission
// derived from its {category} URL parameter.
func RequireDashboardPermission(auth service.AuthService, logger zerolog.Logger) func(http.Handler) http.Handler {
	return requirePage(auth, logger, func(r *http.Request) string {
		return model.DashboardPage(chi.URLParam(r, "category"))
	})
}

func requirePage(auth service.AuthService, logger zerolog.Logger, page func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				http.Error(w, "unauthorised: login required", http.StatusUnauthorized)
				return
			}

			if err := auth.Authorize(r.Context(), user, page(r)); err != nil {
				logger.Warn().
					Str("username", user.Username).
					Str("path", r.URL.Path).
					Msg("access denied")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error": "internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
