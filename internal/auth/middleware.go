package auth

import (
	"context"
	"net/http"
	"time"
)

// CookieName is the cookie that carries the session token.
const CookieName = "session"

// contextKey is unexported so no other package can read or overwrite our value.
type contextKey string

const usernameKey contextKey = "username"

// Session is a middleware that resolves the session cookie into a username.
//
// It never blocks a request: the watchlist endpoints are open (a username in
// the path is trusted as-is), and only /me and /logout care whether a
// session exists. Handlers ask via UsernameFromContext.
func Session(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
				if username, err := tokens.Validate(cookie.Value); err == nil {
					r = r.WithContext(WithUsername(r.Context(), username))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUsername returns a copy of ctx carrying username. Exported for handler tests.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext returns the logged-in username, or ("", false) for
// anonymous requests.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

// SetSessionCookie writes the token cookie with a Max-Age matching ttl.
//
// HttpOnly keeps the token away from page scripts; SameSite=Lax stops it
// riding along on cross-site POSTs. Secure is driven by config because local
// development runs over plain HTTP.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
