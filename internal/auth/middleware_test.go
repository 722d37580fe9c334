package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoUser writes the context username (or "anonymous") so tests can see
// what the middleware resolved.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if username, ok := UsernameFromContext(r.Context()); ok {
		w.Write([]byte(username))
		return
	}
	w.Write([]byte("anonymous"))
})

func TestSession(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)
	token, err := ts.Generate("alice")
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   string
	}{
		{name: "no cookie", cookie: nil, want: "anonymous"},
		{name: "valid cookie", cookie: &http.Cookie{Name: CookieName, Value: token}, want: "alice"},
		{name: "invalid cookie", cookie: &http.Cookie{Name: CookieName, Value: "bogus"}, want: "anonymous"},
		{name: "other cookie", cookie: &http.Cookie{Name: "theme", Value: token}, want: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rr := httptest.NewRecorder()

			Session(ts)(echoUser).ServeHTTP(rr, req)

			// The middleware never blocks.
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.want, rr.Body.String())
		})
	}
}

func TestSetAndClearSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok", 2*time.Hour, true)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.Equal(t, 7200, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr, false)

	cookies = rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}
