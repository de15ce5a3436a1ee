package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcghub/poke-tournaments/session"
)

func TestDecide(t *testing.T) {
	signedIn := &session.Session{UserID: "u1"}

	cases := []struct {
		name     string
		path     string
		session  *session.Session
		kind     session.DecisionKind
		redirect string
	}{
		{"public page signed out", "/", nil, session.DecisionAllow, ""},
		{"public page signed in", "/", signedIn, session.DecisionAllow, ""},
		{"tournament browsing is public", "/tournaments", nil, session.DecisionAllow, ""},
		{"tournament detail is public", "/tournaments/abc-123", nil, session.DecisionAllow, ""},

		{"profile requires a session", "/profile", nil, session.DecisionRedirectSignIn,
			"/auth/sign-in?redirectTo=%2Fprofile"},
		{"shop requires a session", "/shop/verification", nil, session.DecisionRedirectSignIn,
			"/auth/sign-in?redirectTo=%2Fshop%2Fverification"},
		{"tournament creation requires a session", "/tournaments/create", nil, session.DecisionRedirectSignIn,
			"/auth/sign-in?redirectTo=%2Ftournaments%2Fcreate"},
		{"tournament editing requires a session", "/tournaments/edit/abc-123", nil, session.DecisionRedirectSignIn,
			"/auth/sign-in?redirectTo=%2Ftournaments%2Fedit%2Fabc-123"},
		{"dashboard requires a session", "/dashboard", nil, session.DecisionRedirectSignIn,
			"/auth/sign-in?redirectTo=%2Fdashboard"},

		{"protected page with session", "/profile", signedIn, session.DecisionAllow, ""},
		{"auth page signed out", "/auth/sign-in", nil, session.DecisionAllow, ""},
		{"auth page signed in bounces home", "/auth/sign-in", signedIn, session.DecisionRedirectHome, "/"},
		{"sign-up signed in bounces home", "/auth/sign-up", signedIn, session.DecisionRedirectHome, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := session.Decide(tc.path, tc.session)
			assert.Equal(t, tc.kind, decision.Kind)
			assert.Equal(t, tc.redirect, decision.RedirectURL)
		})
	}
}

func TestGuardMiddleware(t *testing.T) {
	m := session.NewManager(testSecret)

	var seen *session.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := session.Guard(m)(next)

	issue := func(t *testing.T) string {
		t.Helper()
		rec := httptest.NewRecorder()
		token, err := m.Issue(rec, testUser())
		require.NoError(t, err)
		return token
	}

	t.Run("redirects a signed-out request off a protected page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/sign-in?redirectTo=%2Fprofile", rec.Header().Get("Location"))
	})

	t.Run("passes a signed-in request through with its session", func(t *testing.T) {
		seen = nil
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: issue(t)})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.UserID)
	})

	t.Run("a tampered token gates exactly like signed out", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: issue(t) + "x"})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("bounces a signed-in request off the auth pages", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: issue(t)})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})
}
