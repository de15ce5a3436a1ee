package session

import (
	"net/http"
	"net/url"
	"strings"
)

// SignInPath is where unauthenticated requests to protected paths are sent.
const SignInPath = "/auth/sign-in"

// ProtectedPrefixes are the path prefixes that require a session.
var ProtectedPrefixes = []string{
	"/profile",
	"/shop",
	"/tournaments/create",
	"/tournaments/edit",
	"/dashboard",
}

// authPrefix covers the sign-in/sign-up pages a signed-in user has no
// business revisiting.
const authPrefix = "/auth"

type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionRedirectSignIn
	DecisionRedirectHome
)

// Decision is the route guard's verdict for one request. RedirectURL is set
// for the two redirect kinds.
type Decision struct {
	Kind        DecisionKind
	RedirectURL string
}

// Decide is the navigation-time authorization function. It is pure: no
// retries, no side effects, three terminal outcomes. Rules are evaluated in
// order:
//  1. protected path without a session redirects to sign-in, preserving the
//     requested path in the redirectTo query parameter;
//  2. auth pages with a session redirect home;
//  3. everything else is allowed.
func Decide(path string, s *Session) Decision {
	if s == nil && hasProtectedPrefix(path) {
		return Decision{
			Kind:        DecisionRedirectSignIn,
			RedirectURL: SignInPath + "?redirectTo=" + url.QueryEscape(path),
		}
	}
	if s != nil && strings.HasPrefix(path, authPrefix) {
		return Decision{
			Kind:        DecisionRedirectHome,
			RedirectURL: "/",
		}
	}
	return Decision{Kind: DecisionAllow}
}

func hasProtectedPrefix(path string) bool {
	for _, prefix := range ProtectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Guard applies Decide before any page-specific handler runs. It must be
// mounted ahead of every navigable route.
func Guard(m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := m.FromRequest(r)
			switch decision := Decide(r.URL.Path, s); decision.Kind {
			case DecisionRedirectSignIn, DecisionRedirectHome:
				http.Redirect(w, r, decision.RedirectURL, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
			}
		})
	}
}
