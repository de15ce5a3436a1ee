// Package session answers the single question every other component asks:
// is there a current authenticated identity on this request, and what are
// its claims. It deliberately fails closed: any error reading or verifying
// a token is reported as "no session", so a transient verification failure
// gates exactly like being signed out.
package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/tcghub/poke-tournaments/models"
)

const (
	// CookieName carries the session token between requests.
	CookieName = "pt_session"

	defaultTTL = 24 * time.Hour
)

// Session is a time-bounded proof that a request belongs to an identity.
type Session struct {
	UserID       string
	Email        string
	VerifiedShop bool
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Manager issues, reads and revokes sessions. It holds no per-user state;
// every request is re-verified from its token.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    defaultTTL,
	}
}

// Issue signs a token for the user and sets it as an HttpOnly cookie. The
// token is also returned so API clients can send it as a bearer token.
func (m *Manager) Issue(w http.ResponseWriter, user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":       user.ID,
		"email":         user.Email,
		"verified_shop": user.VerifiedShop,
		"iat":           now.Unix(),
		"exp":           now.Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return tokenString, nil
}

// FromRequest returns the request's session, or nil when there is none.
// Malformed, expired and wrongly-signed tokens all collapse to nil.
func (m *Manager) FromRequest(r *http.Request) *Session {
	tokenString := tokenFromRequest(r)
	if tokenString == "" {
		return nil
	}
	return m.Parse(tokenString)
}

// Parse verifies a raw token string. Returns nil on any failure.
func (m *Manager) Parse(tokenString string) *Session {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil
	}
	email, _ := claims["email"].(string)
	verifiedShop, _ := claims["verified_shop"].(bool)

	s := &Session{
		UserID:       userID,
		Email:        email,
		VerifiedShop: verifiedShop,
	}
	if iat, ok := claims["iat"].(float64); ok {
		s.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		s.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return s
}

// Revoke clears the session cookie. Best-effort: callers treat sign-out as
// always succeeding.
func (m *Manager) Revoke(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const bearerPrefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(bearerPrefix) && auth[:len(bearerPrefix)] == bearerPrefix {
		return auth[len(bearerPrefix):]
	}
	return ""
}
