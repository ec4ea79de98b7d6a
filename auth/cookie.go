package auth

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// CookieConfig configures the session cookie.
type CookieConfig struct {
	// Secure cookies are sent only over HTTPS, and use SameSite=None so that a
	// SPA served from another origin may present them. Otherwise, SameSite=Lax.
	Secure bool
	// MaxAge of the session cookie.
	MaxAge time.Duration
}

// SetSession sets the session cookie carrying |token| on |w|.
func (c CookieConfig) SetSession(w http.ResponseWriter, token string) {
	var cookie = c.base()
	cookie.Value = token
	cookie.MaxAge = int(c.MaxAge / time.Second)
	cookie.Expires = time.Now().Add(c.MaxAge)
	http.SetCookie(w, cookie)
}

// ClearSession expires the session cookie of |w|.
func (c CookieConfig) ClearSession(w http.ResponseWriter) {
	var cookie = c.base()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

func (c CookieConfig) base() *http.Cookie {
	var cookie = &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
