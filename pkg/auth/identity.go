package auth

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnonCookieName is the cookie holding the anonymous browser identity.
const AnonCookieName = "cv_anon"

// anonCookieMaxAge keeps the identity for one year.
const anonCookieMaxAge = 365 * 24 * time.Hour

// NewAnonKey mints a fresh opaque anonymous identifier.
func NewAnonKey() string {
	return uuid.New().String()
}

// ReadAnonKey returns the anonymous key from the request cookie, or ""
// when no valid cookie is present.
func ReadAnonKey(r *http.Request) string {
	cookie, err := r.Cookie(AnonCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// SetAnonCookie writes the anonymous identity cookie. HttpOnly and
// SameSite=Lax keep it out of scripts and cross-site requests; Secure is
// applied outside local development.
func SetAnonCookie(w http.ResponseWriter, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClientIP extracts the client IP address from proxy headers, falling
// back to the connection's remote address.
func ClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	// RemoteAddr is usually host:port, but a bare address (IPv6
	// included) must survive unmangled.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitKey picks the identity a rate limiter should key on: the
// anonymous key when present, else the client IP.
func RateLimitKey(anonKey, clientIP string) string {
	if anonKey != "" {
		return "anon:" + anonKey
	}
	return "ip:" + clientIP
}
