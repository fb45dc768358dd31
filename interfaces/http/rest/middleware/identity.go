package middleware

import (
	"net/http"

	"cvwizard-backend/pkg/auth"
	"cvwizard-backend/pkg/common"
)

// AnonymousIdentity attaches an anonymous browser identity to every
// request. A first-time visitor gets a fresh opaque key in a year-lived
// cookie; the key scopes record ownership and rate limiting.
func AnonymousIdentity(secureCookies bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			anonKey := auth.ReadAnonKey(r)
			if anonKey == "" {
				anonKey = auth.NewAnonKey()
				auth.SetAnonCookie(w, anonKey, secureCookies)
			}

			ctx := common.WithAnonKey(r.Context(), anonKey)
			ctx = common.WithClientIP(ctx, auth.ClientIP(r))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
