package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/ec-storefront/internal/auth"
)

// AccessTokenCookie carries the access token for browser clients.
const AccessTokenCookie = "access_token"

const (
	msgNoToken     = "Not authorized, no token"
	msgTokenFailed = "Not authorized, token failed"
	msgNotAdmin    = "Not authorized as an admin"
)

type claimsKey struct{}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// AccessToken returns the access token of r. The cookie wins over a
// bearer Authorization header.
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticator guards routes with access tokens issued by jwt.
type Authenticator struct {
	jwt *auth.JWTService
}

func NewAuthenticator(jwt *auth.JWTService) *Authenticator {
	return &Authenticator{jwt: jwt}
}

// Protect rejects requests without a valid access token and stores the
// token's claims in the request context.
func (a *Authenticator) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := AccessToken(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, msgNoToken)
			return
		}
		claims, err := a.jwt.ValidateAccessToken(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, msgTokenFailed)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// AdminOnly protects next and additionally requires an admin caller.
func (a *Authenticator) AdminOnly(next http.Handler) http.Handler {
	return a.Protect(RequireAdmin(next))
}

// RequireAdmin must run behind Protect.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		switch {
		case !ok:
			deny(w, http.StatusUnauthorized, msgNoToken)
		case !claims.IsAdmin():
			deny(w, http.StatusForbidden, msgNotAdmin)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the caller's claims set by Protect.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}

// UserIDFrom returns the caller's user id, or "" for anonymous requests.
func UserIDFrom(ctx context.Context) string {
	if claims, ok := ClaimsFrom(ctx); ok {
		return claims.UserID
	}
	return ""
}
