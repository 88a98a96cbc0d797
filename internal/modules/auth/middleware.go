package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/georgemunganga/catalog-service/internal/modules/user"
	"github.com/georgemunganga/catalog-service/internal/platform/httpx"
)

type contextKey int

const (
	principalKey contextKey = iota
	tokenKey
)

// WithPrincipal returns a copy of ctx carrying u as the request principal.
func WithPrincipal(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

// PrincipalFromContext returns the authenticated user of the request, if any.
func PrincipalFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(principalKey).(*user.User)
	return u, ok && u != nil
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// Authenticate resolves a bearer token into the request principal. Requests
// without a valid token continue anonymously; RequireRole rejects them.
func Authenticate(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := svc.Resolve(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			u, ok := sess.CurrentUser()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithPrincipal(r.Context(), u)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole answers 401 without a principal and 403 when the principal
// holds none of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			if !u.HasRole(roles...) {
				httpx.Error(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
