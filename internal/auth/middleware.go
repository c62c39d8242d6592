package auth

import (
	"context"
	"net/http"
	"slices"
)

type contextKey struct{}

// RequireRole rejects requests without a valid session for one of roles.
// onError writes the response for rejected requests.
func (s *Service) RequireRole(onError func(w http.ResponseWriter, status int, message string), roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				onError(w, http.StatusUnauthorized, "غير مصرح")
				return
			}
			claims, err := s.ParseSession(token)
			if err != nil {
				onError(w, http.StatusUnauthorized, "غير مصرح")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				onError(w, http.StatusForbidden, "ليس لديك صلاحية")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, claims)))
		})
	}
}

// ClaimsFromContext returns the session claims set by RequireRole.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(contextKey{}).(*Claims)
	return c
}
