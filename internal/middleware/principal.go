package middleware

import (
	"context"
	"net/http"
	"strings"

	"gemportal/internal/domain"
)

// PrincipalHeader names the caller for query history. Authentication happens
// upstream of the portal.
const PrincipalHeader = "X-Principal"

// AnonymousPrincipal is recorded when no principal header is sent.
const AnonymousPrincipal = "anonymous"

// Principal stores the caller name from X-Principal in the request context.
func Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(PrincipalHeader))
		if name == "" {
			name = AnonymousPrincipal
		}
		next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), name)))
	})
}

// PrincipalFromContext returns the caller name, or AnonymousPrincipal.
func PrincipalFromContext(ctx context.Context) string {
	if name, ok := domain.PrincipalFromContext(ctx); ok {
		return name
	}
	return AnonymousPrincipal
}
