package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal(t *testing.T) {
	var got string
	handler := Principal(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(PrincipalHeader, "  alice@example.com ")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "alice@example.com", got)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, AnonymousPrincipal, got)
}

func TestPrincipalFromContext_Default(t *testing.T) {
	assert.Equal(t, AnonymousPrincipal, PrincipalFromContext(context.Background()))
}
