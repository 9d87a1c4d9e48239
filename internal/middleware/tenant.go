package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cataloghq/erp-migration/internal/auth"
)

// TenantMiddleware resolves the X-Tenant-ID header into the request context.
// Requests without a valid tenant are rejected before reaching any handler.
func TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(auth.TenantHeader)
		if raw == "" {
			http.Error(w, "missing "+auth.TenantHeader+" header", http.StatusUnauthorized)
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			http.Error(w, "invalid "+auth.TenantHeader+" header", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithTenantID(r.Context(), tenantID)))
	})
}
