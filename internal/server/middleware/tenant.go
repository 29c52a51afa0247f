package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	"github.com/faciam-dev/gforms/internal/tenant"
)

// ExtractTenant resolves the caller's tenant from the X-Tenant-ID header,
// falling back to the token's "tid" claim. Requests that carry neither are
// scoped to tenant.Default, so single-tenant deployments need no header.
func ExtractTenant() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		tid := r.Header.Get("X-Tenant-ID")
		if tid == "" {
			if claims, ok := r.Context().Value(ClaimsKey()).(interface{ GetTenantID() string }); ok {
				tid = claims.GetTenantID()
			}
		}
		if tid == "" {
			tid = tenant.Default
		}
		r = r.WithContext(tenant.WithTenant(r.Context(), tid))
		next(humachi.NewContext(ctx.Operation(), r, w))
	}
}
