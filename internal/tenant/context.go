// Package tenant carries the caller's tenant ID through a request context.
package tenant

import "context"

// Default is the tenant used when a request carries no X-Tenant-ID header
// and no tid claim. Single-tenant deployments only ever see this value.
const Default = "default"

type key struct{}

// WithTenant returns a copy of ctx carrying tid.
func WithTenant(ctx context.Context, tid string) context.Context {
	return context.WithValue(ctx, key{}, tid)
}

// FromContext returns the tenant ID carried by ctx, or Default when the
// request never passed through the tenant middleware.
func FromContext(ctx context.Context) string {
	if tid, ok := ctx.Value(key{}).(string); ok && tid != "" {
		return tid
	}
	return Default
}
