package middleware

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
)

// RoleResolver maps an authenticated subject to its role names.
type RoleResolver func(ctx context.Context, user string) ([]string, error)

// RBAC is the administration gate: whether a caller may manage schemas or
// submissions is decided here, not inside the engine. A request passes when
// the user or any of their roles matches a policy.
func RBAC(enf *casbin.Enforcer, resolve RoleResolver) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		if allowed(enf, resolve, r) {
			next(ctx)
			return
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	}
}

func allowed(enf *casbin.Enforcer, resolve RoleResolver, r *http.Request) bool {
	subjects := []string{UserFromContext(r.Context())}
	if resolve != nil {
		if roles, err := resolve(r.Context(), subjects[0]); err == nil {
			subjects = append(subjects, roles...)
		}
	}
	for _, sub := range subjects {
		if ok, _ := enf.Enforce(sub, r.URL.Path, r.Method); ok {
			return true
		}
	}
	return false
}
