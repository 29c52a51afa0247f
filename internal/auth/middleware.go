package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	sm "github.com/faciam-dev/gforms/internal/server/middleware"
)

// Middleware rejects requests without a valid bearer token and stores the
// subject and claims for the RBAC middleware downstream.
func Middleware(api huma.API, j *JWT) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		tok, ok := bearerToken(r)
		if !ok {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := j.Validate(tok)
		if err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		rc := context.WithValue(r.Context(), sm.UserKey(), claims.Subject)
		rc = context.WithValue(rc, sm.ClaimsKey(), claims)
		next(humachi.NewContext(ctx.Operation(), r.WithContext(rc), w))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

// UserFromContext returns the authenticated subject, or an empty string.
func UserFromContext(ctx context.Context) string { return sm.UserFromContext(ctx) }
