// Package middleware holds the huma middlewares of the API server and the
// context keys they share with the auth package.
package middleware

import "context"

type userKeyT struct{}
type claimsKeyT struct{}

// UserKey returns the context key holding the authenticated subject.
func UserKey() any { return userKeyT{} }

// ClaimsKey returns the context key holding the validated token claims.
func ClaimsKey() any { return claimsKeyT{} }

// UserFromContext returns the authenticated subject, or an empty string
// when the request never passed the auth middleware.
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userKeyT{}).(string); ok {
		return v
	}
	return ""
}
