package server

import (
	"os"
	"strings"

	"github.com/faciam-dev/gforms/internal/logger"
	pkgutil "github.com/faciam-dev/gforms/pkg/util"
)

// allowedOrigins reads the CORS origin list from ALLOWED_ORIGINS, a comma
// separated value. The default covers a local Vite dev server.
func allowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(pkgutil.GetEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// mustJWTSecret reads JWT_SECRET. The server refuses to start without one
// rather than falling back to a known signing key.
func mustJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.L.Error("JWT_SECRET is not set, refusing to start")
		os.Exit(1)
	}
	return secret
}
