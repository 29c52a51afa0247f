package middleware

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/felixge/httpsnoop"

	"github.com/faciam-dev/gforms/internal/tenant"
	"github.com/faciam-dev/gforms/pkg/metrics"
)

// pathIDs collapses UUID and numeric path segments so metric label
// cardinality stays bounded.
var pathIDs = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F-]{27,}|\d+`)

// MetricsMW counts requests and observes latency per method and normalized
// path. The tenant label comes from the request context.
func MetricsMW(ctx huma.Context, next func(huma.Context)) {
	r, w := humachi.Unwrap(ctx)
	m := httpsnoop.CaptureMetricsFn(w, func(w http.ResponseWriter) {
		next(humachi.NewContext(ctx.Operation(), r, w))
	})
	path := pathIDs.ReplaceAllString(r.URL.Path, ":id")
	metrics.APIRequests.WithLabelValues(tenant.FromContext(r.Context()), r.Method, path, strconv.Itoa(m.Code)).Inc()
	metrics.APILatency.WithLabelValues(r.Method, path).Observe(m.Duration.Seconds())
}
