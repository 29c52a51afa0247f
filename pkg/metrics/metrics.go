package metrics

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gform_api_requests_total",
			Help: "Number of API requests",
		},
		[]string{"tenant", "method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gform_api_latency_seconds",
			Help:    "API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	Schemas = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gform_schemas_total",
			Help: "Number of form schemas",
		},
	)
	Submissions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gform_submissions_total",
			Help: "Number of submissions by schema",
		},
		[]string{"schema"},
	)
	ValidationRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gform_validation_rejections_total",
			Help: "Submissions rejected by the validator",
		},
		[]string{"schema"},
	)
	UpdateConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gform_update_conflicts_total",
			Help: "Submission updates rejected by the revision check",
		},
	)
	OrphanedSubmissions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gform_orphaned_submissions_total",
			Help: "Submissions whose owning schema no longer exists",
		},
	)
)

func init() {
	prometheus.MustRegister(APIRequests, APILatency, Schemas, Submissions, ValidationRejections, UpdateConflicts, OrphanedSubmissions)
}

// Counter is the subset of a repository needed by the engine gauges.
type Counter interface {
	CountSchemas(ctx context.Context) (int64, error)
	CountSubmissionsBySchema(ctx context.Context) (map[string]int64, error)
}

// StartEngineGauge refreshes the schema and submission gauges every minute.
func StartEngineGauge(ctx context.Context, c Counter) {
	update := func() {
		n, err := c.CountSchemas(ctx)
		if err != nil {
			log.Printf("schema gauge: %v", err)
			return
		}
		Schemas.Set(float64(n))
		per, err := c.CountSubmissionsBySchema(ctx)
		if err != nil {
			log.Printf("submission gauge: %v", err)
			return
		}
		for id, cnt := range per {
			Submissions.WithLabelValues(id).Set(float64(cnt))
		}
	}
	update()
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				update()
			}
		}
	}()
}
