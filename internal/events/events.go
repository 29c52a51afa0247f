// Package events fans out form lifecycle notifications to configured sinks.
// Delivery is asynchronous with exponential backoff; events that exhaust
// their retries land in a dead letter store.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/faciam-dev/gforms/internal/logger"
)

// Default is the process-wide dispatcher. Emit is a no-op until the server
// assigns it during startup.
var Default *Dispatcher

// Event is one lifecycle notification, e.g. form.schema.created or
// form.submission.updated. Data carries the affected record.
type Event struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
	ID   string    `json:"id"`
}

// New builds an event with a fresh id and the current time.
func New(name string, data any) Event {
	return Event{ID: uuid.NewString(), Name: name, Time: time.Now().UTC(), Data: data}
}

// Sink delivers an event to one destination.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// DLQ records events that could not be delivered.
type DLQ interface {
	Store(ctx context.Context, e Event, attempts int, lastErr string) error
}

// RetryConfig bounds the per-sink delivery attempts.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// Config is the YAML document wiring sinks and retry behavior.
type Config struct {
	Sinks struct {
		Webhook WebhookConfig `yaml:"webhook"`
		Redis   RedisConfig   `yaml:"redis"`
		Kafka   KafkaConfig   `yaml:"kafka"`
	} `yaml:"sinks"`
	Retry RetryConfig `yaml:"retry"`
}

// Dispatcher broadcasts each event to every sink independently.
type Dispatcher struct {
	sinks        []Sink
	maxAttempts  int
	initialDelay time.Duration
	dlq          DLQ
}

// NewDispatcher builds a dispatcher. Unset retry values fall back to three
// attempts starting at one second.
func NewDispatcher(cfg Config, dlq DLQ, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{maxAttempts: 3, initialDelay: time.Second, dlq: dlq}
	if cfg.Retry.MaxAttempts > 0 {
		d.maxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialDelay > 0 {
		d.initialDelay = cfg.Retry.InitialDelay
	}
	d.sinks = append(d.sinks, sinks...)
	return d
}

// Emit dispatches through Default when one is configured.
func Emit(ctx context.Context, e Event) {
	if Default != nil {
		Default.Dispatch(ctx, e)
	}
}

// Dispatch hands the event to every sink. It returns immediately; delivery
// and retries happen in the background.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	for _, s := range d.sinks {
		go d.deliver(ctx, s, e)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, s Sink, e Event) {
	backoff := d.initialDelay
	var err error
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		if err = s.Emit(ctx, e); err == nil {
			return
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	logger.L.Warn("event delivery failed", "event", e.Name, "id", e.ID, "err", err)
	if d.dlq == nil {
		return
	}
	if derr := d.dlq.Store(ctx, e, d.maxAttempts, err.Error()); derr != nil {
		logger.L.Error("dead letter store", "event", e.Name, "id", e.ID, "err", derr)
	}
}
