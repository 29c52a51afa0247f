// Package submissionsrepo persists form submissions as opaque JSON payloads
// keyed to their owning schema.
package submissionsrepo

import (
	"context"
	"errors"

	"github.com/faciam-dev/gforms/pkg/formschema"
)

var (
	// ErrNotFound is returned when no submission matches the requested id.
	ErrNotFound = errors.New("submission not found")
	// ErrConflict is returned when an update carries a stale revision,
	// meaning another writer got there first.
	ErrConflict = errors.New("submission revision conflict")
)

// Store is the persistence boundary of the submission lifecycle. Every
// operation is a single independent document write; there is no multi-step
// transaction spanning submissions or schemas.
type Store interface {
	Insert(ctx context.Context, sub *formschema.Submission) error
	Get(ctx context.Context, tenant, id string) (formschema.Submission, error)
	// ListBySchema returns a schema's submissions ordered by creation time.
	ListBySchema(ctx context.Context, tenant, schemaID string) ([]formschema.Submission, error)
	// Update overwrites data if and only if the stored revision equals
	// expectedRev, bumping the revision by one. A stale revision yields
	// ErrConflict.
	Update(ctx context.Context, tenant, id string, data map[string]any, expectedRev int64) (formschema.Submission, error)
	Delete(ctx context.Context, tenant, id string) error
	// DeleteBySchema removes all submissions of a schema (cascade policy).
	DeleteBySchema(ctx context.Context, tenant, schemaID string) (int64, error)
	CountBySchema(ctx context.Context, tenant, schemaID string) (int64, error)
}
