package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/faciam-dev/gforms/internal/api/schema"
	"github.com/faciam-dev/gforms/internal/events"
	schemasrepo "github.com/faciam-dev/gforms/internal/repository/schemas"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/internal/server/middleware"
	"github.com/faciam-dev/gforms/internal/tenant"
	"github.com/faciam-dev/gforms/pkg/formschema"
	"github.com/faciam-dev/gforms/pkg/metrics"
)

type SubmissionHandler struct {
	Schemas *schemasrepo.Repo
	Store   submissionsrepo.Store
}

type submissionCreateInput struct {
	SchemaID string `path:"id"`
	Body     schema.SubmissionInput
}

type submissionOutput struct {
	Body formschema.Submission
}

type submissionListInput struct {
	SchemaID string `path:"id"`
}

type submissionListOutput struct {
	Body []formschema.Submission
}

type submissionGetInput struct {
	ID string `path:"id"`
}

type submissionUpdateInput struct {
	ID   string `path:"id"`
	Body schema.SubmissionUpdate
}

type submissionDeleteInput struct {
	ID string `path:"id"`
}

func RegisterSubmissions(api huma.API, h *SubmissionHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "createSubmission",
		Method:        http.MethodPost,
		Path:          "/v1/form-schemas/{id}/submissions",
		Summary:       "Submit data against a form schema",
		Tags:          []string{"Submission"},
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "listSubmissions",
		Method:      http.MethodGet,
		Path:        "/v1/form-schemas/{id}/submissions",
		Summary:     "List a form schema's submissions",
		Tags:        []string{"Submission"},
		Errors:      []int{http.StatusNotFound},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "getSubmission",
		Method:      http.MethodGet,
		Path:        "/v1/submissions/{id}",
		Summary:     "Get submission",
		Tags:        []string{"Submission"},
		Errors:      []int{http.StatusNotFound},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "updateSubmission",
		Method:      http.MethodPut,
		Path:        "/v1/submissions/{id}",
		Summary:     "Overwrite submission data",
		Tags:        []string{"Submission"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "deleteSubmission",
		Method:        http.MethodDelete,
		Path:          "/v1/submissions/{id}",
		Summary:       "Delete submission",
		Tags:          []string{"Submission"},
		Errors:        []int{http.StatusNotFound},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}

// validationError flattens per-field validator output into one 422 with a
// detail entry per message, keyed to the offending field.
func validationError(errs formschema.FieldErrors) error {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var details []error
	for _, f := range fields {
		for _, msg := range errs[f] {
			details = append(details, &huma.ErrorDetail{Location: "body.data." + f, Message: msg})
		}
	}
	return huma.NewError(http.StatusUnprocessableEntity, "submission failed validation", details...)
}

func (h *SubmissionHandler) validate(ctx context.Context, tid, schemaID string, data map[string]any) (map[string]any, error) {
	s, err := h.Schemas.Get(ctx, tid, schemaID)
	if err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	v, err := formschema.Compile(s.Definition)
	if err != nil {
		return nil, err
	}
	norm, errs := v.Validate(data)
	if errs != nil {
		metrics.ValidationRejections.WithLabelValues(schemaID).Inc()
		return nil, validationError(errs)
	}
	return norm, nil
}

func (h *SubmissionHandler) create(ctx context.Context, in *submissionCreateInput) (*submissionOutput, error) {
	tid := tenant.FromContext(ctx)
	norm, err := h.validate(ctx, tid, in.SchemaID, in.Body.Data)
	if err != nil {
		return nil, err
	}
	sub := formschema.Submission{
		ID:          uuid.NewString(),
		TenantID:    tid,
		SchemaID:    in.SchemaID,
		Data:        norm,
		SubmittedBy: middleware.UserFromContext(ctx),
	}
	if err := h.Store.Insert(ctx, &sub); err != nil {
		return nil, err
	}
	events.Emit(ctx, events.New("form.submission.created", sub))
	return &submissionOutput{Body: sub}, nil
}

func (h *SubmissionHandler) list(ctx context.Context, in *submissionListInput) (*submissionListOutput, error) {
	tid := tenant.FromContext(ctx)
	if _, err := h.Schemas.Get(ctx, tid, in.SchemaID); err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	subs, err := h.Store.ListBySchema(ctx, tid, in.SchemaID)
	if err != nil {
		return nil, err
	}
	return &submissionListOutput{Body: subs}, nil
}

func (h *SubmissionHandler) get(ctx context.Context, in *submissionGetInput) (*submissionOutput, error) {
	sub, err := h.Store.Get(ctx, tenant.FromContext(ctx), in.ID)
	if err != nil {
		if errors.Is(err, submissionsrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("submission not found")
		}
		return nil, err
	}
	return &submissionOutput{Body: sub}, nil
}

func (h *SubmissionHandler) update(ctx context.Context, in *submissionUpdateInput) (*submissionOutput, error) {
	tid := tenant.FromContext(ctx)
	cur, err := h.Store.Get(ctx, tid, in.ID)
	if err != nil {
		if errors.Is(err, submissionsrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("submission not found")
		}
		return nil, err
	}
	// Validation runs against the schema's current definition; a submission
	// written under an older definition must still pass today's rules.
	norm, err := h.validate(ctx, tid, cur.SchemaID, in.Body.Data)
	if err != nil {
		return nil, err
	}
	sub, err := h.Store.Update(ctx, tid, in.ID, norm, in.Body.Revision)
	if err != nil {
		switch {
		case errors.Is(err, submissionsrepo.ErrConflict):
			metrics.UpdateConflicts.Inc()
			return nil, huma.Error409Conflict("submission was modified by another writer")
		case errors.Is(err, submissionsrepo.ErrNotFound):
			return nil, huma.Error404NotFound("submission not found")
		}
		return nil, err
	}
	events.Emit(ctx, events.New("form.submission.updated", sub))
	return &submissionOutput{Body: sub}, nil
}

func (h *SubmissionHandler) delete(ctx context.Context, in *submissionDeleteInput) (*struct{}, error) {
	tid := tenant.FromContext(ctx)
	sub, err := h.Store.Get(ctx, tid, in.ID)
	if err != nil {
		if errors.Is(err, submissionsrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("submission not found")
		}
		return nil, err
	}
	if err := h.Store.Delete(ctx, tid, in.ID); err != nil {
		if errors.Is(err, submissionsrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("submission not found")
		}
		return nil, err
	}
	events.Emit(ctx, events.New("form.submission.deleted", sub))
	return nil, nil
}
