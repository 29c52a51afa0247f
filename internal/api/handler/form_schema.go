package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/faciam-dev/gforms/internal/api/schema"
	"github.com/faciam-dev/gforms/internal/audit"
	"github.com/faciam-dev/gforms/internal/events"
	schemasrepo "github.com/faciam-dev/gforms/internal/repository/schemas"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/internal/server/middleware"
	"github.com/faciam-dev/gforms/internal/tenant"
	"github.com/faciam-dev/gforms/pkg/formschema"
	"github.com/faciam-dev/gforms/pkg/renderpolicy"
)

// Submission deletion policies applied when a schema is removed.
const (
	DeleteCascade = "cascade"
	DeleteOrphan  = "orphan"
	DeleteBlock   = "block"
)

type FormSchemaHandler struct {
	Repo     *schemasrepo.Repo
	Subs     submissionsrepo.Store
	Recorder *audit.Recorder
	Policy   *renderpolicy.Store
	Format   formschema.FormatConfig
	// OnSchemaDelete is one of DeleteCascade, DeleteOrphan or DeleteBlock.
	OnSchemaDelete string
}

type schemaCreateInput struct {
	Body schema.FormSchemaInput
}

type schemaOutput struct {
	Body formschema.Schema
}

type schemaListOutput struct {
	Body []formschema.Schema
}

type schemaGetInput struct {
	ID string `path:"id"`
}

type schemaUpdateInput struct {
	ID   string `path:"id"`
	Body schema.FormSchemaInput
}

type schemaDeleteInput struct {
	ID string `path:"id"`
}

type renderInput struct {
	ID           string `path:"id"`
	SubmissionID string `query:"submission_id" doc:"Prefill the plan from an existing submission"`
}

type renderOutput struct {
	Body formschema.RenderPlan
}

func RegisterFormSchemas(api huma.API, h *FormSchemaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listFormSchemas",
		Method:      http.MethodGet,
		Path:        "/v1/form-schemas",
		Summary:     "List form schemas",
		Tags:        []string{"FormSchema"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID:   "createFormSchema",
		Method:        http.MethodPost,
		Path:          "/v1/form-schemas",
		Summary:       "Create form schema",
		Tags:          []string{"FormSchema"},
		Errors:        []int{http.StatusUnprocessableEntity},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "getFormSchema",
		Method:      http.MethodGet,
		Path:        "/v1/form-schemas/{id}",
		Summary:     "Get form schema",
		Tags:        []string{"FormSchema"},
		Errors:      []int{http.StatusNotFound},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "updateFormSchema",
		Method:      http.MethodPut,
		Path:        "/v1/form-schemas/{id}",
		Summary:     "Replace form schema",
		Tags:        []string{"FormSchema"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "deleteFormSchema",
		Method:        http.MethodDelete,
		Path:          "/v1/form-schemas/{id}",
		Summary:       "Delete form schema",
		Tags:          []string{"FormSchema"},
		Errors:        []int{http.StatusNotFound, http.StatusConflict},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
	huma.Register(api, huma.Operation{
		OperationID: "renderFormSchema",
		Method:      http.MethodGet,
		Path:        "/v1/form-schemas/{id}/render",
		Summary:     "Render a data-entry plan for a form schema",
		Tags:        []string{"FormSchema"},
		Errors:      []int{http.StatusNotFound},
	}, h.render)
}

// parseDefinition turns the raw document into a checked, compilable
// definition or a 422 describing what is wrong with it. Compilation runs
// here, before any write, so a schema with an unusable pattern never
// reaches storage.
func parseDefinition(raw string) (formschema.Definition, error) {
	def, err := formschema.ParseDefinition([]byte(raw))
	if err != nil {
		var spec *formschema.SpecError
		if errors.As(err, &spec) {
			return def, huma.NewError(http.StatusUnprocessableEntity, spec.Error(), &huma.ErrorDetail{Location: "body.schema", Message: spec.Error()})
		}
		return def, huma.NewError(http.StatusUnprocessableEntity, err.Error(), &huma.ErrorDetail{Location: "body.schema", Message: err.Error()})
	}
	if _, err := formschema.Compile(def); err != nil {
		var ce *formschema.CompileError
		if errors.As(err, &ce) {
			loc := fmt.Sprintf("body.schema.fields.%s", ce.Field)
			return def, huma.NewError(http.StatusUnprocessableEntity, ce.Error(), &huma.ErrorDetail{Location: loc, Message: ce.Error()})
		}
		return def, huma.NewError(http.StatusUnprocessableEntity, err.Error(), &huma.ErrorDetail{Location: "body.schema", Message: err.Error()})
	}
	return def, nil
}

func (h *FormSchemaHandler) list(ctx context.Context, _ *struct{}) (*schemaListOutput, error) {
	tid := tenant.FromContext(ctx)
	ss, err := h.Repo.List(ctx, tid)
	if err != nil {
		return nil, err
	}
	return &schemaListOutput{Body: ss}, nil
}

func (h *FormSchemaHandler) create(ctx context.Context, in *schemaCreateInput) (*schemaOutput, error) {
	def, err := parseDefinition(in.Body.Schema)
	if err != nil {
		return nil, err
	}
	tid := tenant.FromContext(ctx)
	s := formschema.Schema{
		ID:          uuid.NewString(),
		TenantID:    tid,
		Name:        in.Body.Name,
		Description: in.Body.Description,
		TableName:   in.Body.TableName,
		Definition:  def,
		CreatedBy:   middleware.UserFromContext(ctx),
	}
	if s.TableName == "" {
		s.TableName = formschema.DefaultTableName(s.Name)
	}
	if err := h.Repo.Create(ctx, &s); err != nil {
		return nil, err
	}
	if h.Recorder != nil {
		if err := h.Recorder.Write(ctx, s.CreatedBy, tid, nil, &s); err != nil {
			return nil, err
		}
	}
	events.Emit(ctx, events.New("form.schema.created", s))
	return &schemaOutput{Body: s}, nil
}

func (h *FormSchemaHandler) get(ctx context.Context, in *schemaGetInput) (*schemaOutput, error) {
	s, err := h.Repo.Get(ctx, tenant.FromContext(ctx), in.ID)
	if err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	return &schemaOutput{Body: s}, nil
}

func (h *FormSchemaHandler) update(ctx context.Context, in *schemaUpdateInput) (*schemaOutput, error) {
	def, err := parseDefinition(in.Body.Schema)
	if err != nil {
		return nil, err
	}
	tid := tenant.FromContext(ctx)
	old, err := h.Repo.Get(ctx, tid, in.ID)
	if err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	s := old
	s.Name = in.Body.Name
	s.Description = in.Body.Description
	s.TableName = in.Body.TableName
	if s.TableName == "" {
		s.TableName = formschema.DefaultTableName(s.Name)
	}
	s.Definition = def
	if err := h.Repo.Update(ctx, &s); err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	if h.Recorder != nil {
		if err := h.Recorder.Write(ctx, middleware.UserFromContext(ctx), tid, &old, &s); err != nil {
			return nil, err
		}
	}
	events.Emit(ctx, events.New("form.schema.updated", s))
	return &schemaOutput{Body: s}, nil
}

func (h *FormSchemaHandler) delete(ctx context.Context, in *schemaDeleteInput) (*struct{}, error) {
	tid := tenant.FromContext(ctx)
	old, err := h.Repo.Get(ctx, tid, in.ID)
	if err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	switch h.OnSchemaDelete {
	case DeleteBlock:
		n, err := h.Subs.CountBySchema(ctx, tid, in.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, huma.Error409Conflict(fmt.Sprintf("form schema has %d submissions", n))
		}
	case DeleteCascade:
		if _, err := h.Subs.DeleteBySchema(ctx, tid, in.ID); err != nil {
			return nil, err
		}
	}
	if err := h.Repo.Delete(ctx, tid, in.ID); err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	if h.Recorder != nil {
		if err := h.Recorder.Write(ctx, middleware.UserFromContext(ctx), tid, &old, nil); err != nil {
			return nil, err
		}
	}
	events.Emit(ctx, events.New("form.schema.deleted", old))
	return nil, nil
}

func (h *FormSchemaHandler) render(ctx context.Context, in *renderInput) (*renderOutput, error) {
	tid := tenant.FromContext(ctx)
	s, err := h.Repo.Get(ctx, tid, in.ID)
	if err != nil {
		if errors.Is(err, schemasrepo.ErrNotFound) {
			return nil, huma.Error404NotFound("form schema not found")
		}
		return nil, err
	}
	var prefill map[string]any
	if in.SubmissionID != "" {
		sub, err := h.Subs.Get(ctx, tid, in.SubmissionID)
		if err != nil {
			if errors.Is(err, submissionsrepo.ErrNotFound) {
				return nil, huma.Error404NotFound("submission not found")
			}
			return nil, err
		}
		if sub.SchemaID != s.ID {
			return nil, huma.Error404NotFound("submission not found")
		}
		prefill = sub.Data
	}
	plan := formschema.Render(s.Definition, prefill, nil, h.Format, h.resolver())
	return &renderOutput{Body: plan}, nil
}

// resolver adapts the hot-reloaded widget policy into the renderer's
// callback. Nil when no policy store is configured.
func (h *FormSchemaHandler) resolver() formschema.WidgetResolver {
	if h.Policy == nil {
		return nil
	}
	p := h.Policy.Get()
	return func(spec formschema.FieldSpec) (string, map[string]any) {
		return p.Resolve(renderpolicy.Ctx{
			Type:     spec.Type,
			Name:     spec.Name,
			Required: spec.Required,
			Options:  len(spec.Options),
		})
	}
}
