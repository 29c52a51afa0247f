// Package sdk embeds the form engine in Go programs that talk to the
// database directly instead of going through the HTTP API.
package sdk

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faciam-dev/gforms/internal/audit"
	"github.com/faciam-dev/gforms/internal/export"
	schemasrepo "github.com/faciam-dev/gforms/internal/repository/schemas"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/pkg/formschema"
	pkgutil "github.com/faciam-dev/gforms/pkg/util"
)

// Service exposes high level operations over form schemas and submissions.
type Service interface {
	// ValidateDefinition parses and compiles a raw schema document without
	// touching the database.
	ValidateDefinition(raw []byte) (formschema.Definition, error)
	// CreateSchema stores a new schema. The id is assigned here.
	CreateSchema(ctx context.Context, s *formschema.Schema) error
	GetSchema(ctx context.Context, id string) (formschema.Schema, error)
	ListSchemas(ctx context.Context) ([]formschema.Schema, error)
	UpdateSchema(ctx context.Context, s *formschema.Schema) error
	DeleteSchema(ctx context.Context, id string) error
	// Submit validates data against the schema and stores the normalized
	// payload as a new revision-1 submission.
	Submit(ctx context.Context, schemaID string, data map[string]any) (formschema.Submission, error)
	// Export dumps the tenant's schemas and submissions as YAML.
	Export(ctx context.Context) ([]byte, error)
}

// New returns a Service initialized with the given configuration.
func New(cfg ServiceConfig) Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	tenant := cfg.Tenant
	if tenant == "" {
		tenant = "default"
	}
	dialect := pkgutil.DialectFromDriver(cfg.Driver)
	return &service{
		logger:  logger,
		tenant:  tenant,
		rec:     cfg.Recorder,
		schemas: &schemasrepo.Repo{DB: cfg.DB, Dialect: dialect, TablePrefix: cfg.TablePrefix},
		subs:    submissionsrepo.NewSQLStore(cfg.DB, cfg.Driver, dialect, cfg.TablePrefix),
		db:      cfg.DB,
	}
}

type service struct {
	logger  *zap.SugaredLogger
	tenant  string
	rec     *audit.Recorder
	schemas *schemasrepo.Repo
	subs    submissionsrepo.Store
	db      *sql.DB
}

func (s *service) ValidateDefinition(raw []byte) (formschema.Definition, error) {
	def, err := formschema.ParseDefinition(raw)
	if err != nil {
		return def, err
	}
	if _, err := formschema.Compile(def); err != nil {
		return def, err
	}
	return def, nil
}

func (s *service) CreateSchema(ctx context.Context, sc *formschema.Schema) error {
	if _, err := formschema.Compile(sc.Definition); err != nil {
		return err
	}
	sc.ID = uuid.NewString()
	sc.TenantID = s.tenant
	if sc.TableName == "" {
		sc.TableName = formschema.DefaultTableName(sc.Name)
	}
	if err := s.schemas.Create(ctx, sc); err != nil {
		return err
	}
	s.logger.Infow("schema created", "id", sc.ID, "name", sc.Name)
	if s.rec != nil {
		return s.rec.Write(ctx, sc.CreatedBy, s.tenant, nil, sc)
	}
	return nil
}

func (s *service) GetSchema(ctx context.Context, id string) (formschema.Schema, error) {
	return s.schemas.Get(ctx, s.tenant, id)
}

func (s *service) ListSchemas(ctx context.Context) ([]formschema.Schema, error) {
	return s.schemas.List(ctx, s.tenant)
}

func (s *service) UpdateSchema(ctx context.Context, sc *formschema.Schema) error {
	if _, err := formschema.Compile(sc.Definition); err != nil {
		return err
	}
	sc.TenantID = s.tenant
	old, err := s.schemas.Get(ctx, s.tenant, sc.ID)
	if err != nil {
		return err
	}
	if err := s.schemas.Update(ctx, sc); err != nil {
		return err
	}
	s.logger.Infow("schema updated", "id", sc.ID)
	if s.rec != nil {
		return s.rec.Write(ctx, sc.CreatedBy, s.tenant, &old, sc)
	}
	return nil
}

func (s *service) DeleteSchema(ctx context.Context, id string) error {
	old, err := s.schemas.Get(ctx, s.tenant, id)
	if err != nil {
		return err
	}
	if err := s.schemas.Delete(ctx, s.tenant, id); err != nil {
		return err
	}
	s.logger.Infow("schema deleted", "id", id)
	if s.rec != nil {
		return s.rec.Write(ctx, old.CreatedBy, s.tenant, &old, nil)
	}
	return nil
}

func (s *service) Submit(ctx context.Context, schemaID string, data map[string]any) (formschema.Submission, error) {
	sc, err := s.schemas.Get(ctx, s.tenant, schemaID)
	if err != nil {
		return formschema.Submission{}, err
	}
	v, err := formschema.Compile(sc.Definition)
	if err != nil {
		return formschema.Submission{}, err
	}
	norm, errs := v.Validate(data)
	if errs != nil {
		return formschema.Submission{}, errs
	}
	sub := formschema.Submission{
		ID:       uuid.NewString(),
		TenantID: s.tenant,
		SchemaID: schemaID,
		Data:     norm,
	}
	if err := s.subs.Insert(ctx, &sub); err != nil {
		return formschema.Submission{}, err
	}
	return sub, nil
}

func (s *service) Export(ctx context.Context) ([]byte, error) {
	var dest memDest
	if err := export.Export(ctx, s.tenant, s.schemas, s.subs, &dest); err != nil {
		return nil, err
	}
	return dest.data, nil
}

type memDest struct{ data []byte }

func (m *memDest) Write(_ context.Context, _ string, data []byte) error {
	m.data = data
	return nil
}
