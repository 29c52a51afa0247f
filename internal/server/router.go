package server

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/faciam-dev/gforms/internal/api/handler"
	"github.com/faciam-dev/gforms/internal/audit"
	"github.com/faciam-dev/gforms/internal/auth"
	"github.com/faciam-dev/gforms/internal/events"
	"github.com/faciam-dev/gforms/internal/logger"
	schemasrepo "github.com/faciam-dev/gforms/internal/repository/schemas"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/internal/server/middleware"
	"github.com/faciam-dev/gforms/internal/server/roles"
	"github.com/faciam-dev/gforms/internal/tenant"
	"github.com/faciam-dev/gforms/pkg/formschema"
	"github.com/faciam-dev/gforms/pkg/metrics"
	"github.com/faciam-dev/gforms/pkg/renderpolicy"
	pkgutil "github.com/faciam-dev/gforms/pkg/util"
)

// engineCounter feeds the schema and submission gauges.
type engineCounter struct {
	schemas *schemasrepo.Repo
	subs    *submissionsrepo.SQLStore
}

func (c engineCounter) CountSchemas(ctx context.Context) (int64, error) {
	return c.schemas.Count(ctx)
}

func (c engineCounter) CountSubmissionsBySchema(ctx context.Context) (map[string]int64, error) {
	return c.subs.CountSubmissionsBySchema(ctx)
}

func New(db *sql.DB, cfg DBConfig) huma.API {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID"},
		AllowCredentials: true,
	}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	driver := cfg.Driver
	dialect := pkgutil.DialectFromDriver(driver)
	secret := mustJWTSecret()

	m := model.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", "some(where (p.eft == allow))")
	m.AddDef("m", "m", "g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act")
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		logger.L.Error("casbin enforcer", "err", err)
	} else {
		for _, act := range []string{"GET", "POST", "PUT", "DELETE"} {
			e.AddPolicy("admin", "/v1/*", act)
		}
		// Editors manage submissions and read schemas; only admins change
		// schema definitions.
		e.AddPolicy("editor", "/v1/*", "GET")
		e.AddPolicy("editor", "/v1/form-schemas/:id/submissions", "POST")
		e.AddPolicy("editor", "/v1/submissions/:id", "PUT")
		e.AddPolicy("editor", "/v1/submissions/:id", "DELETE")
		e.AddPolicy("viewer", "/v1/*", "GET")
	}

	api := humachi.New(r, huma.DefaultConfig("Form Schema API", "1.0.0"))
	jwtHandler := auth.NewJWT(secret, 15*time.Minute)

	// Tenant extraction applies to every endpoint, including login.
	api.UseMiddleware(middleware.ExtractTenant())

	// Login and refresh are registered before the auth middleware so they
	// stay publicly accessible.
	auth.Register(api, &auth.Handler{Repo: &auth.UserRepo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}, JWT: jwtHandler})
	api.UseMiddleware(auth.Middleware(api, jwtHandler))

	resolver := func(ctx context.Context, user string) ([]string, error) {
		tid := tenant.FromContext(ctx)
		return roles.OfUser(ctx, db, driver, cfg.TablePrefix, user, tid)
	}
	if err == nil {
		api.UseMiddleware(middleware.RBAC(e, resolver))
	}
	api.UseMiddleware(middleware.MetricsMW)

	evtConf, err := events.LoadConfig(os.Getenv("GF_EVENTS_CONFIG"))
	if err != nil {
		logger.L.Error("load events configuration", "err", err)
		os.Exit(1)
	}
	var sinks []events.Sink
	if wh := events.NewWebhookSink(evtConf.Sinks.Webhook); wh != nil {
		sinks = append(sinks, wh)
	}
	if rs, err := events.NewRedisSink(evtConf.Sinks.Redis); err == nil && rs != nil {
		sinks = append(sinks, rs)
	} else if err != nil {
		logger.L.Error("redis sink", "err", err)
	}
	if ks, err := events.NewKafkaSink(evtConf.Sinks.Kafka); err == nil && ks != nil {
		sinks = append(sinks, ks)
	} else if err != nil {
		logger.L.Error("kafka sink", "err", err)
	}
	events.Default = events.NewDispatcher(evtConf, &events.SQLDLQ{DB: db, Driver: driver, TablePrefix: cfg.TablePrefix}, sinks...)

	schemas := &schemasrepo.Repo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}
	var subs submissionsrepo.Store
	sqlSubs := submissionsrepo.NewSQLStore(db, driver, dialect, cfg.TablePrefix)
	subs = sqlSubs
	if driver == "mongo" && cfg.DSN != "" {
		cli, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			logger.L.Error("connect mongodb", "err", err)
			os.Exit(1)
		}
		subs = submissionsrepo.NewMongoStore(cli, pkgutil.GetEnv("GF_MONGO_DB", "gforms"), cfg.TablePrefix)
	}

	var policy *renderpolicy.Store
	if path := os.Getenv("GF_RENDER_POLICY"); path != "" {
		policy = renderpolicy.NewStore(path, logger.L)
		if err := policy.Load(); err != nil {
			logger.L.Error("load render policy", "err", err)
		}
		go policy.Watch(context.Background())
	}

	format := formschema.DefaultFormat()
	if df := os.Getenv("GF_DATE_FORMAT"); df != "" {
		format.DateFormat = df
	}

	rec := &audit.Recorder{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}
	onDelete := cfg.OnSchemaDelete
	if onDelete == "" {
		onDelete = handler.DeleteOrphan
	}

	handler.RegisterFormSchemas(api, &handler.FormSchemaHandler{
		Repo:           schemas,
		Subs:           subs,
		Recorder:       rec,
		Policy:         policy,
		Format:         format,
		OnSchemaDelete: onDelete,
	})
	handler.RegisterSubmissions(api, &handler.SubmissionHandler{Schemas: schemas, Store: subs})
	handler.RegisterMetadata(api, &handler.MetadataHandler{Policy: policy})

	if db != nil {
		metrics.StartEngineGauge(context.Background(), engineCounter{schemas: schemas, subs: sqlSubs})
	}
	return api
}
