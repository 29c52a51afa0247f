package sdk

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/faciam-dev/gforms/internal/audit"
)

// ServiceConfig configures a local Service backed by a database handle.
type ServiceConfig struct {
	DB          *sql.DB
	Driver      string
	TablePrefix string
	Tenant      string
	Logger      *zap.SugaredLogger
	Recorder    *audit.Recorder
}
