package server

// DBConfig holds database configuration for the API server.
type DBConfig struct {
	Driver      string
	DSN         string
	TablePrefix string
	// OnSchemaDelete selects what happens to a schema's submissions when
	// the schema is deleted: cascade, orphan or block.
	OnSchemaDelete string
}
