package schema

// FormSchemaInput is the request body for creating or replacing a form
// schema. The Schema field carries the raw JSON document exactly as the
// author typed it; it is parsed and compiled before any write is attempted.
type FormSchemaInput struct {
	Name        string `json:"name" minLength:"1"`
	Description string `json:"description,omitempty"`
	TableName   string `json:"table_name,omitempty" doc:"Logical entity label; derived from the name when omitted"`
	Schema      string `json:"schema" doc:"Raw JSON schema document"`
}
