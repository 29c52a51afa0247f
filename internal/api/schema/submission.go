package schema

// SubmissionInput is the request body for creating a submission.
type SubmissionInput struct {
	Data map[string]any `json:"data"`
}

// SubmissionUpdate is the request body for overwriting a submission. The
// revision must match the stored one or the update is rejected as a
// conflict.
type SubmissionUpdate struct {
	Data     map[string]any `json:"data"`
	Revision int64          `json:"revision" minimum:"1"`
}
