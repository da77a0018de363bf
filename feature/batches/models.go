package batches

import "twin-sync/core/report"

// SubmitRequest is the body of a create batch for a named kind.
type SubmitRequest struct {
	// BatchID is generated when empty.
	BatchID  string           `json:"batch_id" validate:"omitempty,max=64"`
	Metadata report.Metadata  `json:"metadata"`
	Rows     []map[string]any `json:"rows" validate:"required,min=1"`
}

// ColumnsRequest is a create batch whose kind is selected by its columns.
type ColumnsRequest struct {
	SubmitRequest
	Columns []string `json:"columns" validate:"required,min=1,dive,required"`
}

// AcceptedResponse is returned for every accepted batch.
type AcceptedResponse struct {
	BatchID string `json:"batch_id"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
