package models

import "katalog/internal/pagination"

// Envelope wraps every successful response body.
type Envelope struct {
	Data       interface{}          `json:"data"`
	Pagination *pagination.PageInfo `json:"pagination,omitempty"`
}

// ErrorEnvelope wraps every failure response body.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the structured failure description.
type ErrorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details"`
	Timestamp string                 `json:"timestamp"`
	Path      string                 `json:"path"`
}
