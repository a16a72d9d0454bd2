// Package rcierr defines the stable error codes of the RCI core (spec §7)
// and a small typed error that carries one.
package rcierr

import "fmt"

// Code is one of the stable error codes propagated out of the core.
type Code string

const (
	InitError           Code = "INIT_ERROR"
	ComponentParseError Code = "COMPONENT_PARSE_ERROR"
	EmbeddingError      Code = "EMBEDDING_ERROR"
	QuotaExceeded       Code = "QUOTA_EXCEEDED"
	AuthFailed          Code = "AUTH_FAILED"
	VectorStoreError    Code = "VECTOR_STORE_ERROR"
	SearchError         Code = "SEARCH_ERROR"
	Cancelled           Code = "CANCELLED"
)

// Error wraps an underlying error with a stable code so transport layers
// (HTTP, MCP) can map it without string matching.
type Error struct {
	Code Code
	Err  error
}

func New(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error; ok is false otherwise.
func CodeOf(err error) (Code, bool) {
	var rerr *Error
	if ok := asError(err, &rerr); ok {
		return rerr.Code, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
