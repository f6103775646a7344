package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorForbidden        ErrorCode = "FORBIDDEN"
	ErrorNotFound         ErrorCode = "NOT_FOUND"
	ErrorMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrorConflict         ErrorCode = "CONFLICT"
	ErrorPayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrorPartialWrite     ErrorCode = "PARTIAL_WRITE"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

// Error is a classified use-case failure. Reason is a stable machine string
// for logs; Details, when set, is safe to return to the caller.
type Error struct {
	Code    ErrorCode
	Reason  string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// PartialWriteDetails describes a record that was stored while its section
// index could not be updated.
type PartialWriteDetails struct {
	RecordWritten bool   `json:"recordWritten"`
	Section       string `json:"section"`
	Slug          string `json:"slug"`
	Rebuild       string `json:"rebuild"`
}

func partialWrite(section, slug string, err error) *Error {
	return &Error{
		Code:   ErrorPartialWrite,
		Reason: "index_update_failed",
		Details: PartialWriteDetails{
			RecordWritten: true,
			Section:       section,
			Slug:          slug,
			Rebuild:       "POST /admin/reindex/" + section,
		},
		Err: err,
	}
}
