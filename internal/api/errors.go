package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/pinshelf/pinshelf-server/internal/errors"
	"github.com/pinshelf/pinshelf-server/internal/http/response"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

// APIError is the error body huma writes for every failed operation. The
// envelope transformer turns it into the coded error shape.
type APIError struct { //nolint:revive // exported under this name in the OpenAPI schema
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

func (e *APIError) Error() string  { return e.Message }
func (e *APIError) GetStatus() int { return e.status }

// ContentType keeps errors as plain JSON rather than problem+json.
func (e *APIError) ContentType(string) string { return "application/json" }

// RegisterErrorHandler replaces huma.NewError so handlers can return domain
// and store errors directly. It must run before any route is registered.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	if apiErr := fromCause(errs); apiErr != nil {
		return apiErr
	}

	apiErr := &APIError{
		status:  status,
		Code:    string(response.CodeForStatus(status)),
		Message: message,
	}
	// Request validation failures carry huma's per-field details.
	var details []*huma.ErrorDetail
	for _, err := range errs {
		if d, ok := errors.AsType[*huma.ErrorDetail](err); ok {
			details = append(details, d)
		}
	}
	if len(details) > 0 {
		apiErr.Details = details
	}
	return apiErr
}

// fromCause maps the first domain or store error in errs, or returns nil.
func fromCause(errs []error) *APIError {
	for _, err := range errs {
		if de, ok := errors.AsType[*domainerrors.Error](err); ok {
			return &APIError{
				status:  de.HTTPStatus(),
				Code:    string(de.Code),
				Message: de.Message,
				Details: de.Details,
			}
		}
		if se, ok := errors.AsType[*store.Error](err); ok {
			return &APIError{
				status:  se.Status(),
				Code:    string(response.CodeForStatus(se.Status())),
				Message: se.Message,
			}
		}
	}
	return nil
}
