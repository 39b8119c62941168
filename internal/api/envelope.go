package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/pinshelf/pinshelf-server/internal/http/response"
)

// EnvelopeVersion is the "v" field of every response body.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the shared envelope.
// Coded errors become {v, success, code, message, details}; an APIError
// without a code is reported as a simple {v, success, error}.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code == "" {
			return response.Envelope{V: EnvelopeVersion, Error: apiErr.Message}, nil
		}
		return response.ErrorEnvelope{
			V:       EnvelopeVersion,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	return response.Envelope{V: EnvelopeVersion, Success: true, Data: v}, nil
}
