// Package http contains the HTTP handlers for the assessment API.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aurahq/aura_service/internal/errors"
	"github.com/aurahq/aura_service/pkg/response"
)

// handleError maps application errors onto the response envelope.
func handleError(log zerolog.Logger, w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(w, appErr.HTTPStatus(), &response.ErrorBody{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}
	log.Error().Err(err).Msg("Internal server error")
	response.InternalError(w, "internal server error")
}

// decodeJSON decodes a request body into dst, rejecting unknown
// fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Validation("invalid request body: " + err.Error())
	}
	return nil
}
