package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
	"github.com/plantbygpt/plantbygpt/internal/backup"
	"github.com/plantbygpt/plantbygpt/internal/services"
)

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case services.IsValidationError(err), backup.IsFormatError(err), backup.IsSchemaError(err):
		respond.WriteBadRequest(w, err.Error())
	case services.IsOversizeInputError(err), errors.As(err, &tooLarge):
		respond.WriteTooLarge(w, err.Error())
	case services.IsNotFoundError(err):
		respond.WriteNotFound(w, err.Error())
	case services.IsConflictError(err):
		respond.WriteConflict(w, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respond.WriteInternalError(w, err.Error())
	}
}
